package call

// ContactType classifies a directory entry.
type ContactType string

const (
	ContactAgent       ContactType = "agent"
	ContactQueue       ContactType = "queue"
	ContactPhoneBook   ContactType = "phonebook"
	ContactPhoneNumber ContactType = "phone_number"
	ContactFlow        ContactType = "flow"
)

// Agent availability values used by the contact directory.
const (
	AvailabilityAvailable = "AVAILABLE"
	AvailabilityBusy      = "BUSY"
	AvailabilityOffline   = "OFFLINE"
)

// Contact is an entry in the phone book or a dial/transfer target.
type Contact struct {
	ID            string      `json:"id,omitempty"`
	Type          ContactType `json:"type,omitempty"`
	Name          string      `json:"name,omitempty"`
	PhoneNumber   string      `json:"phone_number,omitempty"`
	Queue         string      `json:"queue,omitempty"`
	QueueWaitTime string      `json:"queue_wait_time,omitempty"`
	Availability  string      `json:"availability,omitempty"`
	EndpointARN   string      `json:"endpoint_arn,omitempty"`
}
