// Package contacts holds the simulated agent directory: phone book and
// messaging contacts, with the filtering the host application applies
// when an agent searches for a transfer target.
package contacts

import (
	"strconv"
	"strings"

	"github.com/sweeney/softphone-sim/internal/call"
)

// Filter narrows a contact listing.
type Filter struct {
	// Contains matches case-insensitively against every string field.
	Contains string
	// Types keeps contacts whose type matches; a value that is not a
	// known contact type is matched against availability instead.
	Types  []string
	Offset int
	Limit  int
}

// Directory is a fixed set of simulated contacts.
type Directory struct {
	phone     []call.Contact
	messaging []call.Contact
}

// NewDirectory builds a directory with the given number of contacts per
// type. Entries are deterministic so tests can rely on them.
func NewDirectory(perType int) *Directory {
	d := &Directory{}

	availability := []string{call.AvailabilityAvailable, call.AvailabilityBusy, call.AvailabilityOffline}
	for i := 1; i <= perType; i++ {
		d.phone = append(d.phone, call.Contact{
			ID:           "id" + strconv.Itoa(i),
			Type:         call.ContactAgent,
			Name:         "Agent Name " + strconv.Itoa(i),
			PhoneNumber:  "555555444" + strconv.Itoa(i),
			Availability: availability[i%len(availability)],
		})
	}
	for i := perType + 1; i <= perType*2; i++ {
		d.phone = append(d.phone, call.Contact{
			ID:            "id" + strconv.Itoa(i),
			Type:          call.ContactQueue,
			Name:          "Queue Name " + strconv.Itoa(i),
			Queue:         "Queue" + strconv.Itoa(i),
			QueueWaitTime: strconv.Itoa(30 + i),
		})
	}
	for i := perType*2 + 1; i <= perType*3; i++ {
		d.phone = append(d.phone, call.Contact{
			ID:          "id" + strconv.Itoa(i),
			Type:        call.ContactPhoneBook,
			Name:        "Phonebook Entry " + strconv.Itoa(i),
			PhoneNumber: "55566644" + strconv.Itoa(i),
		})
	}
	for i := perType*3 + 1; i <= perType*4; i++ {
		d.phone = append(d.phone, call.Contact{
			ID:          "id" + strconv.Itoa(i),
			Type:        call.ContactPhoneNumber,
			Name:        "Phone Number " + strconv.Itoa(i),
			PhoneNumber: "5557774" + strconv.Itoa(i),
		})
	}
	for i := perType*4 + 1; i <= perType*5; i++ {
		d.phone = append(d.phone, call.Contact{
			EndpointARN: "arn" + strconv.Itoa(i),
			Type:        call.ContactPhoneNumber,
			Name:        "ARN " + strconv.Itoa(i),
			PhoneNumber: "5555554" + strconv.Itoa(i),
		})
	}

	for i := 1; i <= perType; i++ {
		d.messaging = append(d.messaging, call.Contact{
			ID:           "id" + strconv.Itoa(i),
			Type:         call.ContactAgent,
			Name:         "Agent Name " + strconv.Itoa(i),
			Availability: availability[i%len(availability)],
		})
	}
	for i := perType + 1; i <= perType*2; i++ {
		d.messaging = append(d.messaging, call.Contact{
			ID:            "id" + strconv.Itoa(i),
			Type:          call.ContactQueue,
			Name:          "Queue Name " + strconv.Itoa(i),
			Queue:         "Queue" + strconv.Itoa(i),
			QueueWaitTime: strconv.Itoa(30 + i),
		})
	}
	for i := perType*2 + 1; i <= perType*3; i++ {
		d.messaging = append(d.messaging, call.Contact{
			ID:          "id" + strconv.Itoa(i),
			Type:        call.ContactPhoneNumber,
			Name:        "External Contact " + strconv.Itoa(i),
			PhoneNumber: "55566644" + strconv.Itoa(i),
		})
	}

	return d
}

// Phone returns the phone book contacts matching the filter.
func (d *Directory) Phone(f Filter) []call.Contact {
	return Apply(d.phone, f)
}

// Messaging returns the messaging contacts matching the filter.
func (d *Directory) Messaging(f Filter) []call.Contact {
	return Apply(d.messaging, f)
}

var knownTypes = map[call.ContactType]bool{
	call.ContactAgent:       true,
	call.ContactQueue:       true,
	call.ContactPhoneBook:   true,
	call.ContactPhoneNumber: true,
	call.ContactFlow:        true,
}

// Apply filters a contact list: substring match first, then type (or
// availability) filters, then offset/limit pagination.
func Apply(contacts []call.Contact, f Filter) []call.Contact {
	result := contacts

	if f.Contains != "" {
		needle := strings.ToLower(f.Contains)
		var kept []call.Contact
		for _, c := range result {
			if contains(c, needle) {
				kept = append(kept, c)
			}
		}
		result = kept
	}

	for _, t := range f.Types {
		ct := call.ContactType(strings.ToLower(t))
		var kept []call.Contact
		for _, c := range result {
			if knownTypes[ct] {
				if c.Type == ct {
					kept = append(kept, c)
				}
			} else if c.Availability == t {
				kept = append(kept, c)
			}
		}
		result = kept
	}

	start := f.Offset
	if start > len(result) {
		start = len(result)
	}
	end := len(result)
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	return result[start:end]
}

func contains(c call.Contact, needle string) bool {
	for _, field := range []string{c.ID, c.Name, c.PhoneNumber, string(c.Type), c.Queue, c.Availability, c.EndpointARN} {
		if field != "" && strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
