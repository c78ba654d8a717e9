package call

import "time"

// Kind classifies how a call leg was created.
type Kind string

const (
	KindInbound        Kind = "inbound"
	KindOutbound       Kind = "outbound"
	KindInternal       Kind = "internalcall"
	KindCallback       Kind = "callback"
	KindDialedCallback Kind = "dialed_callback"
	// KindTransfer names the vendor-side call record minted for a transfer.
	KindTransfer Kind = "transfer"
	// KindAddParticipant is the local third-party leg of a consultative transfer.
	KindAddParticipant Kind = "add_participant"
)

// State represents the lifecycle state of a call leg.
type State string

const (
	StateRinging      State = "ringing"
	StateConnected    State = "connected"
	StateTransferring State = "transferring"
	StateTransferred  State = "transferred"
	StateEnded        State = "ended"
)

// Role identifies the function a call leg plays in the interaction.
type Role string

const (
	RoleInitialCaller Role = "initial_caller"
	RoleAgent         Role = "agent"
	RoleThirdParty    Role = "third_party"
	RoleSupervisor    Role = "supervisor"
)

// DialerTypePreview marks an outbound preview-dialer call.
const DialerTypePreview = "outbound_preview"

// Hangup reasons attached to destroyed calls.
const (
	ReasonEnded = "phone_call_ended"
)

// Attributes carries the role-specific flags of a call leg.
type Attributes struct {
	Role                  Role   `json:"participant_role"`
	VoiceCallID           string `json:"voice_call_id,omitempty"`
	DialerType            string `json:"dialer_type,omitempty"`
	IsOnHold              bool   `json:"is_on_hold"`
	HasSupervisorBargedIn bool   `json:"has_supervisor_barged_in,omitempty"`
	InitialCallHasEnded   bool   `json:"initial_call_has_ended,omitempty"`
}

// Info mirrors the call-level data shared with the host application.
// Hold state is duplicated here and on Attributes; both are kept in sync
// by the lifecycle operations.
type Info struct {
	IsOnHold                 bool      `json:"is_on_hold"`
	IsMuted                  bool      `json:"is_muted,omitempty"`
	IsRecordingPaused        bool      `json:"is_recording_paused,omitempty"`
	IsExternalTransfer       bool      `json:"is_external_transfer,omitempty"`
	IsSoftphoneCall          bool      `json:"is_softphone_call,omitempty"`
	IsBargedIn               bool      `json:"is_barged_in,omitempty"`
	HoldEnabled              bool      `json:"hold_enabled,omitempty"`
	RemoveParticipantVariant string    `json:"remove_participant_variant,omitempty"`
	ParentCallID             string    `json:"parent_call_id,omitempty"`
	InitialCallID            string    `json:"initial_call_id,omitempty"`
	CallStateTimestamp       time.Time `json:"call_state_timestamp,omitempty"`
	AdditionalFields         string    `json:"additional_fields,omitempty"`
	SupervisorName           string    `json:"supervisor_name,omitempty"`
}

// Call is a single leg of a voice interaction.
type Call struct {
	ID          string     `json:"call_id"`
	Kind        Kind       `json:"call_type"`
	State       State      `json:"state"`
	Contact     Contact    `json:"contact"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Attributes  Attributes `json:"call_attributes"`
	Info        Info       `json:"call_info"`

	// Set when the call is destroyed.
	Reason      string `json:"reason,omitempty"`
	AgentStatus string `json:"agent_status,omitempty"`

	CreatedAt      time.Time `json:"created_at"`
	StateChangedAt time.Time `json:"state_changed_at"`
}

// New creates a call in the Ringing state. If id is empty the caller is
// expected to have generated one via an IDGenerator beforehand; New does
// not reach for a global source of randomness.
func New(id string, kind Kind, contact Contact, attrs Attributes, info Info, now time.Time) *Call {
	attrs.InitialCallHasEnded = false
	attrs.IsOnHold = info.IsOnHold
	if attrs.Role == RoleInitialCaller {
		info.ParentCallID = id
	}
	return &Call{
		ID:             id,
		Kind:           kind,
		State:          StateRinging,
		Contact:        contact,
		PhoneNumber:    contact.PhoneNumber,
		Attributes:     attrs,
		Info:           info,
		CreatedAt:      now,
		StateChangedAt: now,
	}
}

// SetState transitions the call and stamps the change time.
func (c *Call) SetState(s State, now time.Time) {
	c.State = s
	c.StateChangedAt = now
}

// SetHold toggles the hold flag on both the attributes and the info mirror.
func (c *Call) SetHold(onHold bool) {
	c.Attributes.IsOnHold = onHold
	c.Info.IsOnHold = onHold
}

// Selector identifies a call either by id or by participant role.
type Selector struct {
	ID   string
	Role Role
}

// ByID selects a call by its identifier.
func ByID(id string) Selector { return Selector{ID: id} }

// ByRole selects the most recently registered call with the given role.
func ByRole(role Role) Selector { return Selector{Role: role} }

// SupervisedCallInfo describes a call being observed by a supervisor.
type SupervisedCallInfo struct {
	CallID         string `json:"call_id"`
	VoiceCallID    string `json:"voice_call_id,omitempty"`
	Kind           Kind   `json:"call_type"`
	From           string `json:"from,omitempty"`
	To             string `json:"to,omitempty"`
	SupervisorName string `json:"supervisor_name,omitempty"`
	IsBargedIn     bool   `json:"is_barged_in"`
}

// Clock provides the current time. Defaults to time.Now; override in tests.
type Clock func() time.Time
