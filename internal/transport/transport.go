// Package transport delivers user-to-user signaling messages between
// agents. A message with an empty To address is broadcast to everyone.
package transport

import (
	"context"
	"encoding/json"

	"github.com/sweeney/softphone-sim/internal/call"
)

// Message types exchanged between agents.
const (
	TypeCallStarted          = "CALL_STARTED"
	TypeInternalCallStarted  = "INTERNAL_CALL_STARTED"
	TypeParticipantConnected = "PARTICIPANT_CONNECTED"
	TypeCallBargedIn         = "CALL_BARGED_IN"
	TypeCallDestroyed        = "CALL_DESTROYED"
	TypePresence             = "PRESENCE"
	TypeOnlineUsers          = "ONLINE_USERS"
)

// Message is the signaling envelope. Data stays raw until the handler
// picks a payload type for the message type.
type Message struct {
	From string          `json:"from"`
	To   string          `json:"to,omitempty"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Transport sends directed or broadcast signaling messages and delivers
// inbound ones to a registered handler.
type Transport interface {
	// Send delivers a message to the agent with the given address, or to
	// all agents when to is empty.
	Send(ctx context.Context, to, msgType string, data any) error
	// OnMessage registers the inbound handler. Must be called before the
	// transport starts delivering.
	OnMessage(handler func(Message))
	Close() error
}

// CallStartedData announces a transfer leg to the receiving agent.
type CallStartedData struct {
	PhoneNumber string `json:"phone_number"`
	CallID      string `json:"call_id"`
	VoiceCallID string `json:"voice_call_id,omitempty"`
}

// InternalCallStartedData announces an agent-to-agent call.
type InternalCallStartedData struct {
	PhoneNumber string       `json:"phone_number"`
	CallID      string       `json:"call_id"`
	Contact     call.Contact `json:"contact"`
}

// ParticipantConnectedData relays a connected participant to the far end.
type ParticipantConnectedData struct {
	Info call.Info `json:"call_info"`
	Kind call.Kind `json:"call_type"`
}

// CallDestroyedData is broadcast when an internal call leg is destroyed,
// so the far end can tear down its own leg.
type CallDestroyedData struct {
	CallID string `json:"call_id"`
	Reason string `json:"reason,omitempty"`
}

// PresenceData announces an agent going online or offline.
type PresenceData struct {
	Username    string `json:"username"`
	FullName    string `json:"full_name,omitempty"`
	IsAvailable bool   `json:"is_available"`
}

// OnlineUsersData carries the current set of online agents.
type OnlineUsersData struct {
	Users map[string]string `json:"users"` // id -> full name
}
