// Package bus is the one-way publish interface carrying call-result
// events to the host application.
package bus

import "context"

// Event types published to the host application.
const (
	EventCallStarted             = "CALL_STARTED"
	EventQueuedCallStarted       = "QUEUED_CALL_STARTED"
	EventPreviewCallStarted      = "PREVIEW_CALL_STARTED"
	EventCallConnected           = "CALL_CONNECTED"
	EventParticipantConnected    = "PARTICIPANT_CONNECTED"
	EventParticipantRemoved      = "PARTICIPANT_REMOVED"
	EventHangup                  = "HANGUP"
	EventSupervisorCallConnected = "SUPERVISOR_CALL_CONNECTED"
	EventSupervisorHangup        = "SUPERVISOR_HANGUP"
	EventAfterCallWorkStarted    = "AFTER_CALL_WORK_STARTED"
	EventUpdateAudioStats        = "UPDATE_AUDIO_STATS"
	EventCallBargedIn            = "CALL_BARGED_IN"
	EventSetAgentStatus          = "SET_AGENT_STATUS"
)

// Bus defines the interface for publishing call events. Publishing is
// fire-and-forget; no acknowledgment is surfaced to the state machine.
type Bus interface {
	Publish(ctx context.Context, eventType string, payload any) error
	Close() error
}
