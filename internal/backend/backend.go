// Package backend is the request/response interface to the vendor
// telephony backend: minting voice-call records and executing routing
// flows. Both calls are asynchronous boundaries for the state machine:
// a call may be hung up while a request is in flight.
package backend

import (
	"context"

	"github.com/sweeney/softphone-sim/internal/call"
)

// VoiceCall is the vendor's record of a call leg.
type VoiceCall struct {
	VoiceCallID   string `json:"voice_call_id"`
	VendorCallKey string `json:"vendor_call_key"`
}

// RoutingInstruction is the outcome of a routing flow: the agent or queue
// the interaction should be delivered to.
type RoutingInstruction struct {
	Agent string `json:"agent,omitempty"`
	Queue string `json:"queue,omitempty"`
}

// Backend creates voice-call records and executes routing flows. Failures
// propagate to the caller of the enclosing lifecycle operation as
// rejections; they never crash the engine.
type Backend interface {
	CreateVoiceCall(ctx context.Context, parentCallID string, kind call.Kind, caller string, additionalFields string) (VoiceCall, error)
	ExecuteRoutingFlow(ctx context.Context, vendorCallKey, flowID string) (RoutingInstruction, error)
}
