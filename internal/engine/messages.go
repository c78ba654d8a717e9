package engine

import (
	"context"
	"encoding/json"

	"github.com/sweeney/softphone-sim/internal/bus"
	"github.com/sweeney/softphone-sim/internal/call"
	"github.com/sweeney/softphone-sim/internal/transport"
)

// handleMessage dispatches one inbound signaling message. Each message is
// one command: it runs to completion before the next is processed.
func (e *Engine) handleMessage(m transport.Message) {
	ctx := context.Background()
	log := e.log.WithField("message", m.Type)

	switch m.Type {
	case transport.TypeCallStarted:
		var data transport.CallStartedData
		if err := json.Unmarshal(m.Data, &data); err != nil {
			log.WithError(err).Warn("bad signaling payload")
			return
		}
		e.startTransferCall(ctx, data)

	case transport.TypeInternalCallStarted:
		var data transport.InternalCallStartedData
		if err := json.Unmarshal(m.Data, &data); err != nil {
			log.WithError(err).Warn("bad signaling payload")
			return
		}
		e.startInternalCall(ctx, data)

	case transport.TypeParticipantConnected:
		var data transport.ParticipantConnectedData
		if err := json.Unmarshal(m.Data, &data); err != nil {
			log.WithError(err).Warn("bad signaling payload")
			return
		}
		if err := e.ConnectParticipant(ctx, data.Info, data.Kind); err != nil {
			log.WithError(err).Warn("connecting participant")
		}

	case transport.TypeCallBargedIn:
		var data call.SupervisedCallInfo
		if err := json.Unmarshal(m.Data, &data); err != nil {
			log.WithError(err).Warn("bad signaling payload")
			return
		}
		e.mu.Lock()
		e.emit(ctx, bus.EventCallBargedIn, data)
		e.mu.Unlock()

	case transport.TypeCallDestroyed:
		var data transport.CallDestroyedData
		if err := json.Unmarshal(m.Data, &data); err != nil {
			log.WithError(err).Warn("bad signaling payload")
			return
		}
		e.processCallDestroyed(ctx, data)

	case transport.TypeOnlineUsers:
		var data transport.OnlineUsersData
		if err := json.Unmarshal(m.Data, &data); err != nil {
			log.WithError(err).Warn("bad signaling payload")
			return
		}
		e.SetOnlineUsers(data.Users)

	default:
		log.Warn("unhandled signaling message")
	}
}

// startTransferCall registers the inbound leg of a transfer announced by
// another agent and surfaces it as a started call.
func (e *Engine) startTransferCall(ctx context.Context, data transport.CallStartedData) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := data.CallID
	if id == "" {
		id = e.ids.NewID()
	}
	now := e.clock()
	c := call.New(id, call.KindInbound, call.Contact{PhoneNumber: data.PhoneNumber},
		call.Attributes{Role: call.RoleInitialCaller, VoiceCallID: data.VoiceCallID},
		call.Info{}, now)
	if err := e.reg.Put(c); err != nil {
		e.log.WithError(err).Error("registering transfer call")
		return
	}
	e.log.WithField("call_id", c.ID).Info("transfer call started")
	e.emit(ctx, bus.EventCallStarted, call.CallResult{Call: *c})
}

// startInternalCall registers the receiving leg of an agent-to-agent call.
func (e *Engine) startInternalCall(ctx context.Context, data transport.InternalCallStartedData) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock()
	c := call.New(data.CallID, call.KindInternal, data.Contact,
		call.Attributes{Role: call.RoleAgent}, call.Info{}, now)
	if err := e.reg.Put(c); err != nil {
		e.log.WithError(err).Error("registering internal call")
		return
	}
	e.log.WithField("call_id", c.ID).Info("internal call started")
	e.emit(ctx, bus.EventCallStarted, call.CallResult{Call: *c})
}

// processCallDestroyed tears down the local legs when another session
// destroyed an internal call we are part of.
func (e *Engine) processCallDestroyed(ctx context.Context, data transport.CallDestroyedData) {
	if data.CallID == "" {
		return
	}
	e.mu.Lock()
	_, err := e.reg.Get(call.ByID(data.CallID))
	e.mu.Unlock()
	if err != nil {
		return
	}
	if _, err := e.Hangup(ctx, data.Reason, ""); err != nil {
		e.log.WithError(err).Warn("hanging up destroyed call")
	}
}
