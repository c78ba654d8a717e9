package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sweeney/softphone-sim/internal/bus"
	"github.com/sweeney/softphone-sim/internal/call"
	"github.com/sweeney/softphone-sim/internal/transport"
)

// TransferOptions tunes AddParticipant.
type TransferOptions struct {
	// IsExternalTransfer, when set, overrides the inference from the
	// contact's phone number.
	IsExternalTransfer *bool
	// AdditionalFields override the parent call's additional fields on
	// the minted voice-call record.
	AdditionalFields string
	// IsBlindTransfer ends the parent leg as soon as the new leg is
	// initiated, with no consultation period.
	IsBlindTransfer bool
}

// AddParticipant transfers the selected call to a new contact. The vendor
// backend mints a transfer voice-call record first; flow contacts are
// resolved to their routed agent or queue. A blind transfer destroys the
// parent leg immediately; a consultative one holds it and registers a new
// third-party leg in the Transferring state.
func (e *Engine) AddParticipant(ctx context.Context, contact call.Contact, sel call.Selector, opts TransferOptions) (call.ParticipantResult, error) {
	e.mu.Lock()
	if e.reg.Len() > 1 {
		e.mu.Unlock()
		return call.ParticipantResult{}, fmt.Errorf("add participant: %w", call.ErrTransferUnavailable)
	}
	parent, err := e.reg.Get(sel)
	if err != nil {
		e.mu.Unlock()
		return call.ParticipantResult{}, fmt.Errorf("add participant: %w", err)
	}
	parentID := parent.ID
	parentPhone := parent.PhoneNumber

	isExternal := contact.PhoneNumber != ""
	if opts.IsExternalTransfer != nil {
		isExternal = *opts.IsExternalTransfer
	}
	additionalFields := opts.AdditionalFields
	if additionalFields == "" {
		additionalFields = parent.Info.AdditionalFields
	}
	e.thirdPartyInfo.IsExternalTransfer = isExternal
	e.thirdPartyInfo.AdditionalFields = additionalFields
	e.mu.Unlock()

	// Asynchronous boundary: the parent call may be hung up while these
	// backend requests are in flight.
	vc, err := e.backend.CreateVoiceCall(ctx, parentID, call.KindTransfer, parentPhone, additionalFields)
	if err != nil {
		return call.ParticipantResult{}, fmt.Errorf("creating transfer voice call: %w", err)
	}
	transferTo := contact.ID
	if contact.Type == call.ContactFlow {
		ri, err := e.backend.ExecuteRoutingFlow(ctx, vc.VendorCallKey, contact.ID)
		if err != nil {
			return call.ParticipantResult{}, fmt.Errorf("executing routing flow: %w", err)
		}
		transferTo = ri.Agent
		if transferTo == "" {
			transferTo = ri.Queue
		}
	}

	e.mu.Lock()
	// Re-validate: the continuation must not touch a call that was
	// destroyed while the backend request was pending.
	parent, err = e.reg.Get(call.ByID(parentID))
	if err != nil {
		e.mu.Unlock()
		return call.ParticipantResult{}, fmt.Errorf("add participant: %w", err)
	}

	_, online := e.onlineUsers[transferTo]
	if online {
		e.send(ctx, transferTo, transport.TypeCallStarted, transport.CallStartedData{
			PhoneNumber: parentPhone,
			CallID:      vc.VendorCallKey,
			VoiceCallID: vc.VoiceCallID,
		})
	}

	if opts.IsBlindTransfer {
		destroyed, err := e.destroy(ctx, sel, call.ReasonEnded)
		if err != nil {
			e.mu.Unlock()
			return call.ParticipantResult{}, fmt.Errorf("add participant: %w", err)
		}
		e.log.WithField("call_id", destroyed[len(destroyed)-1].ID).Info("blind transfer, parent call destroyed")
		e.scheduleWrapup(destroyed[len(destroyed)-1].ID)
		res := call.ParticipantResult{
			PhoneNumber:         contact.PhoneNumber,
			Info:                e.thirdPartyInfo,
			InitialCallHasEnded: true,
			CallID:              parentID,
		}
		e.mu.Unlock()

		if err := e.gate.Run(ctx, "addParticipant"); err != nil {
			return call.ParticipantResult{}, err
		}
		return res, nil
	}

	parent.SetHold(true)
	now := e.clock()
	newCall := call.New(e.ids.NewID(), call.KindAddParticipant, contact,
		call.Attributes{Role: call.RoleThirdParty, VoiceCallID: parent.Attributes.VoiceCallID},
		call.Info{IsExternalTransfer: isExternal, CallStateTimestamp: now}, now)
	newCall.Info.ParentCallID = parent.ID
	newCall.SetState(call.StateTransferring, now)

	if err := e.reg.Put(parent); err != nil {
		e.mu.Unlock()
		return call.ParticipantResult{}, err
	}
	if err := e.reg.Put(newCall); err != nil {
		e.mu.Unlock()
		return call.ParticipantResult{}, err
	}
	e.log.WithFields(logrus.Fields{"call_id": newCall.ID, "parent_call_id": parent.ID}).Info("transfer leg added")

	res := call.ParticipantResult{
		PhoneNumber:         contact.PhoneNumber,
		Info:                e.thirdPartyInfo,
		InitialCallHasEnded: parent.Attributes.InitialCallHasEnded,
		CallID:              newCall.ID,
	}
	e.mu.Unlock()

	if err := e.gate.Run(ctx, "addParticipant"); err != nil {
		return call.ParticipantResult{}, err
	}
	return res, nil
}

// ConnectParticipant connects the last added participant: the third-party
// leg of a transfer moves to Transferred, while an internal call's
// primary leg moves to Connected.
func (e *Engine) ConnectParticipant(ctx context.Context, info call.Info, kind call.Kind) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if kind != call.KindInternal {
		c, err := e.reg.Get(call.ByRole(call.RoleThirdParty))
		if err != nil {
			return fmt.Errorf("connect participant: %w", err)
		}
		c.SetState(call.StateTransferred, e.clock())
		if err := e.reg.Put(c); err != nil {
			return err
		}
		e.log.WithField("call_id", c.ID).Info("participant connected")
		e.emit(ctx, bus.EventParticipantConnected, call.ParticipantResult{
			PhoneNumber:         c.Contact.PhoneNumber,
			Info:                e.thirdPartyInfo,
			InitialCallHasEnded: c.Attributes.InitialCallHasEnded,
			CallID:              c.ID,
		})
		return nil
	}

	c, err := e.reg.Get(call.ByRole(call.RoleInitialCaller))
	if err != nil {
		return fmt.Errorf("connect participant: %w", err)
	}
	c.SetState(call.StateConnected, e.clock())
	if err := e.reg.Put(c); err != nil {
		return err
	}
	e.log.WithField("call_id", c.ID).Info("internal call connected")
	e.emit(ctx, bus.EventCallConnected, call.CallResult{Call: *c})
	return nil
}

// RemoveParticipant destroys the call leg with the given role and
// notifies the host. Removing the third party attaches the shared
// third-party call info snapshot.
func (e *Engine) RemoveParticipant(ctx context.Context, role call.Role) (call.CallResult, error) {
	e.mu.Lock()
	c, err := e.reg.Get(call.ByRole(role))
	if err != nil {
		e.mu.Unlock()
		return call.CallResult{}, fmt.Errorf("remove participant: %w", err)
	}
	destroyed, err := e.destroy(ctx, call.ByID(c.ID), call.ReasonEnded)
	if err != nil {
		e.mu.Unlock()
		return call.CallResult{}, fmt.Errorf("remove participant: %w", err)
	}
	removed := destroyed[len(destroyed)-1]
	if role == call.RoleThirdParty {
		removed.Info = e.thirdPartyInfo
	}
	e.log.WithFields(logrus.Fields{"call_id": removed.ID, "role": role}).Info("participant removed")

	res := call.CallResult{Call: removed}
	e.emit(ctx, bus.EventParticipantRemoved, res)
	e.agentAvailable = e.reg.Len() == 0
	e.scheduleWrapup(removed.ID)
	e.mu.Unlock()

	if err := e.gate.Run(ctx, "removeParticipant"); err != nil {
		return call.CallResult{}, err
	}
	return res, nil
}
