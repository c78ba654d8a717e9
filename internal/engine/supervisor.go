package engine

import (
	"context"
	"fmt"

	"github.com/sweeney/softphone-sim/internal/bus"
	"github.com/sweeney/softphone-sim/internal/call"
	"github.com/sweeney/softphone-sim/internal/config"
	"github.com/sweeney/softphone-sim/internal/transport"
)

// SuperviseCall joins an in-progress call as a supervisor. A soft phone
// supervisor connects immediately; a desk phone one must still answer,
// so the leg starts Ringing.
func (e *Engine) SuperviseCall(ctx context.Context, parent call.SupervisedCallInfo) (call.SuperviseCallResult, error) {
	e.mu.Lock()
	if e.reg.HasActive("") {
		e.mu.Unlock()
		return call.SuperviseCallResult{}, fmt.Errorf("supervise call: %w", call.ErrAgentBusy)
	}

	phoneNumber := parent.To
	if parent.Kind == call.KindInbound {
		phoneNumber = parent.From
	}
	now := e.clock()
	c := call.New(parent.CallID, parent.Kind, call.Contact{PhoneNumber: phoneNumber},
		call.Attributes{Role: call.RoleSupervisor, VoiceCallID: parent.VoiceCallID},
		call.Info{InitialCallID: parent.CallID, CallStateTimestamp: now}, now)
	if e.selectedPhone == config.PhoneSoft {
		c.SetState(call.StateConnected, now)
	}
	if err := e.reg.Put(c); err != nil {
		e.mu.Unlock()
		return call.SuperviseCallResult{}, err
	}
	e.log.WithField("call_id", c.ID).Info("supervising call")
	res := call.SuperviseCallResult{Call: *c}
	e.mu.Unlock()

	if err := e.gate.Run(ctx, "superviseCall"); err != nil {
		return call.SuperviseCallResult{}, err
	}
	return res, nil
}

// SupervisorDisconnect removes the supervisor leg.
func (e *Engine) SupervisorDisconnect(ctx context.Context) (call.SupervisorHangupResult, error) {
	var res call.SupervisorHangupResult
	if !e.gate.AlwaysFail() {
		e.mu.Lock()
		destroyed, err := e.destroy(ctx, call.ByRole(call.RoleSupervisor), "")
		if err != nil {
			e.mu.Unlock()
			return call.SupervisorHangupResult{}, fmt.Errorf("supervisor disconnect: %w", err)
		}
		e.log.WithField("call_id", destroyed[0].ID).Info("supervisor disconnected")
		res = call.SupervisorHangupResult{Calls: destroyed}
		e.mu.Unlock()
	}

	if err := e.gate.Run(ctx, "supervisorDisconnect"); err != nil {
		return call.SupervisorHangupResult{}, err
	}
	return res, nil
}

// SupervisorBargeIn turns a listening supervisor into an active leg and
// notifies every interested party.
func (e *Engine) SupervisorBargeIn(ctx context.Context, supervised call.SupervisedCallInfo) (call.SuperviseCallResult, error) {
	e.mu.Lock()
	c, err := e.reg.Get(call.ByRole(call.RoleSupervisor))
	if err != nil {
		e.mu.Unlock()
		return call.SuperviseCallResult{}, fmt.Errorf("supervisor barge in: %w", err)
	}
	c.Attributes.HasSupervisorBargedIn = true
	supervised.IsBargedIn = true
	supervised.SupervisorName = e.userFullName
	if err := e.reg.Put(c); err != nil {
		e.mu.Unlock()
		return call.SuperviseCallResult{}, err
	}
	e.log.WithField("call_id", c.ID).Info("supervisor barged in")
	res := call.SuperviseCallResult{Call: *c}
	e.mu.Unlock()

	e.send(ctx, "", transport.TypeCallBargedIn, supervised)

	if err := e.gate.Run(ctx, "supervisorBargeIn"); err != nil {
		return call.SuperviseCallResult{}, err
	}
	return res, nil
}

// ConnectSupervisor simulates the supervisor leg answering.
func (e *Engine) ConnectSupervisor(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, err := e.reg.Get(call.ByRole(call.RoleSupervisor))
	if err != nil {
		return fmt.Errorf("connect supervisor: %w", err)
	}
	c.SetState(call.StateConnected, e.clock())
	if err := e.reg.Put(c); err != nil {
		return err
	}
	e.log.WithField("call_id", c.ID).Info("supervisor connected")
	e.emit(ctx, bus.EventSupervisorCallConnected, call.SuperviseCallResult{Call: *c})
	return nil
}

// RemoveSupervisor destroys the supervisor leg and notifies the host.
func (e *Engine) RemoveSupervisor(ctx context.Context) (call.SupervisorHangupResult, error) {
	e.mu.Lock()
	destroyed, err := e.destroy(ctx, call.ByRole(call.RoleSupervisor), "")
	if err != nil {
		e.mu.Unlock()
		return call.SupervisorHangupResult{}, fmt.Errorf("remove supervisor: %w", err)
	}
	e.log.WithField("call_id", destroyed[0].ID).Info("supervisor removed")
	res := call.SupervisorHangupResult{Calls: destroyed}
	e.emit(ctx, bus.EventSupervisorHangup, res)
	e.mu.Unlock()

	if err := e.gate.Run(ctx, "removeSupervisor"); err != nil {
		return call.SupervisorHangupResult{}, err
	}
	return res, nil
}
