package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/softphone-sim/internal/backend"
	"github.com/sweeney/softphone-sim/internal/bus"
	"github.com/sweeney/softphone-sim/internal/call"
	"github.com/sweeney/softphone-sim/internal/engine"
	"github.com/sweeney/softphone-sim/internal/transport"
)

func TestAddParticipantConsultative(t *testing.T) {
	h := newHarness(t)
	parent := h.accepted(t)

	contact := call.Contact{ID: "agent-200", Type: call.ContactAgent, PhoneNumber: "15555550111"}
	res, err := h.eng.AddParticipant(context.Background(), contact, call.ByID(parent.ID), engine.TransferOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.InitialCallHasEnded {
		t.Error("expected primary leg still alive")
	}
	if res.CallID == parent.ID {
		t.Error("expected a new call id for the consult leg")
	}
	if !res.Info.IsExternalTransfer {
		t.Error("expected external transfer inferred from the phone number")
	}

	held, err := h.reg.Get(call.ByID(parent.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !held.Attributes.IsOnHold {
		t.Error("expected parent on hold during consultation")
	}

	leg, err := h.reg.Get(call.ByID(res.CallID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leg.Kind != call.KindAddParticipant {
		t.Errorf("expected add-participant kind, got %s", leg.Kind)
	}
	if leg.State != call.StateTransferring {
		t.Errorf("expected transferring, got %s", leg.State)
	}
	if leg.Attributes.Role != call.RoleThirdParty {
		t.Errorf("expected third party role, got %s", leg.Attributes.Role)
	}
	if leg.Attributes.VoiceCallID != parent.Attributes.VoiceCallID {
		t.Error("expected consult leg to share the parent's voice call id")
	}
	if leg.Info.ParentCallID != parent.ID {
		t.Errorf("expected parent link, got %s", leg.Info.ParentCallID)
	}
}

func TestAddParticipantBlind(t *testing.T) {
	h := newHarness(t)
	parent := h.accepted(t)

	contact := call.Contact{PhoneNumber: "15555550111"}
	res, err := h.eng.AddParticipant(context.Background(), contact, call.ByID(parent.ID),
		engine.TransferOptions{IsBlindTransfer: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.InitialCallHasEnded {
		t.Error("expected primary leg ended by blind transfer")
	}
	if res.CallID != parent.ID {
		t.Errorf("expected the parent id back, got %s", res.CallID)
	}
	if h.reg.Len() != 0 {
		t.Errorf("expected no active calls after blind transfer, got %d", h.reg.Len())
	}

	// The destroyed leg triggers wrap-up on the next turn and the agent
	// is only free once it runs.
	h.eng.SetAvailable(true)
	h.sched.Flush()
	assertEvents(t, h.bus, bus.EventAfterCallWorkStarted, 1)
}

func TestAddParticipantExternalOverride(t *testing.T) {
	h := newHarness(t)
	parent := h.accepted(t)

	internal := false
	contact := call.Contact{PhoneNumber: "15555550111"}
	res, err := h.eng.AddParticipant(context.Background(), contact, call.ByID(parent.ID),
		engine.TransferOptions{IsExternalTransfer: &internal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Info.IsExternalTransfer {
		t.Error("expected the explicit override to win over the inference")
	}
}

func TestAddParticipantRejectsSecondTransfer(t *testing.T) {
	h := newHarness(t)
	parent := h.accepted(t)
	contact := call.Contact{PhoneNumber: "15555550111"}
	if _, err := h.eng.AddParticipant(context.Background(), contact, call.ByID(parent.ID), engine.TransferOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := h.eng.AddParticipant(context.Background(), contact, call.ByID(parent.ID), engine.TransferOptions{})
	if !errors.Is(err, call.ErrTransferUnavailable) {
		t.Fatalf("expected ErrTransferUnavailable, got %v", err)
	}
}

func TestAddParticipantFlowRoutesToOnlineAgent(t *testing.T) {
	h := newHarness(t,
		backend.WithFlow("flow-1", backend.RoutingInstruction{Agent: "agent-200"}))
	h.eng.SetOnlineUsers(map[string]string{"agent-200": "Other Agent"})
	parent := h.accepted(t)

	contact := call.Contact{ID: "flow-1", Type: call.ContactFlow}
	if _, err := h.eng.AddParticipant(context.Background(), contact, call.ByID(parent.ID), engine.TransferOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := h.tr.ByType(transport.TypeCallStarted)
	if len(sent) != 1 {
		t.Fatalf("expected 1 transfer announcement, got %d", len(sent))
	}
	if sent[0].To != "agent-200" {
		t.Errorf("expected announcement to the routed agent, got %s", sent[0].To)
	}
	data, ok := sent[0].Data.(transport.CallStartedData)
	if !ok {
		t.Fatalf("unexpected payload type %T", sent[0].Data)
	}
	if data.PhoneNumber != parent.PhoneNumber {
		t.Errorf("expected the customer number forwarded, got %s", data.PhoneNumber)
	}
}

func TestAddParticipantParentHungUpMidFlight(t *testing.T) {
	var h *harness
	h = newHarness(t, backend.WithCreateHook(func() {
		// The agent hangs up while the vendor request is pending.
		if _, err := h.eng.EndCall(context.Background(), call.ByRole(call.RoleAgent)); err != nil {
			t.Errorf("ending call mid-flight: %v", err)
		}
	}))
	parent := h.accepted(t)

	contact := call.Contact{PhoneNumber: "15555550111"}
	_, err := h.eng.AddParticipant(context.Background(), contact, call.ByID(parent.ID), engine.TransferOptions{})
	if !errors.Is(err, call.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after the parent vanished, got %v", err)
	}
	if h.reg.Len() != 0 {
		t.Errorf("expected no stray legs, got %d", h.reg.Len())
	}
}

func TestAddParticipantBackendFailure(t *testing.T) {
	h := newHarness(t)
	parent := h.accepted(t)
	h.be.SetError(errors.New("vendor down"))

	_, err := h.eng.AddParticipant(context.Background(), call.Contact{PhoneNumber: "15555550111"},
		call.ByID(parent.ID), engine.TransferOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if h.reg.Len() != 1 {
		t.Errorf("expected only the parent left, got %d", h.reg.Len())
	}
}

func TestConnectParticipant(t *testing.T) {
	h := newHarness(t)
	parent := h.accepted(t)
	res, err := h.eng.AddParticipant(context.Background(), call.Contact{PhoneNumber: "15555550111"},
		call.ByID(parent.ID), engine.TransferOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.eng.ConnectParticipant(context.Background(), call.Info{}, call.KindAddParticipant); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	leg, err := h.reg.Get(call.ByID(res.CallID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leg.State != call.StateTransferred {
		t.Errorf("expected transferred, got %s", leg.State)
	}

	got := assertEvents(t, h.bus, bus.EventParticipantConnected, 1)
	payload, ok := got[0].Payload.(call.ParticipantResult)
	if !ok {
		t.Fatalf("unexpected payload type %T", got[0].Payload)
	}
	if payload.CallID != res.CallID {
		t.Errorf("expected participant %s, got %s", res.CallID, payload.CallID)
	}
}

func TestConnectParticipantInternalCall(t *testing.T) {
	h := newHarness(t)
	c := call.New("int1", call.KindInternal, call.Contact{},
		call.Attributes{Role: call.RoleInitialCaller}, call.Info{}, time.Now())
	if err := h.reg.Put(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.eng.ConnectParticipant(context.Background(), call.Info{}, call.KindInternal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := h.reg.Get(call.ByID("int1"))
	if got.State != call.StateConnected {
		t.Errorf("expected connected, got %s", got.State)
	}
	assertEvents(t, h.bus, bus.EventCallConnected, 1)
}

func TestRemoveParticipant(t *testing.T) {
	h := newHarness(t)
	parent := h.accepted(t)
	res, err := h.eng.AddParticipant(context.Background(), call.Contact{PhoneNumber: "15555550111"},
		call.ByID(parent.ID), engine.TransferOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, err := h.eng.RemoveParticipant(context.Background(), call.RoleThirdParty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed.Call.ID != res.CallID {
		t.Errorf("expected %s removed, got %s", res.CallID, removed.Call.ID)
	}
	if !removed.Call.Info.IsExternalTransfer {
		t.Error("expected the shared third-party info snapshot attached")
	}

	assertEvents(t, h.bus, bus.EventParticipantRemoved, 1)
	if h.reg.Len() != 1 {
		t.Errorf("expected only the parent left, got %d", h.reg.Len())
	}

	// Parent still active, so no wrap-up fires.
	h.sched.Flush()
	assertEvents(t, h.bus, bus.EventAfterCallWorkStarted, 0)
}

func TestRemoveParticipantNotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.eng.RemoveParticipant(context.Background(), call.RoleThirdParty)
	if !errors.Is(err, call.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
