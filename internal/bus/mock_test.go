package bus

import (
	"context"
	"errors"
	"testing"
)

func TestMockPublishAndEvents(t *testing.T) {
	m := NewMock()

	if err := m.Publish(context.Background(), EventCallStarted, "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Publish(context.Background(), EventHangup, "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := m.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventCallStarted || events[0].Payload != "first" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].Type != EventHangup || events[1].Payload != "second" {
		t.Errorf("unexpected second event: %+v", events[1])
	}
}

func TestMockByType(t *testing.T) {
	m := NewMock()
	m.Publish(context.Background(), EventCallStarted, 1)
	m.Publish(context.Background(), EventHangup, 2)
	m.Publish(context.Background(), EventCallStarted, 3)

	started := m.ByType(EventCallStarted)
	if len(started) != 2 {
		t.Fatalf("expected 2 started events, got %d", len(started))
	}
	if started[1].Payload != 3 {
		t.Errorf("unexpected payload: %+v", started[1])
	}
	if len(m.ByType(EventSupervisorHangup)) != 0 {
		t.Error("expected no supervisor hangup events")
	}
}

func TestMockReset(t *testing.T) {
	m := NewMock()
	m.Publish(context.Background(), EventCallStarted, nil)
	m.Reset()

	if len(m.Events()) != 0 {
		t.Errorf("expected 0 events after reset, got %d", len(m.Events()))
	}
}

func TestMockClose(t *testing.T) {
	m := NewMock()
	if m.Closed() {
		t.Fatal("expected not closed initially")
	}

	if err := m.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Closed() {
		t.Fatal("expected closed after Close()")
	}
}

func TestMockSetError(t *testing.T) {
	m := NewMock()
	testErr := errors.New("broker down")
	m.SetError(testErr)

	err := m.Publish(context.Background(), EventCallStarted, nil)
	if !errors.Is(err, testErr) {
		t.Fatalf("expected %v, got %v", testErr, err)
	}

	// Should not have recorded the failed publish
	if len(m.Events()) != 0 {
		t.Errorf("expected 0 events after error, got %d", len(m.Events()))
	}

	// Clear error
	m.SetError(nil)
	if err := m.Publish(context.Background(), EventCallStarted, nil); err != nil {
		t.Fatalf("unexpected error after clearing: %v", err)
	}
	if len(m.Events()) != 1 {
		t.Errorf("expected 1 event after clearing error, got %d", len(m.Events()))
	}
}
