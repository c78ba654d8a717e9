package bus

import (
	"context"
	"sync"
)

// Event records a single published event.
type Event struct {
	Type    string
	Payload any
}

// Mock records all published events for test assertions.
type Mock struct {
	mu     sync.Mutex
	events []Event
	closed bool
	err    error // if set, Publish returns this error
}

// NewMock creates a new Mock bus.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Publish(_ context.Context, eventType string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, Event{Type: eventType, Payload: payload})
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Events returns a copy of all published events.
func (m *Mock) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// ByType returns the published events with the given type.
func (m *Mock) ByType(eventType string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears all recorded events.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

// Closed returns whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// SetError causes all subsequent Publish calls to return err.
// Pass nil to clear.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
