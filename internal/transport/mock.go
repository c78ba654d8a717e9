package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Sent records a single outbound signaling message.
type Sent struct {
	To   string
	Type string
	Data any
}

// Mock records outbound messages and lets tests inject inbound ones.
type Mock struct {
	mu      sync.Mutex
	sent    []Sent
	handler func(Message)
	closed  bool
	err     error
}

// NewMock creates a new Mock transport.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Send(_ context.Context, to, msgType string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, Sent{To: to, Type: msgType, Data: data})
	return nil
}

func (m *Mock) OnMessage(handler func(Message)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Deliver marshals data and hands a message to the registered handler,
// as if it had arrived from the given remote agent.
func (m *Mock) Deliver(from, msgType string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling %s data: %w", msgType, err)
	}
	m.mu.Lock()
	handler := m.handler
	m.mu.Unlock()
	if handler == nil {
		return fmt.Errorf("no handler registered")
	}
	handler(Message{From: from, Type: msgType, Data: raw})
	return nil
}

// Messages returns a copy of all outbound messages.
func (m *Mock) Messages() []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sent, len(m.sent))
	copy(out, m.sent)
	return out
}

// ByType returns outbound messages with the given type.
func (m *Mock) ByType(msgType string) []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Sent
	for _, s := range m.sent {
		if s.Type == msgType {
			out = append(out, s)
		}
	}
	return out
}

// Reset clears all recorded messages.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}

// Closed returns whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// SetError causes all subsequent Send calls to return err. Pass nil to clear.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
