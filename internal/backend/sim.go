package backend

import (
	"context"
	"sync"
	"time"

	"github.com/sweeney/softphone-sim/internal/call"
)

// Simulator is the in-process backend used when no vendor system is
// reachable. It mints identifiers locally and resolves configured flows.
type Simulator struct {
	mu      sync.Mutex
	ids     call.IDGenerator
	latency time.Duration
	err     error
	flows   map[string]RoutingInstruction

	// onCreate, when set, runs before CreateVoiceCall returns. Tests use
	// it to interleave commands at the asynchronous boundary.
	onCreate func()
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithIDGenerator sets the identifier source.
func WithIDGenerator(ids call.IDGenerator) SimulatorOption {
	return func(s *Simulator) { s.ids = ids }
}

// WithLatency adds a fixed delay to every backend request.
func WithLatency(d time.Duration) SimulatorOption {
	return func(s *Simulator) { s.latency = d }
}

// WithFlow registers a routing flow and its instruction.
func WithFlow(flowID string, ri RoutingInstruction) SimulatorOption {
	return func(s *Simulator) {
		s.flows[flowID] = ri
	}
}

// WithCreateHook runs fn before every CreateVoiceCall response.
func WithCreateHook(fn func()) SimulatorOption {
	return func(s *Simulator) { s.onCreate = fn }
}

// NewSimulator creates a simulated backend.
func NewSimulator(opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		ids:   call.UUIDGenerator{},
		flows: make(map[string]RoutingInstruction),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetError makes every subsequent request fail with err. Pass nil to clear.
func (s *Simulator) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Simulator) CreateVoiceCall(ctx context.Context, parentCallID string, kind call.Kind, caller string, additionalFields string) (VoiceCall, error) {
	if err := s.wait(ctx); err != nil {
		return VoiceCall{}, err
	}
	s.mu.Lock()
	err := s.err
	hook := s.onCreate
	ids := s.ids
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return VoiceCall{}, err
	}
	return VoiceCall{
		VoiceCallID:   "0LQ" + ids.NewID(),
		VendorCallKey: ids.NewID(),
	}, nil
}

func (s *Simulator) ExecuteRoutingFlow(ctx context.Context, vendorCallKey, flowID string) (RoutingInstruction, error) {
	if err := s.wait(ctx); err != nil {
		return RoutingInstruction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return RoutingInstruction{}, s.err
	}
	return s.flows[flowID], nil
}

func (s *Simulator) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(s.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
