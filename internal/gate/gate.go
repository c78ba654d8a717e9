// Package gate wraps every lifecycle outcome in a simulated asynchronous
// completion: capability-gated rejection, configurable artificial delay,
// and demo error injection. The gate is orthogonal to the call state
// machine and is applied uniformly to every operation.
package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/softphone-sim/internal/call"
	"github.com/sweeney/softphone-sim/internal/config"
)

// Action names recognized by the capability checks. Any other action
// passes ungated.
const (
	ActionMute               = "mute"
	ActionUnmute             = "unmute"
	ActionConference         = "conference"
	ActionSwapCalls          = "swapCalls"
	ActionPauseRecording     = "pauseRecording"
	ActionResumeRecording    = "resumeRecording"
	ActionSignedRecordingURL = "getSignedRecordingUrl"
)

// Gate decides whether an operation's result is handed back as a success
// and how long the simulated completion takes.
type Gate struct {
	mu         sync.Mutex
	caps       config.Capabilities
	delay      time.Duration
	alwaysFail bool
	custom     *call.CustomError
}

// New builds a gate from the simulation configuration.
func New(caps config.Capabilities, sim config.SimulationConfig) *Gate {
	g := &Gate{
		caps:       caps,
		delay:      time.Duration(sim.DelayMs) * time.Millisecond,
		alwaysFail: sim.AlwaysFail,
	}
	if sim.CustomError != nil {
		g.custom = &call.CustomError{Namespace: sim.CustomError.Namespace, Label: sim.CustomError.Label}
	}
	return g
}

// Run gates the named action. It returns an injected or capability error,
// or nil after the configured artificial delay has elapsed. The payload
// of the wrapped operation is never altered.
func (g *Gate) Run(ctx context.Context, action string) error {
	g.mu.Lock()
	caps, delay, alwaysFail, custom := g.caps, g.delay, g.alwaysFail, g.custom
	g.mu.Unlock()

	if alwaysFail {
		if custom != nil {
			return custom
		}
		return call.ErrDemoFault
	}

	switch action {
	case ActionMute, ActionUnmute:
		if !caps.HasMute {
			return fmt.Errorf("mute: %w", call.ErrCapabilityUnsupported)
		}
	case ActionConference:
		if !caps.HasMerge {
			return fmt.Errorf("conference: %w", call.ErrCapabilityUnsupported)
		}
	case ActionSwapCalls:
		if !caps.HasSwap {
			return fmt.Errorf("swap calls: %w", call.ErrCapabilityUnsupported)
		}
	case ActionPauseRecording, ActionResumeRecording:
		if !caps.HasRecord {
			return fmt.Errorf("recording: %w", call.ErrCapabilityUnsupported)
		}
	case ActionSignedRecordingURL:
		if !caps.HasSignedRecordingURL || caps.SignedRecordingURL == "" {
			return fmt.Errorf("signed recording url: %w", call.ErrCapabilityUnsupported)
		}
	}

	if delay <= 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AlwaysFail reports whether fault injection is active. Operations that
// must not commit side effects on an injected failure check this first.
func (g *Gate) AlwaysFail() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.alwaysFail
}

// SetAlwaysFail toggles global fault injection.
func (g *Gate) SetAlwaysFail(fail bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.alwaysFail = fail
}

// SetCustomError configures the structured error returned while fault
// injection is active. Pass nil to fall back to the generic demo error.
func (g *Gate) SetCustomError(err *call.CustomError) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.custom = err
}

// SetDelay changes the artificial completion delay.
func (g *Gate) SetDelay(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.delay = d
}

// UpdateCapabilities replaces the capability flags.
func (g *Gate) UpdateCapabilities(caps config.Capabilities) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.caps = caps
}

// Capabilities returns the current capability flags.
func (g *Gate) Capabilities() config.Capabilities {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.caps
}
