// Package registry owns the set of active calls and the append-only
// history of destroyed ones. Every mutation persists the whole active
// set through the configured Store so the registry survives restarts.
package registry

import (
	"fmt"
	"time"

	"github.com/sweeney/softphone-sim/internal/call"
)

// Registry tracks active calls keyed by call id. Lookups by role resolve
// to the most recently registered call with that role.
type Registry struct {
	store     Store
	active    map[string]*call.Call
	order     []string // registration order, for role lookups
	destroyed []call.Call
	clock     call.Clock
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the time source for the registry.
func WithClock(c call.Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// New creates a Registry backed by the given store and loads any calls
// persisted by a previous run.
func New(store Store, opts ...Option) (*Registry, error) {
	r := &Registry{
		store:  store,
		active: make(map[string]*call.Call),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	loaded, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading active calls: %w", err)
	}
	for id, c := range loaded {
		cc := c
		r.active[id] = &cc
		r.order = append(r.order, id)
	}
	return r, nil
}

// Get resolves a selector to exactly one active call. A role selector
// returns the most recently registered call with that role; a missing
// InitialCaller falls back to a Supervisor call once, so a connected
// supervisor can stand in for the primary leg when shared call-level
// data is updated.
func (r *Registry) Get(sel call.Selector) (*call.Call, error) {
	if sel.Role != "" {
		if c := r.lastByRole(sel.Role); c != nil {
			return c, nil
		}
		if sel.Role == call.RoleInitialCaller {
			if c := r.lastByRole(call.RoleSupervisor); c != nil {
				return c, nil
			}
		}
		return nil, fmt.Errorf("participant %s: %w", sel.Role, call.ErrNotFound)
	}
	if sel.ID != "" {
		if c, ok := r.active[sel.ID]; ok {
			return c, nil
		}
		return nil, fmt.Errorf("call %s: %w", sel.ID, call.ErrNotFound)
	}
	return nil, fmt.Errorf("selector has neither id nor role: %w", call.ErrNotFound)
}

// Put upserts a call into the active set and persists the whole set.
func (r *Registry) Put(c *call.Call) error {
	if _, ok := r.active[c.ID]; !ok {
		r.order = append(r.order, c.ID)
	}
	r.active[c.ID] = c
	return r.persist()
}

// RemoveCascading destroys the calls resolved by the selector and returns
// them in resolution order. A selector for the Agent role cascades to the
// InitialCaller call and the ThirdParty call; when neither exists it falls
// back to whatever single call the selector matches. Destroyed calls move
// to the history and are never mutated again.
func (r *Registry) RemoveCascading(sel call.Selector, reason string) ([]call.Call, error) {
	var targets []*call.Call
	if sel.Role == call.RoleAgent {
		if c := r.lastByRole(call.RoleInitialCaller); c != nil {
			targets = append(targets, c)
		}
		if c := r.lastByRole(call.RoleThirdParty); c != nil {
			targets = append(targets, c)
		}
		if len(targets) == 0 {
			c, err := r.Get(sel)
			if err != nil {
				return nil, err
			}
			targets = append(targets, c)
		}
	} else {
		c, err := r.Get(sel)
		if err != nil {
			return nil, err
		}
		targets = append(targets, c)
	}

	now := r.clock()
	removed := make([]call.Call, 0, len(targets))
	for _, c := range targets {
		c.SetState(call.StateEnded, now)
		c.Reason = reason
		removed = append(removed, *c)
		r.destroyed = append(r.destroyed, *c)
		delete(r.active, c.ID)
		r.dropFromOrder(c.ID)
	}
	if err := r.persist(); err != nil {
		return removed, err
	}
	return removed, nil
}

// HasActive reports whether any active call exists, or, with a non-empty
// role, whether a call with that role is active.
func (r *Registry) HasActive(role call.Role) bool {
	if role == "" {
		return len(r.active) > 0
	}
	return r.lastByRole(role) != nil
}

// Len returns the number of active calls.
func (r *Registry) Len() int { return len(r.active) }

// Active returns the active calls in registration order.
func (r *Registry) Active() []call.Call {
	out := make([]call.Call, 0, len(r.active))
	for _, id := range r.order {
		if c, ok := r.active[id]; ok {
			out = append(out, *c)
		}
	}
	return out
}

// ActiveByID returns the active calls keyed by call id.
func (r *Registry) ActiveByID() map[string]call.Call {
	out := make(map[string]call.Call, len(r.active))
	for id, c := range r.active {
		out[id] = *c
	}
	return out
}

// History returns the destroyed-call history, oldest first.
func (r *Registry) History() []call.Call {
	out := make([]call.Call, len(r.destroyed))
	copy(out, r.destroyed)
	return out
}

func (r *Registry) lastByRole(role call.Role) *call.Call {
	for i := len(r.order) - 1; i >= 0; i-- {
		if c, ok := r.active[r.order[i]]; ok && c.Attributes.Role == role {
			return c
		}
	}
	return nil
}

func (r *Registry) dropFromOrder(id string) {
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

func (r *Registry) persist() error {
	snapshot := make(map[string]call.Call, len(r.active))
	for id, c := range r.active {
		snapshot[id] = *c
	}
	if err := r.store.Save(snapshot); err != nil {
		return fmt.Errorf("persisting active calls: %w", err)
	}
	return nil
}
