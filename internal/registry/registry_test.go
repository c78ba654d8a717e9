package registry_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sweeney/softphone-sim/internal/call"
	"github.com/sweeney/softphone-sim/internal/registry"
)

func fixedClock() call.Clock {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func newRegistry(t *testing.T) (*registry.Registry, *registry.MemStore) {
	t.Helper()
	store := registry.NewMemStore()
	r, err := registry.New(store, registry.WithClock(fixedClock()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r, store
}

func put(t *testing.T, r *registry.Registry, id string, role call.Role) *call.Call {
	t.Helper()
	c := call.New(id, call.KindInbound, call.Contact{PhoneNumber: "15555550100"},
		call.Attributes{Role: role}, call.Info{}, time.Now())
	if err := r.Put(c); err != nil {
		t.Fatalf("putting %s: %v", id, err)
	}
	return c
}

func TestGetByID(t *testing.T) {
	r, _ := newRegistry(t)
	put(t, r, "c1", call.RoleInitialCaller)

	got, err := r.Get(call.ByID("c1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "c1" {
		t.Errorf("expected c1, got %s", got.ID)
	}

	_, err = r.Get(call.ByID("missing"))
	if !errors.Is(err, call.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByRoleReturnsMostRecent(t *testing.T) {
	r, _ := newRegistry(t)
	put(t, r, "c1", call.RoleThirdParty)
	put(t, r, "c2", call.RoleThirdParty)

	got, err := r.Get(call.ByRole(call.RoleThirdParty))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "c2" {
		t.Errorf("expected most recent third party c2, got %s", got.ID)
	}
}

func TestGetRolePrecedesID(t *testing.T) {
	r, _ := newRegistry(t)
	put(t, r, "c1", call.RoleInitialCaller)
	put(t, r, "c2", call.RoleThirdParty)

	// A selector carrying both resolves by role, not by id.
	got, err := r.Get(call.Selector{ID: "c1", Role: call.RoleThirdParty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "c2" {
		t.Errorf("expected role lookup to win, got %s", got.ID)
	}
}

func TestInitialCallerFallsBackToSupervisor(t *testing.T) {
	r, _ := newRegistry(t)
	put(t, r, "sup1", call.RoleSupervisor)

	got, err := r.Get(call.ByRole(call.RoleInitialCaller))
	if err != nil {
		t.Fatalf("expected supervisor fallback, got error: %v", err)
	}
	if got.ID != "sup1" {
		t.Errorf("expected sup1, got %s", got.ID)
	}

	// The fallback is one-directional.
	r2, _ := newRegistry(t)
	put(t, r2, "c1", call.RoleInitialCaller)
	_, err = r2.Get(call.ByRole(call.RoleSupervisor))
	if !errors.Is(err, call.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing supervisor, got %v", err)
	}
}

func TestEmptySelector(t *testing.T) {
	r, _ := newRegistry(t)
	_, err := r.Get(call.Selector{})
	if !errors.Is(err, call.ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty selector, got %v", err)
	}
}

func TestRemoveCascadingAgentTakesBothLegs(t *testing.T) {
	r, _ := newRegistry(t)
	put(t, r, "primary", call.RoleInitialCaller)
	put(t, r, "third", call.RoleThirdParty)

	removed, err := r.RemoveCascading(call.ByRole(call.RoleAgent), call.ReasonEnded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("expected 2 removed calls, got %d", len(removed))
	}
	if removed[0].ID != "primary" || removed[1].ID != "third" {
		t.Errorf("expected [primary third], got [%s %s]", removed[0].ID, removed[1].ID)
	}
	for _, c := range removed {
		if c.State != call.StateEnded {
			t.Errorf("expected %s ended, got %s", c.ID, c.State)
		}
		if c.Reason != call.ReasonEnded {
			t.Errorf("expected reason on %s, got %q", c.ID, c.Reason)
		}
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d active", r.Len())
	}
}

func TestRemoveCascadingAgentFallsBackToSingle(t *testing.T) {
	r, _ := newRegistry(t)
	put(t, r, "internal1", call.RoleAgent)

	removed, err := r.RemoveCascading(call.ByRole(call.RoleAgent), call.ReasonEnded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(removed) != 1 || removed[0].ID != "internal1" {
		t.Fatalf("expected single fallback removal of internal1, got %+v", removed)
	}
}

func TestRemoveCascadingSupervisorDoesNotCascade(t *testing.T) {
	r, _ := newRegistry(t)
	put(t, r, "primary", call.RoleInitialCaller)
	put(t, r, "sup1", call.RoleSupervisor)

	removed, err := r.RemoveCascading(call.ByRole(call.RoleSupervisor), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(removed) != 1 || removed[0].ID != "sup1" {
		t.Fatalf("expected only sup1 removed, got %+v", removed)
	}
	if r.Len() != 1 {
		t.Errorf("expected primary still active, got %d calls", r.Len())
	}
}

func TestRemoveCascadingNotFound(t *testing.T) {
	r, _ := newRegistry(t)
	_, err := r.RemoveCascading(call.ByID("missing"), "")
	if !errors.Is(err, call.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHistoryKeepsDestroyedCalls(t *testing.T) {
	r, _ := newRegistry(t)
	put(t, r, "c1", call.RoleInitialCaller)
	put(t, r, "c2", call.RoleThirdParty)

	if _, err := r.RemoveCascading(call.ByRole(call.RoleAgent), call.ReasonEnded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hist := r.History()
	if len(hist) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(hist))
	}
	if hist[0].ID != "c1" {
		t.Errorf("expected history oldest first, got %s", hist[0].ID)
	}
}

func TestEveryMutationPersists(t *testing.T) {
	r, store := newRegistry(t)
	put(t, r, "c1", call.RoleInitialCaller)
	put(t, r, "c2", call.RoleThirdParty)
	if _, err := r.RemoveCascading(call.ByID("c2"), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two puts + one remove.
	if store.Saves() != 3 {
		t.Errorf("expected 3 saves, got %d", store.Saves())
	}

	saved, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("expected 1 persisted call, got %d", len(saved))
	}
	if _, ok := saved["c1"]; !ok {
		t.Error("expected c1 in persisted snapshot")
	}
}

func TestLoadRestoresActiveCalls(t *testing.T) {
	store := registry.NewMemStore()
	first, err := registry.New(store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	put(t, first, "c1", call.RoleInitialCaller)

	second, err := registry.New(store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Len() != 1 {
		t.Fatalf("expected 1 restored call, got %d", second.Len())
	}
	got, err := second.Get(call.ByID("c1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Attributes.Role != call.RoleInitialCaller {
		t.Errorf("expected restored role, got %s", got.Attributes.Role)
	}
}

func TestHasActive(t *testing.T) {
	r, _ := newRegistry(t)
	if r.HasActive("") {
		t.Error("expected no active calls initially")
	}
	put(t, r, "c1", call.RoleInitialCaller)
	if !r.HasActive("") {
		t.Error("expected active calls")
	}
	if !r.HasActive(call.RoleInitialCaller) {
		t.Error("expected active initial caller")
	}
	if r.HasActive(call.RoleSupervisor) {
		t.Error("expected no supervisor")
	}
}

func TestActiveReturnsRegistrationOrder(t *testing.T) {
	r, _ := newRegistry(t)
	put(t, r, "c1", call.RoleInitialCaller)
	put(t, r, "c2", call.RoleThirdParty)
	put(t, r, "c3", call.RoleSupervisor)
	if _, err := r.RemoveCascading(call.ByID("c2"), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active := r.Active()
	if len(active) != 2 {
		t.Fatalf("expected 2 active calls, got %d", len(active))
	}
	if active[0].ID != "c1" || active[1].ID != "c3" {
		t.Errorf("expected [c1 c3], got [%s %s]", active[0].ID, active[1].ID)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.json")
	store := registry.NewFileStore(path)

	r, err := registry.New(store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	put(t, r, "c1", call.RoleInitialCaller)

	restored, err := registry.New(registry.NewFileStore(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := restored.Get(call.ByID("c1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PhoneNumber != "15555550100" {
		t.Errorf("expected phone number to survive the round trip, got %s", got.PhoneNumber)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store := registry.NewFileStore(filepath.Join(t.TempDir(), "nope.json"))
	calls, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 0 {
		t.Errorf("expected empty map, got %d entries", len(calls))
	}
}
