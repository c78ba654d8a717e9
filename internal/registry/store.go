package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sweeney/softphone-sim/internal/call"
)

// Store persists the active-call set. Load is called once at startup and
// Save after every mutating registry operation.
type Store interface {
	Load() (map[string]call.Call, error)
	Save(map[string]call.Call) error
}

// MemStore keeps the snapshot in memory. It is the test double and the
// default when durability is not configured.
type MemStore struct {
	mu    sync.Mutex
	calls map[string]call.Call
	saves int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{calls: make(map[string]call.Call)}
}

func (s *MemStore) Load() (map[string]call.Call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]call.Call, len(s.calls))
	for k, v := range s.calls {
		out[k] = v
	}
	return out, nil
}

func (s *MemStore) Save(calls map[string]call.Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]call.Call, len(calls))
	for k, v := range calls {
		s.calls[k] = v
	}
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// FileStore persists the snapshot as a JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (map[string]call.Call, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]call.Call{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	var calls map[string]call.Call
	if err := json.Unmarshal(data, &calls); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if calls == nil {
		calls = map[string]call.Call{}
	}
	return calls, nil
}

func (s *FileStore) Save(calls map[string]call.Call) error {
	data, err := json.MarshalIndent(calls, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding active calls: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	return os.Rename(tmp, s.path)
}
