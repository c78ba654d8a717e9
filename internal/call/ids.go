package call

import (
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator mints identifiers for new calls. Injected so tests can use
// a deterministic sequence.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates random UUID identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequenceGenerator generates "prefix-1", "prefix-2", ... identifiers.
// Intended for tests.
type SequenceGenerator struct {
	Prefix string
	n      int
}

func (g *SequenceGenerator) NewID() string {
	g.n++
	prefix := g.Prefix
	if prefix == "" {
		prefix = "call"
	}
	return prefix + "-" + strconv.Itoa(g.n)
}
