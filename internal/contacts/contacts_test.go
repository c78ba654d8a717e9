package contacts

import (
	"testing"

	"github.com/sweeney/softphone-sim/internal/call"
)

func TestDirectorySizes(t *testing.T) {
	d := NewDirectory(4)
	if got := len(d.Phone(Filter{})); got != 20 {
		t.Errorf("expected 20 phone contacts, got %d", got)
	}
	if got := len(d.Messaging(Filter{})); got != 12 {
		t.Errorf("expected 12 messaging contacts, got %d", got)
	}
}

func TestFilterByType(t *testing.T) {
	d := NewDirectory(4)

	agents := d.Phone(Filter{Types: []string{"agent"}})
	if len(agents) != 4 {
		t.Fatalf("expected 4 agents, got %d", len(agents))
	}
	for _, c := range agents {
		if c.Type != call.ContactAgent {
			t.Errorf("expected agent, got %s", c.Type)
		}
	}

	queues := d.Phone(Filter{Types: []string{"QUEUE"}})
	if len(queues) != 4 {
		t.Errorf("expected type filter to be case-insensitive, got %d queues", len(queues))
	}
}

func TestUnknownTypeFiltersAvailability(t *testing.T) {
	d := NewDirectory(6)
	available := d.Phone(Filter{Types: []string{call.AvailabilityAvailable}})
	if len(available) == 0 {
		t.Fatal("expected some available agents")
	}
	for _, c := range available {
		if c.Availability != call.AvailabilityAvailable {
			t.Errorf("expected AVAILABLE, got %q", c.Availability)
		}
	}
}

func TestFilterContains(t *testing.T) {
	d := NewDirectory(4)

	got := d.Phone(Filter{Contains: "queue name 5"})
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Name != "Queue Name 5" {
		t.Errorf("unexpected match: %+v", got[0])
	}

	if len(d.Phone(Filter{Contains: "no such contact"})) != 0 {
		t.Error("expected no matches")
	}
}

func TestFilterContainsMatchesAnyField(t *testing.T) {
	d := NewDirectory(4)
	// arn17 only appears in the EndpointARN field.
	got := d.Phone(Filter{Contains: "arn17"})
	if len(got) != 1 {
		t.Fatalf("expected 1 ARN match, got %d", len(got))
	}
	if got[0].EndpointARN != "arn17" {
		t.Errorf("unexpected match: %+v", got[0])
	}
}

func TestPagination(t *testing.T) {
	d := NewDirectory(4)

	page := d.Phone(Filter{Offset: 2, Limit: 3})
	if len(page) != 3 {
		t.Fatalf("expected 3 contacts, got %d", len(page))
	}
	if page[0].ID != "id3" {
		t.Errorf("expected page to start at id3, got %s", page[0].ID)
	}

	tail := d.Phone(Filter{Offset: 18, Limit: 10})
	if len(tail) != 2 {
		t.Errorf("expected trailing page of 2, got %d", len(tail))
	}

	past := d.Phone(Filter{Offset: 100})
	if len(past) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(past))
	}
}

func TestApplyOrderOfOperations(t *testing.T) {
	d := NewDirectory(4)
	// Substring first, then type filter, then pagination.
	got := d.Phone(Filter{Contains: "name", Types: []string{"agent"}, Limit: 2})
	if len(got) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(got))
	}
	for _, c := range got {
		if c.Type != call.ContactAgent {
			t.Errorf("expected agent, got %s", c.Type)
		}
	}
}
