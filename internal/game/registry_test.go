package game

import (
	"errors"
	"testing"

	"geisha-game/internal/shared"
)

func newIdleMatch(id, a, b string) *Match {
	return NewMatch(id, [2]*shared.Player{shared.NewPlayer(a, ""), shared.NewPlayer(b, "")}, Options{})
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	m := newIdleMatch("m1", "A", "B")
	if err := r.Add(m); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := r.Lookup("B")
	if err != nil || got != m {
		t.Fatalf("lookup B = %v, %v", got, err)
	}
	opp, err := r.Opponent("A")
	if err != nil || opp != "B" {
		t.Fatalf("opponent of A = %q, %v", opp, err)
	}

	if err := r.Add(newIdleMatch("m2", "B", "C")); err == nil {
		t.Fatal("participant registered in two matches")
	}
	if r.Len() != 1 {
		t.Fatalf("len = %d, want 1", r.Len())
	}

	m.close()
	if _, err := r.Lookup("A"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("lookup after close = %v, want ErrMatchNotFound", err)
	}
	if r.Len() != 0 {
		t.Fatalf("len = %d, want 0", r.Len())
	}
}

func TestRegistryUnknownParticipant(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Opponent("ghost"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("error = %v, want ErrMatchNotFound", err)
	}
}
