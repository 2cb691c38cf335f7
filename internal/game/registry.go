package game

import (
	"fmt"
	"sync"
)

// Registry maps participants to their live match. A match removes itself
// when it is torn down.
type Registry struct {
	mu       sync.RWMutex
	matches  map[string]*Match // match id -> match
	byPlayer map[string]*Match // participant id -> match
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		matches:  make(map[string]*Match),
		byPlayer: make(map[string]*Match),
	}
}

// Add registers a match for both of its participants. It must be called
// before the match is run.
func (r *Registry) Add(m *Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range m.Players {
		if existing, ok := r.byPlayer[p.ID]; ok {
			return fmt.Errorf("participant %s already in match %s", p.ID, existing.ID)
		}
	}
	r.matches[m.ID] = m
	for _, p := range m.Players {
		r.byPlayer[p.ID] = m
	}
	m.onClose = r.Remove
	return nil
}

// Lookup returns the live match of a participant.
func (r *Registry) Lookup(playerID string) (*Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byPlayer[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: participant %s", ErrMatchNotFound, playerID)
	}
	return m, nil
}

// Opponent returns the id of the participant's opponent.
func (r *Registry) Opponent(playerID string) (string, error) {
	m, err := r.Lookup(playerID)
	if err != nil {
		return "", err
	}
	idx := m.playerIndex(playerID)
	return m.Players[1-idx].ID, nil
}

// Remove drops every entry of the match.
func (r *Registry) Remove(m *Match) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.matches, m.ID)
	for _, p := range m.Players {
		if r.byPlayer[p.ID] == m {
			delete(r.byPlayer, p.ID)
		}
	}
}

// Len returns the number of live matches.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}
