package shared

import "sort"

// Action identifies one of the four per-round action tokens.
type Action int

const (
	ActionSecret      Action = 1
	ActionDiscard     Action = 2
	ActionGift        Action = 3
	ActionCompetition Action = 4
)

// AllActions lists the tokens every player receives at round start.
var AllActions = []Action{ActionSecret, ActionDiscard, ActionGift, ActionCompetition}

func (a Action) String() string {
	switch a {
	case ActionSecret:
		return "secret"
	case ActionDiscard:
		return "discard"
	case ActionGift:
		return "gift"
	case ActionCompetition:
		return "competition"
	default:
		return "unknown"
	}
}

// Player represents one participant of a match.
type Player struct {
	ID        string          // Stable opaque participant id
	Name      string          // Display name, may be empty
	Hand      []int           // Card ids currently held
	Secret    int             // Hidden card id, 0 when the slot is empty
	Scored    []int           // Cards counting toward favors this round
	Discarded []int           // Personal discard log
	Actions   map[Action]bool // Tokens still available this round
}

// NewPlayer creates a player with an empty round state.
func NewPlayer(id string, name string) *Player {
	p := &Player{ID: id, Name: name}
	p.ResetRound(nil)
	return p
}

// ResetRound clears all per-round state and installs a fresh hand.
func (p *Player) ResetRound(hand []int) {
	p.Hand = append([]int{}, hand...)
	p.Secret = 0
	p.Scored = []int{}
	p.Discarded = []int{}
	p.Actions = make(map[Action]bool, len(AllActions))
	for _, a := range AllActions {
		p.Actions[a] = true
	}
}

// AddCard adds a card to the player's hand.
func (p *Player) AddCard(card int) {
	p.Hand = append(p.Hand, card)
}

// HasCard reports whether the card is in the player's hand.
func (p *Player) HasCard(card int) bool {
	for _, c := range p.Hand {
		if c == card {
			return true
		}
	}
	return false
}

// RemoveCard removes a card from the player's hand.
func (p *Player) RemoveCard(card int) bool {
	for i, c := range p.Hand {
		if c == card {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// HasAction reports whether the token is still available.
func (p *Player) HasAction(a Action) bool {
	return p.Actions[a]
}

// SpendAction consumes a token.
func (p *Player) SpendAction(a Action) {
	delete(p.Actions, a)
}

// AvailableActions returns the remaining tokens in ascending order.
func (p *Player) AvailableActions() []Action {
	out := make([]Action, 0, len(p.Actions))
	for a, ok := range p.Actions {
		if ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Exhausted reports whether every token has been spent.
func (p *Player) Exhausted() bool {
	return len(p.Actions) == 0
}

// ScoredCount returns how many scored cards of a color the player holds.
func (p *Player) ScoredCount(color Color) int {
	n := 0
	for _, id := range p.Scored {
		if c, ok := LookupCard(id); ok && c.Color == color {
			n++
		}
	}
	return n
}
