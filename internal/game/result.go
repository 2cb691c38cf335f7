package game

import (
	"time"

	"geisha-game/internal/shared"
)

// Reasons a match can conclude.
const (
	ReasonWinner    = "winner"
	ReasonAbandoned = "abandoned"
)

// Result summarizes a concluded match.
type Result struct {
	MatchID     string                  `json:"matchId"`
	Players     [2]string               `json:"players"`
	Winner      string                  `json:"winner,omitempty"`
	Reason      string                  `json:"reason"`
	Rounds      int                     `json:"rounds"`
	Favors      map[shared.Color]string `json:"favors"`
	FavorCounts [2]int                  `json:"favorCounts"`
	Points      [2]int                  `json:"points"`
	FinishedAt  time.Time               `json:"finishedAt"`
}

// ResultHandler receives the result of every concluded match. It is called
// from the match goroutine.
type ResultHandler func(result Result)

func (m *Match) result(reason string) Result {
	r := Result{
		MatchID:    m.ID,
		Players:    [2]string{m.Players[0].ID, m.Players[1].ID},
		Winner:     m.Winner,
		Reason:     reason,
		Rounds:     m.Round,
		Favors:     copyFavors(m.Favors),
		FinishedAt: time.Now().UTC(),
	}
	for i, p := range m.Players {
		s := standingOf(m.Favors, p.ID)
		r.FavorCounts[i] = s.Favors
		r.Points[i] = s.Points
	}
	return r
}

func (m *Match) report(reason string) {
	if m.onResult == nil {
		return
	}
	m.onResult(m.result(reason))
}
