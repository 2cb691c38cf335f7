package database

import (
	"time"

	"geisha-game/internal/game"
)

type MatchResult struct {
	ID            string `json:"id"`
	CreatedAt     string `json:"created_at"`
	Player1       string `json:"player1"`
	Player2       string `json:"player2"`
	Winner        string `json:"winner"`
	Reason        string `json:"reason"`
	Rounds        int    `json:"rounds"`
	Player1Favors int    `json:"player1_favors"`
	Player2Favors int    `json:"player2_favors"`
	Player1Points int    `json:"player1_points"`
	Player2Points int    `json:"player2_points"`
}

// FromGame converts a concluded match into a storable row.
func FromGame(r game.Result) MatchResult {
	return MatchResult{
		ID:            r.MatchID,
		CreatedAt:     r.FinishedAt.UTC().Format(time.RFC3339),
		Player1:       r.Players[0],
		Player2:       r.Players[1],
		Winner:        r.Winner,
		Reason:        r.Reason,
		Rounds:        r.Rounds,
		Player1Favors: r.FavorCounts[0],
		Player2Favors: r.FavorCounts[1],
		Player1Points: r.Points[0],
		Player2Points: r.Points[1],
	}
}
