package game

import "geisha-game/internal/shared"

const (
	// PointsToWin is the favor value total that wins a match.
	PointsToWin = 11
	// FavorsToWin is the number of owned colors that wins a match.
	FavorsToWin = 4
)

// Standing is a participant's position derived from the favor mapping.
type Standing struct {
	Favors int // Colors owned
	Points int // Sum of owned color values
}

// computeFavors returns the favor mapping after a round. A color goes to
// the participant holding strictly more scored cards of it; a tie keeps the
// previous owner, including no owner at all.
func computeFavors(prev map[shared.Color]string, a, b *shared.Player) map[shared.Color]string {
	next := copyFavors(prev)
	for _, color := range shared.Colors {
		ca, cb := a.ScoredCount(color), b.ScoredCount(color)
		switch {
		case ca > cb:
			next[color] = a.ID
		case cb > ca:
			next[color] = b.ID
		}
	}
	return next
}

func standingOf(favors map[shared.Color]string, playerID string) Standing {
	var s Standing
	for color, owner := range favors {
		if owner == playerID {
			s.Favors++
			s.Points += shared.ColorValue(color)
		}
	}
	return s
}

// decideWinner returns 0 or 1 for the winning participant, -1 when the
// match goes on. Points take precedence over favors.
func decideWinner(a, b Standing) int {
	aPoints, bPoints := a.Points >= PointsToWin, b.Points >= PointsToWin
	switch {
	case aPoints && bPoints:
		if a.Points > b.Points {
			return 0
		}
		if b.Points > a.Points {
			return 1
		}
		return -1
	case aPoints:
		return 0
	case bPoints:
		return 1
	}

	aFavors, bFavors := a.Favors >= FavorsToWin, b.Favors >= FavorsToWin
	switch {
	case aFavors && bFavors:
		return -1
	case aFavors:
		return 0
	case bFavors:
		return 1
	}
	return -1
}

func copyFavors(favors map[shared.Color]string) map[shared.Color]string {
	out := make(map[shared.Color]string, len(favors))
	for k, v := range favors {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
