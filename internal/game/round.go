package game

import (
	"log"

	"geisha-game/internal/protocol"
)

// endRound reveals secrets, recomputes favors and either finishes the
// match or schedules the next round.
func (m *Match) endRound() {
	m.Phase = RoundEnded
	m.roundEnds++
	log.Printf("Match %s: Round %d ended.", m.ID, m.Round)

	for _, p := range m.Players {
		if p.Secret != 0 {
			p.Scored = append(p.Scored, p.Secret)
			p.Secret = 0
		}
	}

	m.Favors = computeFavors(m.Favors, m.Players[0], m.Players[1])
	winner := decideWinner(standingOf(m.Favors, m.Players[0].ID), standingOf(m.Favors, m.Players[1].ID))
	gameOver := winner >= 0

	for i, p := range m.Players {
		m.sendTo(p.ID, protocol.RoundEnd, protocol.RoundEndPayload{
			Round:               m.Round,
			Favors:              copyFavors(m.Favors),
			ScoredCards:         ids(p.Scored),
			OpponentScoredCards: ids(m.Players[1-i].Scored),
			IsGameOver:          gameOver,
		})
	}

	if gameOver {
		m.Winner = m.Players[winner].ID
		log.Printf("Match %s: Game Over! %s wins after %d rounds.", m.ID, m.Winner, m.Round)
		m.broadcast(protocol.GameOver, protocol.GameOverPayload{Winner: m.Winner})
		m.report(ReasonWinner)
		m.close()
		return
	}

	log.Printf("Match %s: No winner yet, next round in %s.", m.ID, m.roundDelay)
	m.schedule(m.roundDelay, m.startNewRound)
}

// startNewRound redeals everything except favors. The player who did not
// start the previous round starts this one.
func (m *Match) startNewRound() {
	if m.Phase != RoundEnded {
		return
	}
	m.RoundStarter = 1 - m.RoundStarter
	m.CurrentTurn = m.RoundStarter
	m.Round++
	if err := m.dealRound(); err != nil {
		log.Printf("Match %s: %v", m.ID, err)
		m.broadcastError("Internal server error during dealing.")
		m.close()
		return
	}
	m.Phase = RoundActive
	log.Printf("Match %s: Round %d started, %s moves first.", m.ID, m.Round, m.Players[m.CurrentTurn].ID)

	for i, p := range m.Players {
		o := m.Players[1-i]
		m.sendTo(p.ID, protocol.NewRound, protocol.NewRoundPayload{
			Round:        m.Round,
			Hand:         ids(p.Hand),
			OpponentHand: ids(o.Hand),
			Discarded:    m.Discarded[0],
			Deck:         m.Deck.Len(),
			Favors:       copyFavors(m.Favors),
		})
	}
	m.startTurn()
}
