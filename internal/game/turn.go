package game

import (
	"log"

	"geisha-game/internal/protocol"
)

// startTurn draws for the current player when the deck has cards left and
// tells both players whose turn it is. The opponent is shown the drawer's
// full hand, as clients render it face down.
func (m *Match) startTurn() {
	current, opponent := m.Players[m.CurrentTurn], m.Players[1-m.CurrentTurn]

	if m.Deck.Len() > 0 {
		card, err := m.Deck.Draw()
		if err == nil {
			current.AddCard(card)
			m.sendTo(current.ID, protocol.DrawnCard, protocol.DrawnCardPayload{CardID: card, Deck: m.Deck.Len()})
			m.sendTo(opponent.ID, protocol.OpponentHandUpdated, protocol.OpponentHandUpdatedPayload{
				Hand: ids(current.Hand),
				Deck: m.Deck.Len(),
			})
		}
	}

	for i, p := range m.Players {
		m.sendTo(p.ID, protocol.TurnStart, protocol.TurnStartPayload{MyTurn: i == m.CurrentTurn})
	}
	log.Printf("Match %s: Round %d, turn of %s (%d cards left).", m.ID, m.Round, current.ID, m.Deck.Len())
}

// endTurn hands the turn to the other player, runs their turn start and
// then checks whether the round is over.
func (m *Match) endTurn() {
	m.CurrentTurn = 1 - m.CurrentTurn
	m.startTurn()
	if m.roundOver() {
		m.endRound()
	}
}

// roundOver reports whether both players have spent every token.
func (m *Match) roundOver() bool {
	return m.Players[0].Exhausted() && m.Players[1].Exhausted()
}
