package game

import (
	"fmt"
	"log"

	"geisha-game/internal/protocol"
	"geisha-game/internal/shared"
)

// offer is a gift or competition proposal waiting for the opponent.
type offer struct {
	action   shared.Action
	proposer int
	cards    []int   // Gift: the three offered cards
	sets     [][]int // Competition: the two offered pairs
}

// handleAction processes one request from a participant. Rejected requests
// are reported to the sender and leave the match untouched.
func (m *Match) handleAction(playerID string, msg protocol.Message) error {
	idx := m.playerIndex(playerID)
	if idx == -1 {
		log.Printf("Match %s: Action from unknown client ID %s", m.ID, playerID)
		return fmt.Errorf("%w: player %s", ErrMatchNotFound, playerID)
	}

	var err error
	switch msg.Type {
	case protocol.EndTurn:
		// Token-spending actions end the turn themselves and there is no pass.
		log.Printf("Match %s: Ignoring end-turn from %s.", m.ID, playerID)
	case protocol.HoverCard:
		var payload protocol.HoverCardPayload
		if err = decode(msg, &payload); err == nil {
			m.sendTo(m.Players[1-idx].ID, protocol.OpponentHover, protocol.OpponentHoverPayload{Index: payload.Index})
		}
	case protocol.TriggerSecretAction:
		var payload protocol.SecretActionPayload
		if err = decode(msg, &payload); err == nil {
			err = m.triggerSecret(idx, payload.PickedCard)
		}
	case protocol.TriggerDiscardAction:
		var payload protocol.DiscardActionPayload
		if err = decode(msg, &payload); err == nil {
			err = m.triggerDiscard(idx, payload.PickedCards)
		}
	case protocol.TriggerGiftAction:
		var payload protocol.GiftActionPayload
		if err = decode(msg, &payload); err == nil {
			err = m.triggerGift(idx, payload.PickedCards)
		}
	case protocol.EndGiftAction:
		var payload protocol.EndGiftActionPayload
		if err = decode(msg, &payload); err == nil {
			err = m.endGift(idx, payload.CardsToPick, payload.PickedCard)
		}
	case protocol.TriggerCompetitionAction:
		var payload protocol.CompetitionActionPayload
		if err = decode(msg, &payload); err == nil {
			err = m.triggerCompetition(idx, payload.PickedCards)
		}
	case protocol.EndCompetitionAction:
		var payload protocol.EndCompetitionActionPayload
		if err = decode(msg, &payload); err == nil {
			err = m.endCompetition(idx, payload.ChosenSetIndex, payload.PickedCards)
		}
	default:
		err = fmt.Errorf("%w: unknown action type %q", ErrInvalidAction, msg.Type)
	}

	if err != nil {
		log.Printf("Match %s: Rejected '%s' from %s: %v", m.ID, msg.Type, playerID, err)
		m.sendError(playerID, err.Error())
	}
	return err
}

func decode(msg protocol.Message, v interface{}) error {
	if err := msg.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed %s payload: %v", ErrInvalidAction, msg.Type, err)
	}
	return nil
}

// --- Secret ---

func (m *Match) triggerSecret(idx int, card int) error {
	p := m.Players[idx]
	if err := m.checkTrigger(idx, shared.ActionSecret); err != nil {
		return err
	}
	if err := checkPicks(p, []int{card}, 1); err != nil {
		return err
	}

	p.RemoveCard(card)
	p.Secret = card
	p.SpendAction(shared.ActionSecret)
	log.Printf("Match %s: %s kept a secret card.", m.ID, p.ID)

	m.sendTo(p.ID, protocol.SecretActionCleanUp, m.viewFor(idx))
	m.sendTo(m.Players[1-idx].ID, protocol.UpdateOpponentAvailableActions, m.viewFor(1-idx))
	m.endTurn()
	return nil
}

// --- Discard ---

func (m *Match) triggerDiscard(idx int, cards []int) error {
	p := m.Players[idx]
	if err := m.checkTrigger(idx, shared.ActionDiscard); err != nil {
		return err
	}
	if err := checkPicks(p, cards, 2); err != nil {
		return err
	}

	for _, c := range cards {
		p.RemoveCard(c)
	}
	m.Discarded = append(m.Discarded, cards...)
	p.Discarded = append(p.Discarded, cards...)
	p.SpendAction(shared.ActionDiscard)
	log.Printf("Match %s: %s discarded %v.", m.ID, p.ID, cards)

	m.sendTo(p.ID, protocol.DiscardActionCleanUp, m.viewFor(idx))
	m.sendTo(m.Players[1-idx].ID, protocol.UpdateOpponentAvailableActions, m.viewFor(1-idx))
	for i, pl := range m.Players {
		m.sendTo(pl.ID, protocol.UpdateDiscarded, protocol.UpdateDiscardedPayload{
			Discarded:         ids(m.Discarded),
			PlayerDiscarded:   ids(pl.Discarded),
			OpponentDiscarded: ids(m.Players[1-i].Discarded),
		})
	}
	m.endTurn()
	return nil
}

// --- Gift ---

func (m *Match) triggerGift(idx int, cards []int) error {
	p := m.Players[idx]
	if err := m.checkTrigger(idx, shared.ActionGift); err != nil {
		return err
	}
	if err := checkPicks(p, cards, 3); err != nil {
		return err
	}

	m.pending = &offer{action: shared.ActionGift, proposer: idx, cards: ids(cards)}
	log.Printf("Match %s: %s offered gift %v.", m.ID, p.ID, cards)
	m.sendTo(m.Players[1-idx].ID, protocol.ResolveGiftAction, protocol.ResolveGiftPayload{PickedCards: ids(cards)})
	return nil
}

// endGift completes a gift: the chosen card scores for the proposer, the
// other two score for the resolving opponent.
func (m *Match) endGift(idx int, cardsToPick []int, picked int) error {
	o, err := m.checkResolution(idx, shared.ActionGift)
	if err != nil {
		return err
	}
	if !sameCards(cardsToPick, o.cards) {
		return fmt.Errorf("%w: cards %v do not match the pending gift", ErrInvalidAction, cardsToPick)
	}
	if !containsCard(o.cards, picked) {
		return fmt.Errorf("%w: card %d is not part of the gift", ErrInvalidAction, picked)
	}

	proposer, resolver := m.Players[o.proposer], m.Players[idx]
	for _, c := range o.cards {
		proposer.RemoveCard(c)
		if c == picked {
			proposer.Scored = append(proposer.Scored, c)
		} else {
			resolver.Scored = append(resolver.Scored, c)
		}
	}
	proposer.SpendAction(shared.ActionGift)
	m.pending = nil
	log.Printf("Match %s: %s picked %d from the gift of %s.", m.ID, resolver.ID, picked, proposer.ID)

	for i, pl := range m.Players {
		m.sendTo(pl.ID, protocol.GiftActionCleanUp, m.viewFor(i))
	}
	m.endTurn()
	return nil
}

// --- Competition ---

func (m *Match) triggerCompetition(idx int, sets [][]int) error {
	p := m.Players[idx]
	if err := m.checkTrigger(idx, shared.ActionCompetition); err != nil {
		return err
	}
	if len(sets) != 2 || len(sets[0]) != 2 || len(sets[1]) != 2 {
		return fmt.Errorf("%w: competition needs two pairs of cards", ErrInvalidAction)
	}
	if err := checkPicks(p, append(ids(sets[0]), sets[1]...), 4); err != nil {
		return err
	}

	offered := [][]int{ids(sets[0]), ids(sets[1])}
	m.pending = &offer{action: shared.ActionCompetition, proposer: idx, sets: offered}
	log.Printf("Match %s: %s offered competition %v.", m.ID, p.ID, offered)
	m.sendTo(m.Players[1-idx].ID, protocol.ResolveCompetitionAction, protocol.ResolveCompetitionPayload{
		PickedCards: [][]int{ids(offered[0]), ids(offered[1])},
	})
	return nil
}

// endCompetition completes a competition: the chosen pair scores for the
// resolving opponent, the rejected pair for the proposer.
func (m *Match) endCompetition(idx int, chosenSet *int, sets [][]int) error {
	o, err := m.checkResolution(idx, shared.ActionCompetition)
	if err != nil {
		return err
	}
	if chosenSet == nil {
		return fmt.Errorf("%w: chosenSetIndex is required", ErrInvalidAction)
	}
	chosen := *chosenSet
	if chosen != 0 && chosen != 1 {
		return fmt.Errorf("%w: set index %d out of range", ErrInvalidAction, chosen)
	}
	if len(sets) != 2 || !sameCards(sets[0], o.sets[0]) || !sameCards(sets[1], o.sets[1]) {
		return fmt.Errorf("%w: sets %v do not match the pending competition", ErrInvalidAction, sets)
	}

	proposer, resolver := m.Players[o.proposer], m.Players[idx]
	for _, c := range o.sets[0] {
		proposer.RemoveCard(c)
	}
	for _, c := range o.sets[1] {
		proposer.RemoveCard(c)
	}
	resolver.Scored = append(resolver.Scored, o.sets[chosen]...)
	proposer.Scored = append(proposer.Scored, o.sets[1-chosen]...)
	proposer.SpendAction(shared.ActionCompetition)
	m.pending = nil
	log.Printf("Match %s: %s chose set %d from the competition of %s.", m.ID, resolver.ID, chosen, proposer.ID)

	for i, pl := range m.Players {
		m.sendTo(pl.ID, protocol.CompetitionActionCleanUp, m.viewFor(i))
	}
	m.endTurn()
	return nil
}

// --- Validation ---

// checkTrigger verifies the player may start the given action right now.
func (m *Match) checkTrigger(idx int, action shared.Action) error {
	if m.Phase != RoundActive {
		return fmt.Errorf("%w: round is not active", ErrInvalidAction)
	}
	if m.CurrentTurn != idx {
		return fmt.Errorf("%w: not your turn", ErrInvalidAction)
	}
	if m.pending != nil {
		return fmt.Errorf("%w: an offer is waiting for the opponent", ErrInvalidAction)
	}
	if !m.Players[idx].HasAction(action) {
		return fmt.Errorf("%w: %s action already used this round", ErrInvalidAction, action)
	}
	return nil
}

// checkResolution returns the pending offer the player at idx may resolve.
func (m *Match) checkResolution(idx int, action shared.Action) (*offer, error) {
	if m.Phase != RoundActive {
		return nil, fmt.Errorf("%w: round is not active", ErrInvalidAction)
	}
	o := m.pending
	if o == nil || o.action != action {
		return nil, fmt.Errorf("%w: no %s offer pending", ErrInvalidAction, action)
	}
	if o.proposer == idx {
		return nil, fmt.Errorf("%w: only the opponent can resolve the %s", ErrInvalidAction, action)
	}
	return o, nil
}

// checkPicks verifies exactly n distinct cards, all held by p.
func checkPicks(p *shared.Player, cards []int, n int) error {
	if len(cards) != n {
		return fmt.Errorf("%w: expected %d cards, got %d", ErrInvalidAction, n, len(cards))
	}
	seen := make(map[int]bool, n)
	for _, c := range cards {
		if seen[c] {
			return fmt.Errorf("%w: card %d picked twice", ErrInvalidAction, c)
		}
		seen[c] = true
		if !p.HasCard(c) {
			return fmt.Errorf("%w: card %d is not in hand", ErrInvalidAction, c)
		}
	}
	return nil
}

// sameCards reports whether a and b hold the same ids, in any order.
func sameCards(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	count := make(map[int]int, len(a))
	for _, c := range a {
		count[c]++
	}
	for _, c := range b {
		if count[c] == 0 {
			return false
		}
		count[c]--
	}
	return true
}

func containsCard(cards []int, card int) bool {
	for _, c := range cards {
		if c == card {
			return true
		}
	}
	return false
}
