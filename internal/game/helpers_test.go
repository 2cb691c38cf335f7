package game

import (
	"encoding/json"
	"reflect"
	"sync"
	"testing"
	"time"

	"geisha-game/internal/protocol"
	"geisha-game/internal/shared"
)

type sentMessage struct {
	to  string
	msg protocol.Message
}

// recorder captures every message a match sends.
type recorder struct {
	mu   sync.Mutex
	msgs []sentMessage
}

func (r *recorder) send(clientID string, message []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, sentMessage{to: clientID, msg: msg})
}

func (r *recorder) count(to, msgType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.msgs {
		if s.to == to && s.msg.Type == msgType {
			n++
		}
	}
	return n
}

// last decodes the payload of the latest message of a type sent to a player.
func (r *recorder) last(t *testing.T, to, msgType string, v interface{}) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.msgs) - 1; i >= 0; i-- {
		s := r.msgs[i]
		if s.to == to && s.msg.Type == msgType {
			if err := s.msg.Decode(v); err != nil {
				t.Fatalf("decode %s: %v", msgType, err)
			}
			return
		}
	}
	t.Fatalf("no %s message sent to %s", msgType, to)
}

// orderedDeck deals A cards 1-6, B cards 7-12, seeds the discard pile with
// 21 and leaves 13-20 in the deck, 20 drawn first.
func orderedDeck() []int {
	return shared.CardIDs()
}

func newScriptedMatch(t *testing.T, order []int) (*Match, *recorder) {
	t.Helper()
	rec := &recorder{}
	players := [2]*shared.Player{shared.NewPlayer("A", "alice"), shared.NewPlayer("B", "bob")}
	m := NewMatch("m1", players, Options{Sender: rec.send, RoundDelay: time.Hour})
	m.newDeck = func() *shared.Deck { return shared.NewDeckFrom(order) }
	m.start()
	if m.Phase != RoundActive {
		t.Fatalf("phase after start = %s, want %s", m.Phase, RoundActive)
	}
	return m, rec
}

func request(t *testing.T, msgType string, payload interface{}) protocol.Message {
	t.Helper()
	msg := protocol.Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		msg.Payload = raw
	}
	return msg
}

// setIndex returns a competition choice for a resolution payload.
func setIndex(i int) *int {
	return &i
}

func mustAct(t *testing.T, m *Match, playerID, msgType string, payload interface{}) {
	t.Helper()
	if err := m.handleAction(playerID, request(t, msgType, payload)); err != nil {
		t.Fatalf("%s %s: %v", playerID, msgType, err)
	}
	assertConservation(t, m)
}

// assertConservation checks every catalogue card sits in exactly one place.
func assertConservation(t *testing.T, m *Match) {
	t.Helper()
	seen := make(map[int]string)
	add := func(where string, cards ...int) {
		for _, c := range cards {
			if prev, dup := seen[c]; dup {
				t.Fatalf("card %d found in %s and %s", c, prev, where)
			}
			seen[c] = where
		}
	}
	add("deck", m.Deck.Cards...)
	add("discard", m.Discarded...)
	for _, p := range m.Players {
		add(p.ID+" hand", p.Hand...)
		add(p.ID+" scored", p.Scored...)
		if p.Secret != 0 {
			add(p.ID+" secret", p.Secret)
		}
	}
	if len(seen) != shared.CatalogueSize {
		t.Fatalf("cards accounted = %d, want %d", len(seen), shared.CatalogueSize)
	}
}

type snapshot struct {
	Hands, Scored, Discards [2][]int
	Secrets                 [2]int
	Actions                 [2][]shared.Action
	Deck, Discarded         []int
	CurrentTurn             int
	Pending                 *offer
	Phase                   Phase
}

func takeSnapshot(m *Match) snapshot {
	s := snapshot{
		Deck:        ids(m.Deck.Cards),
		Discarded:   ids(m.Discarded),
		CurrentTurn: m.CurrentTurn,
		Phase:       m.Phase,
	}
	if m.pending != nil {
		o := *m.pending
		s.Pending = &o
	}
	for i, p := range m.Players {
		s.Hands[i] = ids(p.Hand)
		s.Scored[i] = ids(p.Scored)
		s.Discards[i] = ids(p.Discarded)
		s.Secrets[i] = p.Secret
		s.Actions[i] = p.AvailableActions()
	}
	return s
}

func assertUnchanged(t *testing.T, before snapshot, m *Match) {
	t.Helper()
	if after := takeSnapshot(m); !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed by rejected action:\nbefore %+v\nafter  %+v", before, after)
	}
}

func assertTurn(t *testing.T, m *Match, want int) {
	t.Helper()
	if m.CurrentTurn != want {
		t.Fatalf("current turn = %d, want %d", m.CurrentTurn, want)
	}
}

// playScriptedRound spends all eight tokens using the ordered deck. B picks
// competitionChoice from A's competition.
func playScriptedRound(t *testing.T, m *Match, competitionChoice int) {
	t.Helper()

	mustAct(t, m, "A", protocol.TriggerSecretAction, protocol.SecretActionPayload{PickedCard: 20})
	assertTurn(t, m, 1)
	mustAct(t, m, "B", protocol.TriggerSecretAction, protocol.SecretActionPayload{PickedCard: 19})
	assertTurn(t, m, 0)

	mustAct(t, m, "A", protocol.TriggerDiscardAction, protocol.DiscardActionPayload{PickedCards: []int{1, 2}})
	assertTurn(t, m, 1)
	mustAct(t, m, "B", protocol.TriggerDiscardAction, protocol.DiscardActionPayload{PickedCards: []int{7, 10}})
	assertTurn(t, m, 0)

	mustAct(t, m, "A", protocol.TriggerGiftAction, protocol.GiftActionPayload{PickedCards: []int{3, 4, 16}})
	assertTurn(t, m, 0)
	mustAct(t, m, "B", protocol.EndGiftAction, protocol.EndGiftActionPayload{CardsToPick: []int{3, 4, 16}, PickedCard: 16})
	assertTurn(t, m, 1)

	mustAct(t, m, "B", protocol.TriggerGiftAction, protocol.GiftActionPayload{PickedCards: []int{8, 11, 15}})
	mustAct(t, m, "A", protocol.EndGiftAction, protocol.EndGiftActionPayload{CardsToPick: []int{8, 11, 15}, PickedCard: 15})
	assertTurn(t, m, 0)

	setsA := [][]int{{5, 6}, {18, 14}}
	mustAct(t, m, "A", protocol.TriggerCompetitionAction, protocol.CompetitionActionPayload{PickedCards: setsA})
	mustAct(t, m, "B", protocol.EndCompetitionAction, protocol.EndCompetitionActionPayload{ChosenSetIndex: setIndex(competitionChoice), PickedCards: setsA})
	assertTurn(t, m, 1)

	if m.roundEnds != 0 {
		t.Fatal("round ended before the last competition")
	}

	setsB := [][]int{{9, 12}, {17, 13}}
	mustAct(t, m, "B", protocol.TriggerCompetitionAction, protocol.CompetitionActionPayload{PickedCards: setsB})
	mustAct(t, m, "A", protocol.EndCompetitionAction, protocol.EndCompetitionActionPayload{ChosenSetIndex: setIndex(0), PickedCards: setsB})
}
