package game

import (
	"errors"
	"reflect"
	"testing"

	"geisha-game/internal/protocol"
	"geisha-game/internal/shared"
)

func TestScriptedRoundWithoutWinner(t *testing.T) {
	var results []Result
	m, rec := newScriptedMatch(t, orderedDeck())
	m.onResult = func(r Result) { results = append(results, r) }

	playScriptedRound(t, m, 0)

	if m.roundEnds != 1 || rec.count("A", protocol.RoundEnd) != 1 || rec.count("B", protocol.RoundEnd) != 1 {
		t.Fatalf("round end fired %d times", m.roundEnds)
	}
	if m.Phase != RoundEnded {
		t.Fatalf("phase = %s, want %s", m.Phase, RoundEnded)
	}
	if m.Players[0].Secret != 0 || m.Players[1].Secret != 0 {
		t.Fatal("secret cards were not revealed")
	}
	if !containsCard(m.Players[0].Scored, 20) || !containsCard(m.Players[1].Scored, 19) {
		t.Fatal("revealed secrets missing from scored piles")
	}

	want := map[shared.Color]string{
		shared.Red:       "A",
		shared.Gold:      "A",
		shared.LightBlue: "B",
		shared.Green:     "B",
	}
	if !reflect.DeepEqual(m.Favors, want) {
		t.Fatalf("favors = %v, want %v", m.Favors, want)
	}

	var end protocol.RoundEndPayload
	rec.last(t, "B", protocol.RoundEnd, &end)
	if end.IsGameOver || !reflect.DeepEqual(end.Favors, want) {
		t.Fatalf("round-end for B = %+v", end)
	}
	if !reflect.DeepEqual(end.ScoredCards, m.Players[1].Scored) || !reflect.DeepEqual(end.OpponentScoredCards, m.Players[0].Scored) {
		t.Fatalf("round-end scored piles do not match state: %+v", end)
	}
	if len(results) != 0 || rec.count("A", protocol.GameOver) != 0 {
		t.Fatal("match concluded without a winner")
	}
	if m.timer == nil {
		t.Fatal("next round was not scheduled")
	}
}

func TestScriptedRoundWithWinner(t *testing.T) {
	var results []Result
	registry := NewRegistry()
	m, rec := newScriptedMatch(t, orderedDeck())
	if err := registry.Add(m); err != nil {
		t.Fatalf("add: %v", err)
	}
	m.onResult = func(r Result) { results = append(results, r) }

	playScriptedRound(t, m, 1)

	want := map[shared.Color]string{
		shared.Red:       "A",
		shared.Gold:      "A",
		shared.Green:     "A",
		shared.LightBlue: "B",
		shared.Purple:    "B",
		shared.Yellow:    "B",
	}
	if !reflect.DeepEqual(m.Favors, want) {
		t.Fatalf("favors = %v, want %v", m.Favors, want)
	}
	if m.Winner != "B" || m.Phase != MatchOver {
		t.Fatalf("winner = %q phase = %s, want B and %s", m.Winner, m.Phase, MatchOver)
	}

	var over protocol.GameOverPayload
	rec.last(t, "A", protocol.GameOver, &over)
	if over.Winner != "B" {
		t.Fatalf("game-over winner = %q, want B", over.Winner)
	}
	var end protocol.RoundEndPayload
	rec.last(t, "A", protocol.RoundEnd, &end)
	if !end.IsGameOver {
		t.Fatal("round-end did not flag the match as over")
	}

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	r := results[0]
	if r.Reason != ReasonWinner || r.Winner != "B" || r.Points != [2]int{8, 11} || r.FavorCounts != [2]int{3, 3} {
		t.Fatalf("unexpected result %+v", r)
	}

	select {
	case <-m.Done():
	default:
		t.Fatal("match not torn down")
	}
	if registry.Len() != 0 {
		t.Fatal("registry still holds the finished match")
	}
	if m.timer != nil {
		t.Fatal("a new round was scheduled after the match ended")
	}
}

func TestNewRoundPreservesFavorsAndResetsState(t *testing.T) {
	m, rec := newScriptedMatch(t, orderedDeck())
	playScriptedRound(t, m, 0)

	before := copyFavors(m.Favors)
	m.fireTimer()

	if !reflect.DeepEqual(before, m.Favors) {
		t.Fatalf("favors changed across rounds: %v -> %v", before, m.Favors)
	}
	if m.Round != 2 || m.Phase != RoundActive {
		t.Fatalf("round = %d phase = %s", m.Round, m.Phase)
	}
	// A opened round one, so B opens round two.
	assertTurn(t, m, 1)
	if m.RoundStarter != 1 {
		t.Fatalf("round starter = %d, want 1", m.RoundStarter)
	}
	assertConservation(t, m)

	a, b := m.Players[0], m.Players[1]
	if len(a.Hand) != 6 || len(b.Hand) != 7 {
		t.Fatalf("hand sizes = %d/%d, want 6/7", len(a.Hand), len(b.Hand))
	}
	if !reflect.DeepEqual(m.Discarded, []int{21}) || m.Deck.Len() != 7 {
		t.Fatalf("discard = %v deck = %d", m.Discarded, m.Deck.Len())
	}
	for _, p := range m.Players {
		if len(p.Scored) != 0 || p.Secret != 0 || len(p.Discarded) != 0 || len(p.AvailableActions()) != 4 {
			t.Fatalf("player %s not reset: %+v", p.ID, p)
		}
	}

	var nr protocol.NewRoundPayload
	rec.last(t, "A", protocol.NewRound, &nr)
	if nr.Round != 2 || !reflect.DeepEqual(nr.Favors, before) {
		t.Fatalf("new-round = %+v", nr)
	}
	var drawn protocol.DrawnCardPayload
	rec.last(t, "B", protocol.DrawnCard, &drawn)
	if drawn.CardID != 20 {
		t.Fatalf("B drew %d, want 20", drawn.CardID)
	}
}

func TestDisconnectCancelsScheduledRound(t *testing.T) {
	var results []Result
	m, rec := newScriptedMatch(t, orderedDeck())
	m.onResult = func(r Result) { results = append(results, r) }
	playScriptedRound(t, m, 0)
	if m.timer == nil {
		t.Fatal("next round was not scheduled")
	}

	m.handleDisconnect("A")

	if m.timer != nil || m.Phase != MatchOver {
		t.Fatalf("timer still pending or phase %s", m.Phase)
	}
	if rec.count("B", protocol.OpponentDisconnected) != 1 {
		t.Fatal("remaining player was not told about the disconnect")
	}
	m.fireTimer()
	if m.Round != 1 {
		t.Fatalf("round advanced to %d after teardown", m.Round)
	}
	if len(results) != 1 || results[0].Reason != ReasonAbandoned || results[0].Winner != "" {
		t.Fatalf("results = %+v", results)
	}
	if err := m.Submit("B", request(t, protocol.EndTurn, nil)); !errors.Is(err, ErrMatchClosed) {
		t.Fatalf("submit after teardown = %v, want ErrMatchClosed", err)
	}
}

func TestActionsRejectedBetweenRounds(t *testing.T) {
	m, _ := newScriptedMatch(t, orderedDeck())
	playScriptedRound(t, m, 0)

	before := takeSnapshot(m)
	err := m.handleAction("A", request(t, protocol.TriggerSecretAction, protocol.SecretActionPayload{PickedCard: 1}))
	if err == nil {
		t.Fatal("action accepted while the round is over")
	}
	assertUnchanged(t, before, m)
}
