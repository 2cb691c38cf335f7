package shared

import (
	"reflect"
	"testing"
)

func TestPlayerActions(t *testing.T) {
	p := NewPlayer("p1", "")
	if got := p.AvailableActions(); !reflect.DeepEqual(got, AllActions) {
		t.Fatalf("fresh actions = %v", got)
	}
	p.SpendAction(ActionGift)
	p.SpendAction(ActionSecret)
	if got, want := p.AvailableActions(), []Action{ActionDiscard, ActionCompetition}; !reflect.DeepEqual(got, want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
	if p.HasAction(ActionGift) || p.Exhausted() {
		t.Fatal("token bookkeeping is off")
	}
	p.SpendAction(ActionDiscard)
	p.SpendAction(ActionCompetition)
	if !p.Exhausted() {
		t.Fatal("player should be exhausted")
	}
}

func TestPlayerHand(t *testing.T) {
	p := NewPlayer("p1", "")
	p.ResetRound([]int{3, 5, 8})
	p.AddCard(13)
	if !p.HasCard(13) || p.HasCard(4) {
		t.Fatal("HasCard is wrong")
	}
	if !p.RemoveCard(5) || p.RemoveCard(5) {
		t.Fatal("RemoveCard should remove exactly once")
	}
	if want := []int{3, 8, 13}; !reflect.DeepEqual(p.Hand, want) {
		t.Fatalf("hand = %v, want %v", p.Hand, want)
	}

	p.Scored = []int{13, 14, 1}
	if p.ScoredCount(Purple) != 2 || p.ScoredCount(Pink) != 1 || p.ScoredCount(Yellow) != 0 {
		t.Fatal("ScoredCount is wrong")
	}

	p.Secret = 8
	p.ResetRound([]int{1})
	if p.Secret != 0 || len(p.Scored) != 0 || len(p.AvailableActions()) != len(AllActions) {
		t.Fatalf("ResetRound left state behind: %+v", p)
	}
}
