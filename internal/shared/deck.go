package shared

import (
	"errors"
	"log"
	"math/rand/v2"
)

// ErrEmptyDeck is returned when drawing from a deck with no cards left.
var ErrEmptyDeck = errors.New("deck is empty")

// HandSize is the number of cards dealt to each player at round start.
const HandSize = 6

// Deck is an ordered sequence of card ids. Cards are drawn from the end.
type Deck struct {
	Cards []int
}

// NewDeck returns an unshuffled deck holding the whole catalogue.
func NewDeck() *Deck {
	return &Deck{Cards: CardIDs()}
}

// NewShuffledDeck returns a uniformly shuffled catalogue deck.
func NewShuffledDeck(rng *rand.Rand) *Deck {
	d := NewDeck()
	d.Shuffle(rng)
	return d
}

// NewDeckFrom builds a deck with an explicit order. The slice is copied.
func NewDeckFrom(ids []int) *Deck {
	cards := make([]int, len(ids))
	copy(cards, ids)
	return &Deck{Cards: cards}
}

// Shuffle randomizes the order of cards in the deck.
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
}

// Len returns the number of cards left.
func (d *Deck) Len() int {
	return len(d.Cards)
}

// Draw removes and returns the last card of the deck.
func (d *Deck) Draw() (int, error) {
	if len(d.Cards) == 0 {
		return 0, ErrEmptyDeck
	}
	last := len(d.Cards) - 1
	card := d.Cards[last]
	d.Cards = d.Cards[:last]
	return card, nil
}

// Deal reserves the last card as the discard seed, then hands out
// cardsPerPlayer cards to each player from the front. What remains is the
// live deck. Returns nil hands if there are not enough cards.
func (d *Deck) Deal(numPlayers, cardsPerPlayer int) (seed int, hands [][]int) {
	needed := numPlayers*cardsPerPlayer + 1
	if len(d.Cards) < needed {
		log.Printf("Error: Not enough cards in deck (%d) to deal %d cards to %d players.", len(d.Cards), cardsPerPlayer, numPlayers)
		return 0, nil
	}

	seed, _ = d.Draw()
	hands = make([][]int, numPlayers)
	start := 0
	for i := 0; i < numPlayers; i++ {
		end := start + cardsPerPlayer
		hand := make([]int, cardsPerPlayer)
		copy(hand, d.Cards[start:end])
		hands[i] = hand
		start = end
	}
	rest := make([]int, len(d.Cards)-start)
	copy(rest, d.Cards[start:])
	d.Cards = rest
	return seed, hands
}
