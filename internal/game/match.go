package game

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"geisha-game/internal/protocol"
	"geisha-game/internal/shared"
)

// Phase represents the lifecycle stage of a match.
type Phase string

const (
	Starting    Phase = "Starting"    // Dealt, waiting for the first turn
	RoundActive Phase = "RoundActive" // Players are spending action tokens
	RoundEnded  Phase = "RoundEnd"    // Scored, waiting for the next round
	MatchOver   Phase = "MatchOver"   // Terminal
)

// MessageSender defines the function signature for sending messages back to clients.
// The Hub provides an implementation of this.
type MessageSender func(clientID string, message []byte)

// Options configures a new match.
type Options struct {
	Sender     MessageSender
	OnResult   ResultHandler
	RoundDelay time.Duration // Pause between round end and the next deal
	StartDelay time.Duration // Pause between game-start and the first turn
	Rand       *rand.Rand
}

type actionRequest struct {
	playerID string
	msg      protocol.Message
}

type disconnectRequest struct {
	playerID string
}

// Match is the state of one game between two participants. All state is
// owned by the goroutine running Run; other goroutines talk to it through
// Submit and Disconnect.
type Match struct {
	ID           string
	Players      [2]*shared.Player
	Deck         *shared.Deck
	Discarded    []int // Shared discard pile, seeded at every deal
	CurrentTurn  int   // Index into Players
	RoundStarter int
	Round        int
	Favors       map[shared.Color]string // Color -> owning participant id
	Phase        Phase
	Winner       string

	pending   *offer
	roundEnds int

	rng         *rand.Rand
	newDeck     func() *shared.Deck
	sendMessage MessageSender
	onResult    ResultHandler
	onClose     func(*Match)
	roundDelay  time.Duration
	startDelay  time.Duration

	timer   *time.Timer
	timerFn func()

	inbox     chan interface{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewMatch creates a match. players[0] takes the first turn.
func NewMatch(id string, players [2]*shared.Player, opts Options) *Match {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1))
	}
	m := &Match{
		ID:          id,
		Players:     players,
		Deck:        &shared.Deck{},
		Favors:      make(map[shared.Color]string),
		Phase:       Starting,
		rng:         rng,
		sendMessage: opts.Sender,
		onResult:    opts.OnResult,
		roundDelay:  opts.RoundDelay,
		startDelay:  opts.StartDelay,
		inbox:       make(chan interface{}, 64),
		done:        make(chan struct{}),
	}
	m.newDeck = func() *shared.Deck { return shared.NewShuffledDeck(m.rng) }
	return m
}

// Run deals the first round and processes requests until the match is over
// or ctx is cancelled.
func (m *Match) Run(ctx context.Context) {
	log.Printf("Match %s: Goroutine starting for players %s and %s.", m.ID, m.Players[0].ID, m.Players[1].ID)
	defer log.Printf("Match %s: Goroutine stopped.", m.ID)

	m.start()
	for m.Phase != MatchOver {
		select {
		case <-ctx.Done():
			log.Printf("Match %s: Context cancelled, shutting down.", m.ID)
			m.close()
		case in := <-m.inbox:
			switch req := in.(type) {
			case actionRequest:
				_ = m.handleAction(req.playerID, req.msg)
			case disconnectRequest:
				m.handleDisconnect(req.playerID)
			}
		case <-m.timerC():
			m.fireTimer()
		}
	}
}

// Submit queues an action request from a participant. It never blocks: a
// full inbox fails with ErrMatchBusy.
func (m *Match) Submit(playerID string, msg protocol.Message) error {
	select {
	case <-m.done:
		return ErrMatchClosed
	default:
	}
	select {
	case m.inbox <- actionRequest{playerID: playerID, msg: msg}:
		return nil
	default:
		return fmt.Errorf("%w: %d requests queued", ErrMatchBusy, len(m.inbox))
	}
}

// Disconnect tells the match a participant has left. The match ends.
func (m *Match) Disconnect(playerID string) {
	select {
	case <-m.done:
	case m.inbox <- disconnectRequest{playerID: playerID}:
	}
}

// Done is closed once the match has been torn down.
func (m *Match) Done() <-chan struct{} {
	return m.done
}

// start deals the first round and announces the match.
func (m *Match) start() {
	m.Round = 1
	m.CurrentTurn = 0
	m.RoundStarter = 0
	if err := m.dealRound(); err != nil {
		log.Printf("Match %s: %v", m.ID, err)
		m.broadcastError("Internal server error during dealing.")
		m.close()
		return
	}

	roles := [2]string{"player", "opponent"}
	for i, p := range m.Players {
		o := m.Players[1-i]
		m.sendTo(p.ID, protocol.GameStart, protocol.GameStartPayload{
			Role:         roles[i],
			MatchID:      m.ID,
			PlayerID:     p.ID,
			OpponentID:   o.ID,
			Hand:         ids(p.Hand),
			OpponentHand: ids(o.Hand),
			Discarded:    m.Discarded[0],
			Deck:         m.Deck.Len(),
			Config:       protocol.GameConfig{AllCards: shared.AllCards()},
		})
	}
	log.Printf("Match %s: Game started, %s moves first.", m.ID, m.Players[0].ID)

	m.schedule(m.startDelay, func() {
		m.Phase = RoundActive
		m.startTurn()
	})
}

// dealRound shuffles a fresh deck, seeds the discard pile and resets both
// players' round state. Favors are left alone.
func (m *Match) dealRound() error {
	deck := m.newDeck()
	seed, hands := deck.Deal(len(m.Players), shared.HandSize)
	if hands == nil {
		return fmt.Errorf("deal round %d: not enough cards", m.Round)
	}
	m.Deck = deck
	m.Discarded = []int{seed}
	m.pending = nil
	for i, p := range m.Players {
		p.ResetRound(hands[i])
	}
	return nil
}

func (m *Match) handleDisconnect(playerID string) {
	idx := m.playerIndex(playerID)
	if idx == -1 || m.Phase == MatchOver {
		return
	}
	log.Printf("Match %s: Player %s disconnected, ending match.", m.ID, playerID)
	m.sendTo(m.Players[1-idx].ID, protocol.OpponentDisconnected, nil)
	m.report(ReasonAbandoned)
	m.close()
}

// close tears the match down. Any scheduled round start is cancelled.
func (m *Match) close() {
	m.Phase = MatchOver
	m.pending = nil
	m.stopTimer()
	m.closeOnce.Do(func() {
		close(m.done)
		if m.onClose != nil {
			m.onClose(m)
		}
	})
}

// --- Timer helpers ---

// schedule runs fn on the match goroutine after d. Only one task is
// pending at a time; a zero delay runs fn immediately.
func (m *Match) schedule(d time.Duration, fn func()) {
	m.stopTimer()
	if d <= 0 {
		fn()
		return
	}
	m.timer = time.NewTimer(d)
	m.timerFn = fn
}

func (m *Match) timerC() <-chan time.Time {
	if m.timer == nil {
		return nil
	}
	return m.timer.C
}

func (m *Match) fireTimer() {
	fn := m.timerFn
	m.timer, m.timerFn = nil, nil
	if fn != nil && m.Phase != MatchOver {
		fn()
	}
}

func (m *Match) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer, m.timerFn = nil, nil
}

// --- Messaging Helpers ---

func (m *Match) sendTo(playerID string, msgType string, payload interface{}) {
	if m.sendMessage == nil {
		log.Printf("Match %s: Error - sendMessage callback is nil when sending to %s.", m.ID, playerID)
		return
	}
	msgBytes, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		log.Printf("Match %s: Error creating %s message for %s: %v", m.ID, msgType, playerID, err)
		return
	}
	m.sendMessage(playerID, msgBytes)
}

func (m *Match) broadcast(msgType string, payload interface{}) {
	for _, p := range m.Players {
		m.sendTo(p.ID, msgType, payload)
	}
}

func (m *Match) sendError(playerID string, errorMsg string) {
	m.sendTo(playerID, protocol.Error, protocol.ErrorPayload{Message: errorMsg})
}

func (m *Match) broadcastError(errorMsg string) {
	m.broadcast(protocol.Error, protocol.ErrorPayload{Message: errorMsg})
}

// viewFor builds the full refreshed view for the player at idx.
func (m *Match) viewFor(idx int) protocol.PlayerView {
	p, o := m.Players[idx], m.Players[1-idx]
	return protocol.PlayerView{
		Hand:                     ids(p.Hand),
		OpponentHand:             ids(o.Hand),
		AvailableActions:         p.AvailableActions(),
		OpponentAvailableActions: o.AvailableActions(),
		ScoredCards:              ids(p.Scored),
		OpponentScoredCards:      ids(o.Scored),
		SecretCard:               p.Secret,
		Discarded:                ids(m.Discarded),
		PlayerDiscarded:          ids(p.Discarded),
		OpponentDiscarded:        ids(o.Discarded),
		Deck:                     m.Deck.Len(),
	}
}

// --- Utility Helpers ---

// playerIndex returns 0 or 1, or -1 for an unknown participant.
func (m *Match) playerIndex(playerID string) int {
	for i, p := range m.Players {
		if p != nil && p.ID == playerID {
			return i
		}
	}
	return -1
}

// ids copies a card id slice; the result is never nil.
func ids(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}
