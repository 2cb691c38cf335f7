package protocol

import (
	"encoding/json"

	"geisha-game/internal/shared"
)

// Message represents a generic WebSocket message structure.
type Message struct {
	Type    string          `json:"type"`              // Event name (e.g., "trigger-gift-action")
	Payload json.RawMessage `json:"payload,omitempty"` // Raw JSON payload, decoded by the handler
}

// Inbound event names (participant -> server).
const (
	EndTurn                  = "end-turn"
	TriggerSecretAction      = "trigger-secret-action"
	TriggerDiscardAction     = "trigger-discard-action"
	TriggerGiftAction        = "trigger-gift-action"
	EndGiftAction            = "end-gift-action"
	TriggerCompetitionAction = "trigger-competition-action"
	EndCompetitionAction     = "end-competition-action"
	HoverCard                = "hover-card"

	QuickMatch = "quick-match"
	CreateRoom = "create-room"
	JoinRoom   = "join-room"
	ListRooms  = "list-rooms"
	Ping       = "ping"
)

// Outbound event names (server -> participant). The "oponent" spelling is
// part of the client contract.
const (
	Connected                      = "connected"
	Waiting                        = "waiting"
	RoomCreated                    = "room-created"
	RoomList                       = "room-list"
	JoinError                      = "join-error"
	GameStart                      = "game-start"
	DrawnCard                      = "drawn-card"
	OpponentHandUpdated            = "oponent-hand-updated"
	TurnStart                      = "turn-start"
	SecretActionCleanUp            = "secret-action-clean-up"
	DiscardActionCleanUp           = "discard-action-clean-up"
	GiftActionCleanUp              = "gift-action-clean-up"
	CompetitionActionCleanUp       = "competition-action-clean-up"
	UpdateOpponentAvailableActions = "update-opponent-available-actions"
	UpdateDiscarded                = "update-discarded"
	ResolveGiftAction              = "resolve-gift-action"
	ResolveCompetitionAction       = "resolve-competition-action"
	OpponentHover                  = "opponent-hover"
	RoundEnd                       = "round-end"
	NewRound                       = "new-round"
	GameOver                       = "game-over"
	OpponentDisconnected           = "opponent-disconnected"
	Error                          = "error"
	Pong                           = "pong"
)

// --- Client -> Server Payload Structs ---

type SecretActionPayload struct {
	PickedCard int `json:"pickedCard"`
}

type DiscardActionPayload struct {
	PickedCards []int `json:"pickedCards"`
}

type GiftActionPayload struct {
	PickedCards []int `json:"pickedCards"`
}

type EndGiftActionPayload struct {
	CardsToPick []int `json:"cardsToPick"`
	PickedCard  int   `json:"pickedCard"`
}

type CompetitionActionPayload struct {
	PickedCards [][]int `json:"pickedCards"`
}

type EndCompetitionActionPayload struct {
	ChosenSetIndex *int    `json:"chosenSetIndex"` // Required, nil when absent
	PickedCards    [][]int `json:"pickedCards"`
}

type HoverCardPayload struct {
	Index int `json:"index"`
}

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name,omitempty"`
}

type QuickMatchPayload struct {
	Name string `json:"name,omitempty"`
}

// --- Server -> Client Payload Structs ---

type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}

type WaitingPayload struct {
	Message string `json:"message"`
}

type RoomCreatedPayload struct {
	RoomID string `json:"roomId"`
}

type RoomInfo struct {
	RoomID  string   `json:"roomId"`
	Players []string `json:"players"`
}

type RoomListPayload struct {
	Rooms []RoomInfo `json:"rooms"`
}

type GameConfig struct {
	AllCards []shared.Card `json:"allCards"`
}

type GameStartPayload struct {
	Role         string     `json:"role"` // "player" moves first, "opponent" second
	MatchID      string     `json:"matchId"`
	PlayerID     string     `json:"playerId"`
	OpponentID   string     `json:"opponentId"`
	Hand         []int      `json:"hand"`
	OpponentHand []int      `json:"opponentHand"`
	Discarded    int        `json:"discarded"` // Seed card of the discard pile
	Deck         int        `json:"deck"`
	Config       GameConfig `json:"config"`
}

type DrawnCardPayload struct {
	CardID int `json:"cardId"`
	Deck   int `json:"deck"`
}

type OpponentHandUpdatedPayload struct {
	Hand []int `json:"hand"`
	Deck int   `json:"deck"`
}

type TurnStartPayload struct {
	MyTurn bool `json:"myTurn"`
}

// PlayerView is the full refreshed view a recipient gets after an action.
type PlayerView struct {
	Hand                     []int           `json:"hand"`
	OpponentHand             []int           `json:"opponentHand"`
	AvailableActions         []shared.Action `json:"availableActions"`
	OpponentAvailableActions []shared.Action `json:"opponentAvailableActions"`
	ScoredCards              []int           `json:"scoredCards"`
	OpponentScoredCards      []int           `json:"opponentScoredCards"`
	SecretCard               int             `json:"secretCard"`
	Discarded                []int           `json:"discarded"`
	PlayerDiscarded          []int           `json:"playerDiscarded"`
	OpponentDiscarded        []int           `json:"opponentDiscarded"`
	Deck                     int             `json:"deck"`
}

type UpdateDiscardedPayload struct {
	Discarded         []int `json:"discarded"`
	PlayerDiscarded   []int `json:"playerDiscarded"`
	OpponentDiscarded []int `json:"opponentDiscarded"`
}

type ResolveGiftPayload struct {
	PickedCards []int `json:"pickedCards"`
}

type ResolveCompetitionPayload struct {
	PickedCards [][]int `json:"pickedCards"`
}

type OpponentHoverPayload struct {
	Index int `json:"index"`
}

type RoundEndPayload struct {
	Round               int                     `json:"round"`
	Favors              map[shared.Color]string `json:"favors"` // Color -> owning participant id
	ScoredCards         []int                   `json:"scoredCards"`
	OpponentScoredCards []int                   `json:"opponentScoredCards"`
	IsGameOver          bool                    `json:"isGameOver"`
}

type NewRoundPayload struct {
	Round        int                     `json:"round"`
	Hand         []int                   `json:"hand"`
	OpponentHand []int                   `json:"opponentHand"`
	Discarded    int                     `json:"discarded"`
	Deck         int                     `json:"deck"`
	Favors       map[shared.Color]string `json:"favors"`
}

type GameOverPayload struct {
	Winner string `json:"winner"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type JoinErrorPayload struct {
	Message string `json:"message"`
}

// Helper function to create a JSON message
func NewMessage(msgType string, payload interface{}) ([]byte, error) {
	if payload == nil {
		return json.Marshal(Message{Type: msgType})
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg := Message{
		Type:    msgType,
		Payload: payloadBytes,
	}
	return json.Marshal(msg)
}

// Decode unmarshals the message payload into v. An empty payload is
// decoded as an empty object.
func (m Message) Decode(v interface{}) error {
	if len(m.Payload) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(m.Payload, v)
}
