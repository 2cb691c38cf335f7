package server

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"geisha-game/internal/game"
	"geisha-game/internal/protocol"
	"geisha-game/internal/shared"

	"github.com/google/uuid"
)

// clientMessage passes a message along with the client that sent it.
type clientMessage struct {
	client  *Client
	message protocol.Message
}

const roomCodeLength = 5

// Settings are applied to every match the hub starts.
type Settings struct {
	RoundDelay time.Duration
	StartDelay time.Duration
	OnResult   game.ResultHandler
}

// Hub manages connections and the lobby, and routes game events to the
// participant's match. Lobby state is only touched by the Run goroutine.
type Hub struct {
	clients  map[string]*Client // Participant id -> client
	clientMu sync.RWMutex

	waiting    *Client            // Quick-match queue, at most one
	rooms      map[string]*Client // Room code -> creator
	clientRoom map[*Client]string

	registry *game.Registry
	settings Settings
	rng      *rand.Rand

	processMessage chan clientMessage
	register       chan *Client
	unregister     chan *Client
	done           chan struct{}
}

// NewHub creates a new Hub instance.
func NewHub(registry *game.Registry, settings Settings) *Hub {
	return &Hub{
		clients:        make(map[string]*Client),
		rooms:          make(map[string]*Client),
		clientRoom:     make(map[*Client]string),
		registry:       registry,
		settings:       settings,
		rng:            rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 2)),
		processMessage: make(chan clientMessage),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
	}
}

// Run processes hub events until ctx is cancelled. Matches started by the
// hub share ctx.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			log.Println("Hub shutting down, closing client connections.")
			h.clientMu.Lock()
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.clientMu.Unlock()
			return

		case client := <-h.register:
			h.clientMu.Lock()
			h.clients[client.ID] = client
			h.clientMu.Unlock()
			log.Printf("Client %s (%s) connected", client.ID, client.conn.RemoteAddr())
			h.send(client, protocol.Connected, protocol.ConnectedPayload{PlayerID: client.ID})

		case client := <-h.unregister:
			h.removeClient(client)

		case clientMsg := <-h.processMessage:
			h.handleMessage(ctx, clientMsg.client, clientMsg.message)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.clientMu.Lock()
	if h.clients[client.ID] != client {
		h.clientMu.Unlock()
		return
	}
	delete(h.clients, client.ID)
	close(client.send)
	h.clientMu.Unlock()
	log.Printf("Client %s (%s) disconnected", client.ID, client.Name)

	if h.waiting == client {
		h.waiting = nil
		log.Printf("Client %s left the quick-match queue.", client.ID)
	}
	if code, ok := h.clientRoom[client]; ok {
		delete(h.clientRoom, client)
		if h.rooms[code] == client {
			delete(h.rooms, code)
			log.Printf("Client %s left room %s. Room deleted.", client.ID, code)
		}
	}

	if m, err := h.registry.Lookup(client.ID); err == nil {
		log.Printf("Client %s was in match %s. Notifying match.", client.ID, m.ID)
		go m.Disconnect(client.ID)
	}
}

// handleMessage processes a message received from a client.
func (h *Hub) handleMessage(ctx context.Context, client *Client, msg protocol.Message) {
	switch msg.Type {
	case protocol.QuickMatch:
		h.handleQuickMatch(ctx, client, msg)
	case protocol.CreateRoom:
		h.handleCreateRoom(client, msg)
	case protocol.JoinRoom:
		h.handleJoinRoom(ctx, client, msg)
	case protocol.ListRooms:
		h.send(client, protocol.RoomList, protocol.RoomListPayload{Rooms: h.roomList()})
	case protocol.Ping:
		h.send(client, protocol.Pong, nil)
	case protocol.EndTurn,
		protocol.TriggerSecretAction,
		protocol.TriggerDiscardAction,
		protocol.TriggerGiftAction,
		protocol.EndGiftAction,
		protocol.TriggerCompetitionAction,
		protocol.EndCompetitionAction,
		protocol.HoverCard:
		h.handleGameAction(client, msg)
	default:
		log.Printf("Received unknown message type '%s' from client %s (%s)", msg.Type, client.ID, client.Name)
		h.sendError(client, "Unknown message type.")
	}
}

func (h *Hub) handleQuickMatch(ctx context.Context, client *Client, msg protocol.Message) {
	var payload protocol.QuickMatchPayload
	if err := msg.Decode(&payload); err != nil {
		log.Printf("Error decoding quick-match payload from client %s: %v", client.ID, err)
		h.sendJoinError(client, "Invalid quick-match message format.")
		return
	}
	if h.busy(client) {
		log.Printf("Client %s asked for a quick match but is already associated with one.", client.ID)
		h.sendJoinError(client, "Already in a game or lobby.")
		return
	}
	h.setName(client, payload.Name)

	if h.waiting == nil {
		h.waiting = client
		log.Printf("Client %s (%s) is waiting for an opponent.", client.ID, client.Name)
		h.send(client, protocol.Waiting, protocol.WaitingPayload{Message: "Waiting for an opponent..."})
		return
	}
	opponent := h.waiting
	h.waiting = nil
	h.startMatch(ctx, opponent, client)
}

func (h *Hub) handleCreateRoom(client *Client, msg protocol.Message) {
	var payload protocol.QuickMatchPayload
	if err := msg.Decode(&payload); err != nil {
		log.Printf("Error decoding create-room payload from client %s: %v", client.ID, err)
		h.sendJoinError(client, "Invalid create-room message format.")
		return
	}
	if h.busy(client) {
		log.Printf("Client %s tried to create a room but is already associated with one.", client.ID)
		h.sendJoinError(client, "Already in a game or lobby.")
		return
	}
	h.setName(client, payload.Name)

	code := h.generateRoomCode()
	h.rooms[code] = client
	h.clientRoom[client] = code
	log.Printf("Client %s (%s) created room %s", client.ID, client.Name, code)
	h.send(client, protocol.RoomCreated, protocol.RoomCreatedPayload{RoomID: code})
}

func (h *Hub) handleJoinRoom(ctx context.Context, client *Client, msg protocol.Message) {
	var payload protocol.JoinRoomPayload
	if err := msg.Decode(&payload); err != nil {
		log.Printf("Error decoding join-room payload from client %s: %v", client.ID, err)
		h.sendJoinError(client, "Invalid join-room message format.")
		return
	}
	if h.busy(client) {
		log.Printf("Client %s tried to join a room but is already associated with one.", client.ID)
		h.sendJoinError(client, "Already in a game or lobby.")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(payload.RoomID))
	if code == "" {
		h.sendJoinError(client, "Room code cannot be empty.")
		return
	}
	creator, ok := h.rooms[code]
	if !ok {
		log.Printf("Client %s tried to join non-existent room %s", client.ID, code)
		h.sendJoinError(client, "Room not found.")
		return
	}
	h.setName(client, payload.Name)

	delete(h.rooms, code)
	delete(h.clientRoom, creator)
	log.Printf("Client %s (%s) joined room %s", client.ID, client.Name, code)
	h.startMatch(ctx, creator, client)
}

// handleGameAction forwards a game event to the participant's match.
func (h *Hub) handleGameAction(client *Client, msg protocol.Message) {
	m, err := h.registry.Lookup(client.ID)
	if err != nil {
		log.Printf("Received '%s' from client %s: %v", msg.Type, client.ID, err)
		h.sendError(client, "You are not in an active match.")
		return
	}
	if err := m.Submit(client.ID, msg); err != nil {
		log.Printf("Dropped '%s' from client %s for match %s: %v", msg.Type, client.ID, m.ID, err)
		switch {
		case errors.Is(err, game.ErrMatchClosed):
			h.sendError(client, "Match is over.")
		case errors.Is(err, game.ErrMatchBusy):
			h.sendError(client, "Too many requests, try again.")
		}
	}
}

// startMatch pairs two lobby clients. first takes the first turn.
func (h *Hub) startMatch(ctx context.Context, first, second *Client) {
	players := [2]*shared.Player{
		shared.NewPlayer(first.ID, first.Name),
		shared.NewPlayer(second.ID, second.Name),
	}
	m := game.NewMatch(uuid.NewString(), players, game.Options{
		Sender:     h.sendMessageToClient,
		OnResult:   h.settings.OnResult,
		RoundDelay: h.settings.RoundDelay,
		StartDelay: h.settings.StartDelay,
	})
	if err := h.registry.Add(m); err != nil {
		log.Printf("Failed to register match for %s and %s: %v", first.ID, second.ID, err)
		h.sendError(first, "Failed to start match.")
		h.sendError(second, "Failed to start match.")
		return
	}
	log.Printf("Match %s created for %s (%s) and %s (%s)", m.ID, first.ID, first.Name, second.ID, second.Name)
	go m.Run(ctx)
}

// busy reports whether the client is queued, hosting a room or playing.
func (h *Hub) busy(client *Client) bool {
	if h.waiting == client {
		return true
	}
	if _, ok := h.clientRoom[client]; ok {
		return true
	}
	_, err := h.registry.Lookup(client.ID)
	return err == nil
}

func (h *Hub) setName(client *Client, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		if client.Name != "" {
			return
		}
		name = "Guest-" + client.ID[:4]
	}
	client.Name = name
}

func (h *Hub) roomList() []protocol.RoomInfo {
	rooms := make([]protocol.RoomInfo, 0, len(h.rooms))
	for code, creator := range h.rooms {
		rooms = append(rooms, protocol.RoomInfo{RoomID: code, Players: []string{creator.Name}})
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomID < rooms[j].RoomID })
	return rooms
}

// generateRoomCode creates a unique alphanumeric room code.
func (h *Hub) generateRoomCode() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for {
		var sb strings.Builder
		for i := 0; i < roomCodeLength; i++ {
			sb.WriteByte(letters[h.rng.IntN(len(letters))])
		}
		code := sb.String()
		if _, exists := h.rooms[code]; !exists {
			return code
		}
		log.Printf("Generated room code %s collided, retrying...", code)
	}
}

// sendMessageToClient is the match's way back to a connection. It never
// blocks; a client whose buffer is full is dropped.
func (h *Hub) sendMessageToClient(clientID string, message []byte) {
	h.clientMu.RLock()
	defer h.clientMu.RUnlock()

	client, ok := h.clients[clientID]
	if !ok {
		log.Printf("Could not find client %s to send message (already disconnected?).", clientID)
		return
	}
	select {
	case client.send <- message:
	default:
		log.Printf("Failed to send message to client %s (channel full), initiating cleanup.", clientID)
		go func() {
			select {
			case h.unregister <- client:
			case <-h.done:
			}
		}()
	}
}

func (h *Hub) send(client *Client, msgType string, payload interface{}) {
	msgBytes, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		log.Printf("Error creating %s message for client %s: %v", msgType, client.ID, err)
		return
	}
	h.sendMessageToClient(client.ID, msgBytes)
}

func (h *Hub) sendError(client *Client, errorMsg string) {
	h.send(client, protocol.Error, protocol.ErrorPayload{Message: errorMsg})
}

func (h *Hub) sendJoinError(client *Client, errorMsg string) {
	h.send(client, protocol.JoinError, protocol.JoinErrorPayload{Message: errorMsg})
}
