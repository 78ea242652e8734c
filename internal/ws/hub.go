package ws

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// codeEvent routes an event to the watchers of one submission code
type codeEvent struct {
	Code  string
	Event Event
}

// Hub maintains the clients watching each submission code and fans status
// events out to them
type Hub struct {
	// Registered clients by normalized submission code
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *codeEvent

	// Closed when Run returns; sends to the hub give up after that
	done chan struct{}

	mu  sync.RWMutex
	log *zap.Logger
}

// NewHub creates a new Hub instance
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *codeEvent, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// RoomKey normalizes a submission code so "lpr-2026-0142" and
// "LPR-2026-0142" share a room.
func RoomKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Run starts the hub's main loop and returns when ctx is done, closing every
// client's send channel. Run must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for code, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, code)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.code] == nil {
				h.rooms[client.code] = make(map[*Client]bool)
			}
			h.rooms[client.code][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.log.Error("marshal ws event", zap.String("type", event.Event.Type), zap.Error(err))
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.Code] {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove unregisters client and drops its room once empty. Caller holds mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.code]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.code)
	}
}

// Broadcast sends an event to every client watching code. It is dropped
// once the hub has stopped.
func (h *Hub) Broadcast(code string, event Event) {
	select {
	case h.broadcast <- &codeEvent{Code: RoomKey(code), Event: event}:
	case <-h.done:
	}
}

// join registers client, reporting false if the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters client. After shutdown Run has already closed it.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Watchers returns how many clients currently watch code
func (h *Hub) Watchers(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[RoomKey(code)])
}
