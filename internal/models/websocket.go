package models

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types pushed to room subscribers.
const (
	EventRosterUpdated = "roster_updated"
	EventGameCreated   = "game_created"
	EventScoreRecorded = "score_recorded"
)

// GlobalHub is a singleton instance of the Hub
var GlobalHub *Hub
var hubOnce sync.Once

// Hub maintains the set of active clients and fans events out to the rooms
// they subscribed to.
type Hub struct {
	// Registered clients.
	Clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// roomID -> userID -> connections
	Rooms map[string]map[string][]*Client

	mu sync.RWMutex
}

// Client represents one WebSocket connection subscribed to a room.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	UserID string
	RoomID string
}

// Event is the wire format for room broadcasts.
type Event struct {
	Type   string          `json:"type"`
	RoomID string          `json:"room_id"`
	UserID string          `json:"user_id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[*Client]bool),
		Rooms:      make(map[string]map[string][]*Client),
	}
}

// GetHub returns the singleton instance of the Hub
func GetHub() *Hub {
	hubOnce.Do(func() {
		GlobalHub = NewHub()
		go GlobalHub.Run()
	})
	return GlobalHub
}

// Run starts the hub's registration loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client] = true
			if _, exists := h.Rooms[client.RoomID]; !exists {
				h.Rooms[client.RoomID] = make(map[string][]*Client)
			}
			h.Rooms[client.RoomID][client.UserID] = append(h.Rooms[client.RoomID][client.UserID], client)
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)

				if users, exists := h.Rooms[client.RoomID]; exists {
					clients := users[client.UserID]
					for i, c := range clients {
						if c == client {
							users[client.UserID] = append(clients[:i], clients[i+1:]...)
							break
						}
					}
					if len(users[client.UserID]) == 0 {
						delete(users, client.UserID)
					}
					if len(users) == 0 {
						delete(h.Rooms, client.RoomID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom sends an event to every client subscribed to a room.
// Clients whose send buffer is full are skipped rather than blocked on.
func (h *Hub) BroadcastToRoom(roomID string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.Rooms[roomID] {
		for _, client := range clients {
			select {
			case client.Send <- payload:
			default:
			}
		}
	}
}

// IsUserConnected reports whether a user has any live connection in a room.
func (h *Hub) IsUserConnected(roomID, userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if users, exists := h.Rooms[roomID]; exists {
		return len(users[userID]) > 0
	}
	return false
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}

		// Subscribers don't get to speak for other rooms or users.
		event.RoomID = c.RoomID
		event.UserID = c.UserID
		c.Hub.BroadcastToRoom(c.RoomID, event)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed
	maxMessageSize = 512
)
