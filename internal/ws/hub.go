package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/windoze95/chefremy-api/internal/logger"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Audio chunks arrive base64
	// encoded, so this is larger than a text protocol would need.
	maxMessageSize = 1 << 20

	sendBuffer = 256
)

// Client is one WebSocket connection watching a cooking session.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	RoomID   string // cooking session ID
	ClientID string
}

// Hub maintains one room per cooking session and fans messages out to it.
type Hub struct {
	Rooms      map[string]map[*Client]bool // roomID -> set of clients
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan *RoomMessage
	mu         sync.RWMutex

	onRoomEmpty func(roomID string)
}

// RoomMessage carries a message destined for a specific room.
type RoomMessage struct {
	RoomID  string
	Message []byte
	Sender  *Client // skipped when set; nil reaches everyone
}

// NewHub creates and returns a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan *RoomMessage),
	}
}

// OnRoomEmpty registers fn to run, on its own goroutine, whenever the last
// client leaves a room.
func (h *Hub) OnRoomEmpty(fn func(roomID string)) {
	h.mu.Lock()
	h.onRoomEmpty = fn
	h.mu.Unlock()
}

// Run handles register, unregister, and broadcast events. It should be
// launched as a goroutine.
func (h *Hub) Run() {
	log := logger.Get()

	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.RoomID] == nil {
				h.Rooms[client.RoomID] = make(map[*Client]bool)
			}
			h.Rooms[client.RoomID][client] = true
			h.mu.Unlock()

			log.Info("client registered",
				zap.String("session_id", client.RoomID),
				zap.String("client_id", client.ClientID),
			)

		case client := <-h.Unregister:
			h.mu.Lock()
			emptied := h.removeLocked(client)
			hook := h.onRoomEmpty
			h.mu.Unlock()
			if emptied && hook != nil {
				go hook(client.RoomID)
			}

			log.Info("client unregistered",
				zap.String("session_id", client.RoomID),
				zap.String("client_id", client.ClientID),
			)

		case msg := <-h.Broadcast:
			emptied := false
			h.mu.Lock()
			for client := range h.Rooms[msg.RoomID] {
				if msg.Sender != nil && client == msg.Sender {
					continue
				}
				select {
				case client.Send <- msg.Message:
				default:
					// Client's send buffer is full; disconnect it.
					log.Warn("dropping slow client",
						zap.String("session_id", client.RoomID),
						zap.String("client_id", client.ClientID),
					)
					if h.removeLocked(client) {
						emptied = true
					}
				}
			}
			hook := h.onRoomEmpty
			h.mu.Unlock()
			if emptied && hook != nil {
				go hook(msg.RoomID)
			}
		}
	}
}

// removeLocked drops client from its room and reports whether the room is
// now empty.
func (h *Hub) removeLocked(client *Client) bool {
	clients, ok := h.Rooms[client.RoomID]
	if !ok {
		return false
	}
	if _, exists := clients[client]; !exists {
		return false
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.Rooms, client.RoomID)
		return true
	}
	return false
}

// SendTo delivers a message to one registered client. It reports false when
// the client has left or its buffer is full.
func (h *Hub) SendTo(client *Client, message []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.Rooms[client.RoomID][client] {
		return false
	}
	select {
	case client.Send <- message:
		return true
	default:
		return false
	}
}

// BroadcastTo queues a message for every client in a room.
func (h *Hub) BroadcastTo(roomID string, message []byte) {
	h.Broadcast <- &RoomMessage{RoomID: roomID, Message: message}
}

// RoomSize returns the number of clients in a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Rooms[roomID])
}

// ReadPump reads messages from the WebSocket connection. It is intended to be
// run in a per-client goroutine. The provided handler is called for each
// incoming message.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
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
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
			) {
				logger.Get().Warn("unexpected websocket close",
					zap.String("session_id", c.RoomID),
					zap.String("client_id", c.ClientID),
					zap.Error(err),
				)
			}
			break
		}
		handler(c, message)
	}
}

// WritePump sends messages from the Send channel to the WebSocket connection.
// It also sends periodic pings to keep the connection alive. It is intended to
// be run in a per-client goroutine.
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
				// Hub closed the channel.
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
