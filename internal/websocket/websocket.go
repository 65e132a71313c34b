package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/itbasis/go-clock"

	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/internal/models"
	"github.com/patrickashi/vi-predict/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // same-origin pages only, nothing sensitive crosses this socket
	},
}

// tickInterval is how often connected fixtures pages get a deadline update
const tickInterval = time.Minute

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	log        logger.Logger
	clock      clock.Clock
	clients    map[*Client]bool
	broadcast  chan models.WSMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex

	deadlineMu sync.Mutex
	gameweek   string
	deadline   time.Time
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan models.WSMessage
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, clk clock.Clock) *Hub {
	return &Hub{
		log:        log,
		clock:      clk,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.WSMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration/unregistration and message broadcasting
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.log.Debug("Client connected", "total_clients", len(h.clients))

			// Bring the new client up to date with the current deadline
			if msg, ok := h.deadlineMessage(); ok {
				go func() { client.send <- msg }()
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", len(h.clients))

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// BroadcastMessage sends a message to all connected clients
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	h.broadcast <- models.WSMessage{
		Type:    msgType,
		Payload: payload,
	}
}

// BroadcastPredictionsSaved implements services.Broadcaster. Other open tabs
// of the same user reload their fixtures view when they see it.
func (h *Hub) BroadcastPredictionsSaved(gameweek string) {
	h.BroadcastMessage("predictions_saved", map[string]interface{}{
		"gameweek": gameweek,
	})
}

// SetDeadline records the current gameweek's prediction deadline for the
// periodic countdown broadcasts. Called when the fixtures page loads.
func (h *Hub) SetDeadline(gameweek string, deadline time.Time) {
	h.deadlineMu.Lock()
	defer h.deadlineMu.Unlock()
	h.gameweek = gameweek
	h.deadline = deadline
}

func (h *Hub) deadlineMessage() (models.WSMessage, bool) {
	h.deadlineMu.Lock()
	defer h.deadlineMu.Unlock()

	if h.deadline.IsZero() {
		return models.WSMessage{}, false
	}

	remaining := h.deadline.Sub(h.clock.Now())
	return models.WSMessage{
		Type: "deadline_tick",
		Payload: map[string]interface{}{
			"gameweek":  h.gameweek,
			"time_left": services.FormatCountdown(remaining),
			"passed":    remaining <= 0,
		},
	}, true
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Received message", "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(message)
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan models.WSMessage, 256),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// StartDeadlineTicker broadcasts a countdown update every minute until the
// context is cancelled. Broadcasts stop while no deadline is set.
func (h *Hub) StartDeadlineTicker(ctx context.Context) {
	ticker := h.clock.Ticker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("Deadline ticker stopped")
			return
		case <-ticker.C:
			if msg, ok := h.deadlineMessage(); ok {
				h.broadcast <- msg
			}
		}
	}
}
