package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 256
)

type Client struct {
	Hub      *Hub
	ImportID string
	Conn     *websocket.Conn
	Send     chan []byte
}

// Hub fans import events out to the clients watching each import id.
// Only Run touches the client map.
type Hub struct {
	clients    map[string]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan Event
	done       chan struct{}
	logger     *zap.Logger
}

type Event struct {
	ImportID  string      `json:"import_id"`
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan Event, sendBufferSize),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client's Send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
				delete(h.clients, id)
			}
			return

		case client := <-h.Register:
			if h.clients[client.ImportID] == nil {
				h.clients[client.ImportID] = make(map[*Client]bool)
			}
			h.clients[client.ImportID][client] = true

		case client := <-h.Unregister:
			h.remove(client)

		case event := <-h.Broadcast:
			clients, ok := h.clients[event.ImportID]
			if !ok {
				continue
			}
			msgBytes, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("Failed to encode import event", zap.String("type", event.Type), zap.Error(err))
				continue
			}
			for client := range clients {
				select {
				case client.Send <- msgBytes:
				default:
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.ImportID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.ImportID)
	}
}

// Publish queues an event without blocking. Events are dropped when the hub is
// stopped or its queue is full.
func (h *Hub) Publish(importID, eventType string, data interface{}) {
	event := Event{
		ImportID:  importID,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
	select {
	case h.Broadcast <- event:
	case <-h.done:
	default:
		h.logger.Warn("Dropping import event", zap.String("import_id", importID), zap.String("type", eventType))
	}
}

func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) WritePump() {
	defer c.Conn.Close()
	for message := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// ServeWs upgrades the request and subscribes the connection to importID.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, importID string, allowedOrigins []string) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), allowedOrigins)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Warn("Websocket upgrade failed", zap.String("import_id", importID), zap.Error(err))
		return
	}

	client := &Client{Hub: hub, ImportID: importID, Conn: conn, Send: make(chan []byte, sendBufferSize)}
	select {
	case hub.Register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
