package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/YelzhanWeb/takeaway/internal/adapter/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub owns the client connections attached to this instance and broadcasts
// relayed notifications to all of them. Connections are sticky to one
// process; the hub never knows about clients on other instances.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	lock       sync.RWMutex
	logger     logger.Logger
}

func NewHub(lgr logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     lgr,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.lock.Lock()
			h.clients[client.id] = client
			h.lock.Unlock()
			h.logger.Debug("ws_client_registered", "Client connected", "", map[string]interface{}{
				"client_id": client.id,
			})
		case client := <-h.unregister:
			h.lock.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.lock.Unlock()
			h.logger.Debug("ws_client_unregistered", "Client disconnected", "", map[string]interface{}{
				"client_id": client.id,
			})
		}
	}
}

// Broadcast queues the message for every local client. Slow clients are
// skipped rather than blocking the relay.
func (h *Hub) Broadcast(message []byte) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- message:
		default:
		}
	}
}

// Client is one websocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ServeWS upgrades the request and registers the connection with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws_upgrade_failed", "Failed to upgrade connection", "", nil, err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		id:   uuid.New().String()[:8],
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}
