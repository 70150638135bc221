package broadcast

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentSends bounds the writes of one broadcast.
const maxConcurrentSends = 16

// Conn is the part of a WebSocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one WebSocket connection attached to a session.
type Client struct {
	ID        string
	SessionID string

	conn Conn
	mu   sync.Mutex
}

// NewClient wraps conn for the hub.
func NewClient(id, sessionID string, conn Conn) *Client {
	return &Client{ID: id, SessionID: sessionID, conn: conn}
}

// Send writes one text frame. Writes from the hub and from the connection
// handler are serialised here.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// SendJSON marshals v and sends it as one text frame.
func (c *Client) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Send(data)
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.Close()
}

// message is a payload addressed to every client of a session.
type message struct {
	SessionID string
	Payload   any
}

// Hub fans session updates out to the WebSocket clients watching them.
type Hub struct {
	clients    map[string]*Client         // clientID -> Client
	sessions   map[string]map[string]bool // sessionID -> set of clientIDs
	register   chan *Client
	unregister chan *Client
	broadcast  chan *message
	done       chan struct{}
	mu         sync.RWMutex
	logger     types.Logger
}

// NewHub creates a new Hub.
func NewHub(logger types.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		sessions:   make(map[string]map[string]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *message, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main loop until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Hub shutting down")
			h.closeAllClients()
			close(h.done)
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case msg := <-h.broadcast:
			h.handleBroadcast(msg)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		client.close()
	}
	h.clients = make(map[string]*Client)
	h.sessions = make(map[string]map[string]bool)
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	if h.sessions[client.SessionID] == nil {
		h.sessions[client.SessionID] = make(map[string]bool)
	}
	h.sessions[client.SessionID][client.ID] = true
	h.logger.Debug("Client registered", "clientID", client.ID, "sessionID", client.SessionID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	if set := h.sessions[client.SessionID]; set != nil {
		delete(set, client.ID)
		if len(set) == 0 {
			delete(h.sessions, client.SessionID)
		}
	}
	h.logger.Debug("Client unregistered", "clientID", client.ID, "sessionID", client.SessionID)
}

func (h *Hub) handleBroadcast(msg *message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clientIDs, ok := h.sessions[msg.SessionID]
	if !ok {
		return
	}

	data, err := json.Marshal(msg.Payload)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message", "error", err)
		return
	}

	// Writes fan out so one slow socket does not delay the rest.
	var g errgroup.Group
	g.SetLimit(maxConcurrentSends)
	for clientID := range clientIDs {
		client, ok := h.clients[clientID]
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := client.Send(data); err != nil {
				h.logger.Warn("Failed to send to client", "clientID", client.ID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Register adds a client to the hub. After the hub stops the client is
// closed instead.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

// Unregister removes a client from the hub. It is a no-op once the hub
// has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends payload to every client attached to sessionID. Payloads
// sent after the hub stops are dropped.
func (h *Hub) Broadcast(sessionID string, payload any) {
	select {
	case h.broadcast <- &message{SessionID: sessionID, Payload: payload}:
	case <-h.done:
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SessionClientCount returns the number of clients watching a session.
func (h *Hub) SessionClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}
