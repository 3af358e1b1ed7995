package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ikkim/storefront-backend/pkg/logger"
)

const (
	sendBufferSize = 64

	// Rate limiting: messages accepted from a client per second
	maxMessagesPerSecond = 10
)

// Client is one live websocket session of a user. A user may hold several.
type Client struct {
	hub    *Hub
	conn   *Conn
	UserID uint
	send   chan []byte

	messageCount  int
	lastResetTime time.Time
}

func NewClient(hub *Hub, conn *Conn, userID uint) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		UserID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

// userMessage goes to every session of userID, or only to client when set.
type userMessage struct {
	userID uint
	client *Client
	data   []byte
}

type sessionQuery struct {
	userID uint
	reply  chan int
}

// Hub routes messages to the sessions of a user. The clients map is owned by the
// Run goroutine; every other method talks to it through channels.
type Hub struct {
	clients    map[uint]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	push       chan userMessage
	sessions   chan sessionQuery
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]struct{}),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		push:       make(chan userMessage, 1024),
		sessions:   make(chan sessionQuery),
		done:       make(chan struct{}),
	}
}

// Run processes hub events until ctx is cancelled, then closes every session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					close(client.send)
				}
			}
			h.clients = map[uint]map[*Client]struct{}{}
			logger.Info("WebSocket hub stopped")
			return

		case client := <-h.register:
			set, ok := h.clients[client.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.UserID] = set
			}
			set[client] = struct{}{}
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": len(set),
			})

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.push:
			for client := range h.clients[msg.userID] {
				if msg.client != nil && msg.client != client {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": msg.userID,
					})
					h.remove(client)
				}
			}

		case q := <-h.sessions:
			q.reply <- len(h.clients[q.userID])
		}
	}
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(set),
	})
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUser queues payload as JSON for every session of the user.
// Messages are dropped when the hub is saturated.
func (h *Hub) SendToUser(userID uint, payload interface{}) error {
	return h.enqueue(userID, nil, payload)
}

// SendToClient queues payload for a single session. It is a no-op once the
// client has been unregistered.
func (h *Hub) SendToClient(client *Client, payload interface{}) error {
	return h.enqueue(client.UserID, client, payload)
}

func (h *Hub) enqueue(userID uint, client *Client, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal websocket payload", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	select {
	case h.push <- userMessage{userID: userID, client: client, data: data}:
	default:
		logger.Warn("Push channel full, message dropped", map[string]interface{}{
			"user_id": userID,
		})
	}
	return nil
}

// SessionCount returns how many live sessions the user has.
func (h *Hub) SessionCount(userID uint) int {
	q := sessionQuery{userID: userID, reply: make(chan int, 1)}
	select {
	case h.sessions <- q:
		return <-q.reply
	case <-h.done:
		return 0
	}
}

// allow reports whether the client is still under its per-second message budget.
func (c *Client) allow(now time.Time) bool {
	if now.Sub(c.lastResetTime) >= time.Second {
		c.messageCount = 0
		c.lastResetTime = now
	}
	c.messageCount++
	return c.messageCount <= maxMessagesPerSecond
}
