package websocket

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/lunani254/present/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Hub keeps the registry of connected clients grouped by user ID and fans
// notification frames out to them. The notification channel is one way, the
// hub never feeds client frames back into the engine.
type Hub struct {
	// Registered clients grouped by user ID, a user may hold several
	// connections (phone and web session at once).
	clients map[string]map[*Client]bool
	// Outbound messages addressed to one user's connections
	send chan *Message
	// Register requests from the clients.
	register chan *Client
	// Unregister requests from clients.
	unregister chan *Client
}

// Client represents an individual ws connection
type Client struct {
	Hub *Hub
	// The websocket connection.
	Conn *websocket.Conn
	// Buffered channel of outbound messages.
	Send chan []byte
	// The user this connection belongs to.
	UserID string
	// Unique identifier for the connection
	ID string
}

type Message struct {
	UserID string
	Data   []byte
}

func NewHub() *Hub {
	return &Hub{
		send:       make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
	}
}

// Run starts the hub listening on its channels, blocks until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	log.Info("Notification hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info("Notification hub shutting down")
			return

		case client := <-h.register:
			if _, ok := h.clients[client.UserID]; !ok {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			log.Info("Client registered",
				zap.String("clientID", client.ID),
				zap.String("userID", client.UserID),
			)

		case client := <-h.unregister:
			if clients, ok := h.clients[client.UserID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.UserID)
					}
					log.Info("Client unregistered",
						zap.String("clientID", client.ID),
						zap.String("userID", client.UserID),
					)
				}
			}

		case message := <-h.send:
			// a user with no open connection simply misses the frame, the
			// engine never waits for delivery
			clients, ok := h.clients[message.UserID]
			if !ok {
				continue
			}
			for client := range clients {
				select {
				case client.Send <- message.Data:
				default:
					// client not draining, drop it
					close(client.Send)
					delete(clients, client)
					log.Warn("Failed to send message to client, unregistering",
						zap.String("clientID", client.ID),
						zap.String("userID", client.UserID),
					)
				}
			}
		}
	}
}

// RegisterClient registers a new client in the hub
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	default:
		log.Error("Register channel is full, client registration failed",
			zap.String("clientID", client.ID),
			zap.String("userID", client.UserID),
		)
		_ = client.Conn.Close()
	}
}

// UnregisterClient removes a client from the hub
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	default:
		log.Error("Unregister channel is full, client unregistration failed",
			zap.String("clientID", client.ID),
			zap.String("userID", client.UserID),
		)
	}
}

// SendToUser queues a frame for every open connection of the user. Best
// effort: when the hub's queue is full the frame is dropped and logged.
func (h *Hub) SendToUser(userID string, data []byte) {
	select {
	case h.send <- &Message{UserID: userID, Data: data}:
	default:
		log.Error("Send channel is full, notification dropped", zap.String("userID", userID))
	}
}

// ReadPump consumes frames from the connection until it closes. Inbound
// payloads are discarded, the pump only exists to answer pings and to detect
// the disconnect. Must run in its own goroutine per client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("WebSocket read error",
					zap.String("clientID", c.ID),
					zap.String("userID", c.UserID),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection and keeps
// it alive with pings. One goroutine per client, it is the single writer on
// the connection.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// the hub closed the channel
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("Failed to write message to client",
					zap.String("clientID", c.ID),
					zap.String("userID", c.UserID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
