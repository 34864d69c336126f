package websocket

import (
	"context"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/lunani254/present/internal/shared/websocket"
	"go.uber.org/zap"
)

// RegisterRoutes mounts the notification endpoint. A client connects with its
// own user ID and from then on receives the bid events addressed to it, it is
// a receive only channel.
func RegisterRoutes(ctx context.Context, app *fiber.App, hub *websocket.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/notifications/:userID", fiberws.New(func(conn *fiberws.Conn) {
		userID := conn.Params("userID")
		client := &websocket.Client{
			Hub:    hub,
			Conn:   conn,
			Send:   make(chan []byte, 16),
			UserID: userID,
			ID:     uuid.NewString(),
		}
		hub.RegisterClient(client)
		log.Info("Notification client connected",
			zap.String("clientID", client.ID),
			zap.String("userID", userID),
		)

		go client.WritePump(ctx)
		// the fiber ws handler owns the connection goroutine, run the read
		// side here so the handler returns only when the peer goes away
		client.ReadPump(ctx)
	}))
}
