// handlers/ws.go - Realtime notification stream
package handlers

import (
	"gametrack/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade gates the notification socket behind a proper
// upgrade request. Auth middleware runs before it, so the connection
// carries the user's locals.
func WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// NotificationSocket keeps the connection registered with the push hub
// until the client goes away. The socket is push-only; inbound frames
// are drained and dropped.
var NotificationSocket = websocket.New(func(conn *websocket.Conn) {
	var userID uint
	switch v := conn.Locals("userId").(type) {
	case float64:
		userID = uint(v)
	case uint:
		userID = v
	default:
		conn.Close()
		return
	}

	services.RegisterClient(userID, conn)
	defer func() {
		services.UnregisterClient(userID, conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
})
