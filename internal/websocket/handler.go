package websocket

import (
	"tigaraksa-chat-be/internal/pkg/logger"
	"tigaraksa-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatHandler upgrades GET /api/chat/ws. Each text frame is one chat request.
func ChatHandler(hub *Hub, chat service.IChatService, log logger.ILogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return websocket.New(func(conn *websocket.Conn) {
			log.Info("ChatSocket", "Session started", map[string]interface{}{"remote": conn.RemoteAddr().String()})
			ServeChat(hub, conn, chat, log)
			log.Info("ChatSocket", "Session ended", map[string]interface{}{"remote": conn.RemoteAddr().String()})
		})(c)
	}
}
