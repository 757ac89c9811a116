package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SetupRoutes configures the driver handshake routes
func SetupRoutes(app *fiber.App, driver DriverView) {
	handler := NewHandler(driver)

	// Health check (simple path)
	app.Get("/health", handler.HealthCheck)

	group := app.Group("/driver")
	group.Use(SecurityHeadersMiddleware())

	group.Get("/connection", handler.DriverConnection)
	group.Get("/status", handler.DriverStatus)

	// WebSocket endpoint for status events
	group.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	group.Get("/ws", websocket.New(handler.HandleWebSocket))
}
