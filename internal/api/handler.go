package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"

	"github.com/ahrdadan/undetected/internal/browser"
	"github.com/ahrdadan/undetected/internal/driverhost"
)

// DriverView is the read-only view of a driver host served over HTTP.
type DriverView interface {
	Connection() (*browser.ConnectionDescriptor, bool)
	Status() driverhost.Status
	Subscribe() <-chan driverhost.Event
	Unsubscribe(ch <-chan driverhost.Event)
}

// Handler handles API requests
type Handler struct {
	driver DriverView
}

// NewHandler creates a new handler
func NewHandler(driver DriverView) *Handler {
	return &Handler{
		driver: driver,
	}
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorHandler is the custom error handler for Fiber
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(Response{
		Success: false,
		Error:   err.Error(),
	})
}

// HealthCheck returns health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(Response{
		Success: true,
		Data: map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// DriverConnection returns the connection descriptor of the running session
func (h *Handler) DriverConnection(c *fiber.Ctx) error {
	desc, ok := h.driver.Connection()
	if !ok {
		return fiber.NewError(fiber.StatusServiceUnavailable, "driver session is not running")
	}

	return c.JSON(Response{
		Success: true,
		Data:    desc,
	})
}

// DriverStatus returns the host lifecycle state
func (h *Handler) DriverStatus(c *fiber.Ctx) error {
	return c.JSON(Response{
		Success: true,
		Data:    h.driver.Status(),
	})
}

// HandleWebSocket streams the descriptor followed by status events until the
// session is released.
func (h *Handler) HandleWebSocket(c *websocket.Conn) {
	desc, ok := h.driver.Connection()
	if !ok {
		_ = c.WriteJSON(Response{
			Success: false,
			Error:   "driver session is not running",
		})
		c.Close()
		return
	}

	// Subscribe first so no event between the descriptor and the loop is lost.
	events := h.driver.Subscribe()
	defer h.driver.Unsubscribe(events)

	if err := c.WriteJSON(Response{Success: true, Data: desc}); err != nil {
		return
	}

	for event := range events {
		if err := c.WriteJSON(Response{Success: true, Data: event}); err != nil {
			log.Debug().Err(err).Msg("WebSocket client went away")
			return
		}

		if event.State == driverhost.StateStopping || event.State == driverhost.StateReleased {
			time.Sleep(100 * time.Millisecond)
			return
		}
	}
}
