package api

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/ahrdadan/undetected/internal/config"
	"github.com/ahrdadan/undetected/internal/driverhost"
)

const shutdownTimeout = 5 * time.Second

// NewApp builds the fiber application serving driver.
func NewApp(driver DriverView) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               config.AppName,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: os.Stderr}))

	SetupRoutes(app, driver)
	return app
}

var _ driverhost.Surface = (*Server)(nil)

// Server serves the driver handshake over HTTP while a host is running.
type Server struct {
	addr string

	mu  sync.Mutex
	app *fiber.App
	ln  net.Listener
}

// NewServer creates a server that will listen on addr.
func NewServer(addr string) *Server {
	return &Server{addr: addr}
}

// Start binds the listener and serves h in the background.
func (s *Server) Start(h *driverhost.Host) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	app := NewApp(h)
	s.mu.Lock()
	s.app = app
	s.ln = ln
	s.mu.Unlock()
	log.Info().Str("addr", ln.Addr().String()).Msg("Serving driver connection")

	go func() {
		if err := app.Listener(ln); err != nil {
			log.Error().Err(err).Msg("Handshake server stopped")
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	app := s.app
	s.mu.Unlock()
	if app == nil {
		return nil
	}
	return app.ShutdownWithTimeout(shutdownTimeout)
}
