package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/custodia-labs/docpilot/internal/logger"
)

// DefaultBodyLimit bounds request bodies, uploads included.
const DefaultBodyLimit = 50 * 1024 * 1024

// Config tunes the API server.
type Config struct {
	// AllowOrigins is the CORS allow list. Empty allows any origin.
	AllowOrigins string

	// BodyLimit caps request bodies in bytes. Zero uses DefaultBodyLimit.
	BodyLimit int
}

// Server is the REST API.
type Server struct {
	app   *fiber.App
	ports *Ports
}

// NewServer creates the API server and registers its routes.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingCopilotService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = DefaultBodyLimit
	}
	if cfg.AllowOrigins == "" {
		cfg.AllowOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:               "docpilot",
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(requestLogger)

	s := &Server{app: app, ports: ports}
	s.registerRoutes()
	return s, nil
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("REST API listening on %s", addr)
		errc <- s.app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return <-errc
	}
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api")
	api.Get("/health", s.health)

	docs := &documentHandler{copilot: s.ports.Copilot}
	docs.RegisterRoutes(api)

	chat := &chatHandler{copilot: s.ports.Copilot}
	chat.RegisterRoutes(api)

	if s.ports.Sessions != nil {
		sessions := &sessionHandler{sessions: s.ports.Sessions}
		sessions.RegisterRoutes(api)
	}
}

func (s *Server) health(c *fiber.Ctx) error {
	docs, err := s.ports.Copilot.ListDocuments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(successResponse("ok", HealthDTO{Status: "ok", Documents: len(docs)}))
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	logger.Debug("%s %s %d %s", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
	return err
}
