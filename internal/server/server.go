package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/checkout/internal/config"
	"github.com/congo-pay/checkout/internal/routes"
	"github.com/congo-pay/checkout/internal/session"
)

const sessionSweepInterval = time.Minute

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app      *fiber.App
	cfg      config.Config
	db       *pgxpool.Pool
	cache    *redis.Client
	sessions *session.Registry
}

// New instantiates the HTTP server, builds the checkout session registry and
// delegates route wiring to routes.Setup.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		Immutable:    true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 15*time.Second,
	})

	sessions, err := routes.NewSessions(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := routes.Setup(app, routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger, Sessions: sessions}); err != nil {
		return nil, err
	}

	if err := sessions.StartSweeper(sessionSweepInterval); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg, db: db, cache: cache, sessions: sessions}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server and the session sweeper.
func (s *Server) Shutdown(ctx context.Context) error {
	s.sessions.Stop()
	return s.app.ShutdownWithContext(ctx)
}
