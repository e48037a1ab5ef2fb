package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/checkout/internal/attempts"
	"github.com/congo-pay/checkout/internal/auth"
	"github.com/congo-pay/checkout/internal/backend"
	"github.com/congo-pay/checkout/internal/config"
	"github.com/congo-pay/checkout/internal/middleware"
	"github.com/congo-pay/checkout/internal/session"
	"github.com/congo-pay/checkout/internal/stripe"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Sessions *session.Registry
	// Attempts overrides the repository picked from DB.
	Attempts attempts.Repository
}

// NewSessions builds the session registry backed by Stripe and the card
// backend described by cfg.
func NewSessions(cfg config.Config, logger *slog.Logger) (*session.Registry, error) {
	var tokens auth.TokenSource
	if cfg.BackendSecret != "" {
		minter, err := auth.NewMinter(cfg.BackendSecret, cfg.BackendTokenTTL, cfg.BackendUserID)
		if err != nil {
			return nil, err
		}
		tokens = minter
	} else {
		tokens = auth.Static(cfg.BackendToken)
	}

	sender, err := backend.New(tokens,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithUserAgent(cfg.AppName))
	if err != nil {
		return nil, fmt.Errorf("build backend client: %w", err)
	}

	return session.NewRegistry(
		session.Settings{PublicKey: cfg.StripePublishableKey, SubmitURL: cfg.SubmitURL, IdleTTL: cfg.SessionIdleTTL},
		session.Deps{Provider: stripe.Factory(stripe.NewAPI(cfg.StripeSecretKey)), Sender: sender, Logger: logger},
	)
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Sessions == nil {
		return fmt.Errorf("session registry is required")
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID(d.Logger))
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	repo := d.Attempts
	if repo == nil {
		if d.DB != nil {
			pg := attempts.NewPostgresRepository(d.DB)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := pg.EnsureSchema(ctx); err != nil {
				return err
			}
			repo = pg
		} else {
			repo = attempts.NewMemoryRepository()
		}
	}

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.GetRequestID(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	handler := session.NewHandler(d.Sessions, repo, d.Logger)
	RegisterCheckoutRoutes(api, handler, middleware.SubmitRateLimit(d.Cache, d.Cfg.SubmitRateLimit))

	return nil
}
