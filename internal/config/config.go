package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	defaultAppName        = "CongoPay Checkout"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultBackendTimeout = 15 * time.Second
	defaultTokenTTL       = 5 * time.Minute
	defaultSessionIdleTTL = 30 * time.Minute
	defaultSubmitLimit    = 10
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string `validate:"required"`
	AppEnv         string `validate:"required"`
	Port           string `validate:"required"`
	LogLevel       string `validate:"oneof=debug info warn error"`
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration `validate:"gt=0"`

	StripePublishableKey string `validate:"required,startswith=pk_"`
	StripeSecretKey      string `validate:"required,startswith=sk_|startswith=rk_"`

	SubmitURL       string        `validate:"required,url"`
	BackendSecret   string        `validate:"required_without=BackendToken"`
	BackendToken    string        `validate:"required_without=BackendSecret"`
	BackendUserID   string        `validate:"required_with=BackendSecret"`
	BackendTokenTTL time.Duration `validate:"gt=0"`
	BackendTimeout  time.Duration `validate:"gt=0"`

	SubmitRateLimit int           `validate:"gte=0"`
	SessionIdleTTL  time.Duration `validate:"gt=0"`
}

// Load reads configuration values from the environment and populates a Config
// instance. A .env file in the working directory is read first when present;
// real environment variables win over it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		AppName:              getEnv("APP_NAME", defaultAppName),
		AppEnv:               getEnv("APP_ENV", defaultAppEnv),
		Port:                 getEnv("PORT", defaultPort),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		StripePublishableKey: strings.TrimSpace(os.Getenv("STRIPE_PUBLISHABLE_KEY")),
		StripeSecretKey:      strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		SubmitURL:            os.Getenv("CHECKOUT_SUBMIT_URL"),
		BackendSecret:        os.Getenv("BACKEND_JWT_SECRET"),
		BackendToken:         os.Getenv("BACKEND_TOKEN"),
		BackendUserID:        os.Getenv("BACKEND_USER_ID"),
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.BackendTokenTTL, err = durationEnv("BACKEND_TOKEN_TTL", defaultTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.BackendTimeout, err = durationEnv("BACKEND_TIMEOUT", defaultBackendTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SessionIdleTTL, err = durationEnv("SESSION_IDLE_TTL", defaultSessionIdleTTL); err != nil {
		return Config{}, err
	}
	cfg.SubmitRateLimit = defaultSubmitLimit
	if v := os.Getenv("SUBMIT_RATE_LIMIT_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SUBMIT_RATE_LIMIT_PER_MIN: %w", err)
		}
		cfg.SubmitRateLimit = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and the stores required outside development.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !c.IsDev() {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", c.AppEnv)
		}
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", c.AppEnv)
		}
	}
	return nil
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationEnv reads KEY_SECONDS as whole seconds, falling back to KEY as a
// Go duration string.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(key + "_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s_SECONDS: %w", key, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}
