package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("STRIPE_PUBLISHABLE_KEY", "pk_test_abc")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_abc")
	t.Setenv("CHECKOUT_SUBMIT_URL", "https://shop.example.com/api/customers/cards/")
	t.Setenv("BACKEND_JWT_SECRET", "s3cret")
	t.Setenv("BACKEND_USER_ID", "1")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
	if cfg.BackendTimeout != defaultBackendTimeout || cfg.SessionIdleTTL != defaultSessionIdleTTL {
		t.Fatalf("unexpected durations %+v", cfg)
	}
	if cfg.SubmitRateLimit != defaultSubmitLimit {
		t.Fatalf("unexpected submit limit %d", cfg.SubmitRateLimit)
	}
}

func TestLoadDurations(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("BACKEND_TIMEOUT", "750ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ShutdownPeriod != 3*time.Second || cfg.BackendTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected durations shutdown=%s backend=%s", cfg.ShutdownPeriod, cfg.BackendTimeout)
	}

	t.Setenv("BACKEND_TIMEOUT", "soon")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "BACKEND_TIMEOUT") {
		t.Fatalf("expected BACKEND_TIMEOUT error, got %v", err)
	}
}

func TestLoadRejectsSecretKeyAsPublishable(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STRIPE_PUBLISHABLE_KEY", "sk_test_abc")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "StripePublishableKey") {
		t.Fatalf("expected publishable key error, got %v", err)
	}
}

func TestLoadRequiresBackendCredentials(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BACKEND_JWT_SECRET", "")
	t.Setenv("BACKEND_USER_ID", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing backend credentials to fail")
	}

	t.Setenv("BACKEND_TOKEN", "issued-token")
	if _, err := Load(); err != nil {
		t.Fatalf("static token should be enough: %v", err)
	}
}

func TestLoadRequiresStoresOutsideDev(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/checkout")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	if _, err := Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
}
