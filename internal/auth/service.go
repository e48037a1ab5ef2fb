// Package auth issues the bearer tokens the checkout forwards to the card
// backend.
package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrNoSigningSecret is returned when a Minter is built without a secret.
var ErrNoSigningSecret = errors.New("backend signing secret is required")

const defaultTokenTTL = 5 * time.Minute

// TokenSource yields a bearer token for one outbound request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Minter signs short-lived HS256 access tokens in the shape the backend's
// JWT authentication expects: token_type, exp, iat, jti and user_id.
type Minter struct {
	secret []byte
	ttl    time.Duration
	userID any
	now    func() time.Time
}

// NewMinter builds a Minter. Numeric user ids are encoded as JSON numbers.
func NewMinter(secret string, ttl time.Duration, userID string) (*Minter, error) {
	if secret == "" {
		return nil, ErrNoSigningSecret
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	userID = strings.TrimSpace(userID)
	var uid any = userID
	if n, err := strconv.ParseInt(userID, 10, 64); err == nil {
		uid = n
	}
	return &Minter{secret: []byte(secret), ttl: ttl, userID: uid, now: time.Now}, nil
}

// Token signs a fresh access token. Every call gets a new jti.
func (m *Minter) Token(_ context.Context) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"token_type": "access",
		"iat":        now.Unix(),
		"exp":        now.Add(m.ttl).Unix(),
		"jti":        strings.ReplaceAll(uuid.NewString(), "-", ""),
		"user_id":    m.userID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Static is a TokenSource for deployments handed a token out of band.
type Static string

func (s Static) Token(_ context.Context) (string, error) {
	if s == "" {
		return "", errors.New("static backend token is empty")
	}
	return string(s), nil
}
