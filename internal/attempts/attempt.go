// Package attempts keeps a record of every checkout submission outcome. The
// payment source id is never stored.
package attempts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/checkout/internal/checkout"
)

// ErrNotFound is returned when no attempt has the requested id.
var ErrNotFound = errors.New("attempt not found")

const defaultListLimit = 50

// Attempt is the stored outcome of one submit pass.
type Attempt struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"session_id"`
	Status        checkout.Status `json:"status"`
	BackendStatus int             `json:"backend_status,omitempty"`
	Message       string          `json:"message,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// FromOutcome converts a controller outcome into an Attempt for sessionID.
func FromOutcome(sessionID string, o checkout.Outcome) Attempt {
	a := Attempt{
		SessionID: sessionID,
		Status:    o.Status,
		Message:   o.Display,
	}
	if o.Reply != nil {
		a.BackendStatus = o.Reply.StatusCode
	}
	return a
}

// Repository persists attempts.
type Repository interface {
	Record(ctx context.Context, a Attempt) (Attempt, error)
	Get(ctx context.Context, id string) (Attempt, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Attempt, error)
}

func prepare(a Attempt) Attempt {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return a
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > defaultListLimit {
		return defaultListLimit
	}
	return limit
}
