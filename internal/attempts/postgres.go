package attempts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/checkout/internal/checkout"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkout_attempts (
    id             UUID PRIMARY KEY,
    session_id     TEXT NOT NULL,
    status         TEXT NOT NULL,
    backend_status INTEGER NOT NULL DEFAULT 0,
    message        TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS checkout_attempts_session_idx
    ON checkout_attempts (session_id, created_at DESC);`

// PostgresRepository stores attempts in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed attempt repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the attempts table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure checkout_attempts: %w", err)
	}
	return nil
}

// Record inserts a new attempt.
func (r *PostgresRepository) Record(ctx context.Context, a Attempt) (Attempt, error) {
	a = prepare(a)
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return Attempt{}, fmt.Errorf("attempt id: %w", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO checkout_attempts (id, session_id, status, backend_status, message, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, id, a.SessionID, string(a.Status), a.BackendStatus, a.Message, a.CreatedAt.UTC())
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

// Get fetches an attempt by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Attempt, error) {
	attemptID, err := uuid.Parse(id)
	if err != nil {
		return Attempt{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, session_id, status, backend_status, message, created_at
        FROM checkout_attempts WHERE id = $1`, attemptID)
	a, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Attempt{}, ErrNotFound
	}
	return a, err
}

// ListBySession returns the newest attempts of a session first.
func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]Attempt, error) {
	rows, err := r.db.Query(ctx, `SELECT id, session_id, status, backend_status, message, created_at
        FROM checkout_attempts WHERE session_id = $1 ORDER BY created_at DESC LIMIT $2`, sessionID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAttempt(row pgx.Row) (Attempt, error) {
	var (
		id        uuid.UUID
		status    string
		createdAt time.Time
		a         Attempt
	)
	if err := row.Scan(&id, &a.SessionID, &status, &a.BackendStatus, &a.Message, &createdAt); err != nil {
		return Attempt{}, err
	}
	a.ID = id.String()
	a.Status = checkout.Status(status)
	a.CreatedAt = createdAt.UTC()
	return a, nil
}
