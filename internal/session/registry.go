// Package session keeps one checkout controller per open checkout page.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/congo-pay/checkout/internal/checkout"
)

// ErrNotFound is returned for unknown or evicted sessions.
var ErrNotFound = errors.New("checkout session not found")

const defaultIdleTTL = 30 * time.Minute

// Settings are the page values the host renders into every checkout page.
type Settings struct {
	PublicKey string
	SubmitURL string
	IdleTTL   time.Duration
}

// Deps are shared by every session's controller.
type Deps struct {
	Provider checkout.ProviderFactory
	Sender   checkout.Sender
	Logger   *slog.Logger
}

// Session is one open checkout page.
type Session struct {
	ID         string
	Page       *checkout.Page
	Controller *checkout.Controller
	CreatedAt  time.Time

	lastSeen atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen reports when the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load()).UTC()
}

// Fill types values into the page's inputs. Names the page does not have are
// skipped and returned.
func (s *Session) Fill(values map[string]string) []string {
	var skipped []string
	for name, value := range values {
		if !s.Page.SetValue(name, value) {
			skipped = append(skipped, name)
		}
	}
	return skipped
}

// CardErrors returns the text currently shown in the error region.
func (s *Session) CardErrors() string {
	text, _ := s.Page.Text(checkout.ElementCardErrors)
	return text
}

// Registry owns open sessions and evicts idle ones.
type Registry struct {
	settings Settings
	deps     Deps
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	scheduler *gocron.Scheduler
}

// NewRegistry validates settings and returns an empty registry.
func NewRegistry(settings Settings, deps Deps) (*Registry, error) {
	if deps.Provider == nil || deps.Sender == nil {
		return nil, errors.New("session: provider and sender are required")
	}
	if settings.IdleTTL <= 0 {
		settings.IdleTTL = defaultIdleTTL
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		settings: settings,
		deps:     deps,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}, nil
}

// Open renders a fresh checkout page and initializes its controller.
func (r *Registry) Open(_ context.Context, csrfToken string) (*Session, error) {
	id := uuid.NewString()
	page := newPage(r.settings, csrfToken)

	ctrl, err := checkout.Init(page, r.deps.Provider, r.deps.Sender,
		checkout.WithLogger(r.deps.Logger.With(slog.String("session_id", id))))
	if err != nil {
		return nil, fmt.Errorf("init checkout: %w", err)
	}

	now := r.now().UTC()
	s := &Session{ID: id, Page: page, Controller: ctrl, CreatedAt: now}
	s.touch(now)

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return s, nil
}

func newPage(settings Settings, csrfToken string) *checkout.Page {
	page := checkout.NewPage().
		WithText(checkout.ElementPublicKey, settings.PublicKey).
		WithText(checkout.ElementSubmitURL, settings.SubmitURL).
		WithText(checkout.ElementCard, "").
		WithText(checkout.ElementCardErrors, "").
		WithForm(checkout.FormID).
		WithInput(checkout.InputCSRFToken, csrfToken)
	for _, name := range checkout.BillingInputs {
		page.WithInput(name, "")
	}
	return page
}

// Get returns a live session and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	// touch under the lock so a concurrent Sweep sees the new lastSeen
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Close drops a session, as when the page unloads.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Len reports the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than the configured TTL.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.settings.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartSweeper runs Sweep every interval until Stop.
func (r *Registry) StartSweeper(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("session: invalid sweep interval %s", interval)
	}
	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(interval).Do(func() {
		if n := r.Sweep(r.now()); n > 0 {
			r.deps.Logger.Info("evicted idle checkout sessions", slog.Int("count", n), slog.Int("open", r.Len()))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}
	s.StartAsync()

	r.mu.Lock()
	r.scheduler = s
	r.mu.Unlock()
	return nil
}

// Stop halts the sweeper.
func (r *Registry) Stop() {
	r.mu.Lock()
	s := r.scheduler
	r.scheduler = nil
	r.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}
