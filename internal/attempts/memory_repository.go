package attempts

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	attempts map[string]Attempt
	seq      map[string]uint64
	next     uint64
}

// NewMemoryRepository builds an in-memory attempt store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{attempts: make(map[string]Attempt), seq: make(map[string]uint64)}
}

func (r *memoryRepository) Record(_ context.Context, a Attempt) (Attempt, error) {
	a = prepare(a)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attempts[a.ID]; !ok {
		r.next++
		r.seq[a.ID] = r.next
	}
	r.attempts[a.ID] = a
	return a, nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.attempts[id]
	if !ok {
		return Attempt{}, ErrNotFound
	}
	return a, nil
}

func (r *memoryRepository) ListBySession(_ context.Context, sessionID string, limit int) ([]Attempt, error) {
	r.mu.RLock()
	var out []Attempt
	for _, a := range r.attempts {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	// ties on CreatedAt fall back to insertion order
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	r.mu.RUnlock()

	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
