// Package store keeps the outcome of finished matches. Live games are never
// persisted; only their results are.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/benbeisheim/chess-server/internal/model"
)

// ResultStore records finished matches.
type ResultStore interface {
	// Record persists r. Recording the same game twice is an error.
	Record(ctx context.Context, r model.Result) error

	// Recent returns up to limit results, newest first.
	Recent(ctx context.Context, limit int) ([]model.Result, error)

	Close() error
}

type memory struct {
	mu      sync.RWMutex
	results map[string]model.Result
}

// NewMemory returns a ResultStore that lives for the process lifetime.
func NewMemory() ResultStore {
	return &memory{results: make(map[string]model.Result)}
}

func (m *memory) Record(ctx context.Context, r model.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.results[r.GameID]; ok {
		return ErrDuplicate
	}
	m.results[r.GameID] = r
	return nil
}

func (m *memory) Recent(ctx context.Context, limit int) ([]model.Result, error) {
	m.mu.RLock()
	out := make([]model.Result, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, r)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memory) Close() error { return nil }
