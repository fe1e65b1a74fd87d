// internal/store/memory.go
//
// In-memory implementation of Store.
// Used for development and tests, or when durability is not required.
//
// Characteristics:
//   - Stores session copies keyed by ResultID, plus an owner|category|date index.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/dailyguess/internal/game"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex             // guards sessions and owners
	sessions map[string]*game.Session // keyed by Session.ResultID
	owners   map[string]string        // ownerKey → ResultID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		sessions: make(map[string]*game.Session),
		owners:   make(map[string]string),
	}
}

// ownerKey is the "uid|category|date" key a player holds one session under.
func ownerKey(ownerID, categoryID, date string) string {
	return ownerID + "|" + categoryID + "|" + date
}

func (m *memory) Create(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ResultID]; ok {
		return ErrConflict
	}
	key := ownerKey(s.OwnerID, s.Category.ID, s.Date)
	if s.OwnerID != "" {
		if _, ok := m.owners[key]; ok {
			return ErrConflict
		}
		m.owners[key] = s.ResultID
	}
	m.sessions[s.ResultID] = s.Clone()
	return nil
}

func (m *memory) FindByOwner(ctx context.Context, ownerID, categoryID, date string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.owners[ownerKey(ownerID, categoryID, date)]; ok {
		if s, ok := m.sessions[id]; ok {
			return s.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *memory) Get(ctx context.Context, resultID string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[resultID]; ok {
		return s.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[s.ResultID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != s.Version {
		return ErrConflict
	}
	s.Version++
	m.sessions[s.ResultID] = s.Clone()
	return nil
}

func (m *memory) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.Status == game.StatusInProgress && s.StartedAt.Before(cutoff) {
			delete(m.sessions, id)
			delete(m.owners, ownerKey(s.OwnerID, s.Category.ID, s.Date))
			n++
		}
	}
	return n, nil
}
