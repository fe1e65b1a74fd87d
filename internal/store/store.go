// internal/store/store.go
//
// Persistence interface for challenge sessions.
//
// Sessions are value objects: implementations copy on the way in and out, so a
// caller mutating a loaded session never touches stored state until Save.
// Save is optimistic: the session's Version must equal the stored version, and
// a successful Save increments it. Two concurrent guesses for one session
// therefore cannot both be recorded; the loser gets ErrConflict.
//
// A player owns at most one session per category and date. Create rejects a
// second one with ErrConflict, and FindByOwner returns the existing one.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/dailyguess/internal/game"
)

var (
	// ErrNotFound is returned when no session exists for a result id.
	ErrNotFound = errors.New("session not found")
	// ErrConflict is returned when a session was modified since it was loaded,
	// or when Create is called with an id, or an owner/category/date, that already exists.
	ErrConflict = errors.New("session modified concurrently")
)

// Store defines the persistence interface for sessions.
type Store interface {
	// Create persists a new session. The stored version starts at s.Version.
	Create(ctx context.Context, s *game.Session) error

	// Get retrieves a copy of the session for resultID.
	Get(ctx context.Context, resultID string) (*game.Session, error)

	// FindByOwner retrieves a copy of ownerID's session for categoryID on date,
	// whatever its status.
	FindByOwner(ctx context.Context, ownerID, categoryID, date string) (*game.Session, error)

	// Save writes s if s.Version matches the stored version, then increments s.Version.
	Save(ctx context.Context, s *game.Session) error

	// Prune deletes in-progress sessions started before cutoff and reports how many.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}
