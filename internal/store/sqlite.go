// internal/store/sqlite.go
//
// SQLite implementation of Store, backed by the sessions table.
// Guesses are stored as a JSON array; the category is stored by id and
// re-resolved through the registry on load.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robalobadob/dailyguess/internal/category"
	"github.com/robalobadob/dailyguess/internal/game"
)

// Resolver maps a stored category id back to its config.
type Resolver interface {
	Resolve(id string) (category.Config, error)
}

type sqliteStore struct {
	db         *sql.DB
	categories Resolver
}

// NewSQLiteStore returns a Store over db. The sessions table must exist (see assets/sql).
func NewSQLiteStore(db *sql.DB, categories Resolver) Store {
	return &sqliteStore{db: db, categories: categories}
}

func (s *sqliteStore) Create(ctx context.Context, sess *game.Session) error {
	guesses, err := json.Marshal(sess.Guesses)
	if err != nil {
		return fmt.Errorf("encode guesses: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions
		     (result_id, owner_id, category, date, actual, guesses, status, started_at, completed_at, version)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		sess.ResultID, sess.OwnerID, sess.Category.ID, sess.Date, sess.ActualValue.String(),
		string(guesses), string(sess.Status), formatTime(sess.StartedAt), formatTimePtr(sess.CompletedAt), sess.Version,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

const sessionColumns = `result_id, owner_id, category, date, actual, guesses, status, started_at,
		        COALESCE(completed_at, ''), version`

func (s *sqliteStore) Get(ctx context.Context, resultID string) (*game.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE result_id=?`, resultID)
	return s.scanSession(row)
}

func (s *sqliteStore) FindByOwner(ctx context.Context, ownerID, categoryID, date string) (*game.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE owner_id=? AND category=? AND date=?`,
		ownerID, categoryID, date)
	return s.scanSession(row)
}

// scanSession decodes one sessions row selected with sessionColumns.
func (s *sqliteStore) scanSession(row *sql.Row) (*game.Session, error) {
	var (
		sess                         game.Session
		catID, actual, guesses       string
		status, started, completedAt string
	)
	err := row.Scan(&sess.ResultID, &sess.OwnerID, &catID, &sess.Date, &actual, &guesses,
		&status, &started, &completedAt, &sess.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	resultID := sess.ResultID

	if sess.Category, err = s.categories.Resolve(catID); err != nil {
		return nil, fmt.Errorf("session %s: %w", resultID, err)
	}
	if sess.ActualValue, err = decimal.NewFromString(actual); err != nil {
		return nil, fmt.Errorf("session %s: actual: %w", resultID, err)
	}
	if err := json.Unmarshal([]byte(guesses), &sess.Guesses); err != nil {
		return nil, fmt.Errorf("session %s: guesses: %w", resultID, err)
	}
	if sess.Guesses == nil {
		sess.Guesses = []game.Guess{}
	}
	sess.Status = game.Status(status)
	if sess.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("session %s: started_at: %w", resultID, err)
	}
	if completedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, completedAt)
		if err != nil {
			return nil, fmt.Errorf("session %s: completed_at: %w", resultID, err)
		}
		sess.CompletedAt = &t
	}
	return &sess, nil
}

func (s *sqliteStore) Save(ctx context.Context, sess *game.Session) error {
	guesses, err := json.Marshal(sess.Guesses)
	if err != nil {
		return fmt.Errorf("encode guesses: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions
		 SET guesses=?, status=?, completed_at=?, version=version+1
		 WHERE result_id=? AND version=?`,
		string(guesses), string(sess.Status), formatTimePtr(sess.CompletedAt), sess.ResultID, sess.Version,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE result_id=?`, sess.ResultID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return ErrConflict
	}
	sess.Version++
	return nil
}

func (s *sqliteStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE status=? AND started_at < ?`,
		string(game.StatusInProgress), formatTime(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// formatTime uses a fixed-width UTC layout so stored timestamps compare lexically.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
