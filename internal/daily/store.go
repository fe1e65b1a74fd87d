package daily

import (
	"context"
	"database/sql"
	"fmt"
)

// Result is one player's finished challenge for a category and date.
type Result struct {
	UserID    string `json:"userId"`
	Category  string `json:"category"`
	Date      string `json:"date"`
	ResultID  string `json:"resultId"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int64  `json:"elapsedMs"`
	Correct   bool   `json:"correct"`
}

// Store records finished challenges in daily_results.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for category on date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, category, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND category=? AND date=?`,
		userID, category, date,
	).Scan(&cnt)
	if err != nil {
		return false, fmt.Errorf("query daily_results: %w", err)
	}
	return cnt > 0, nil
}

// InsertResult stores r. A second result for the same user/category/date is ignored.
// It reports whether a row was written.
func (s *Store) InsertResult(ctx context.Context, r Result) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, category, date, result_id, guesses, elapsed_ms, correct)
		 VALUES(?,?,?,?,?,?,?)`,
		r.UserID, r.Category, r.Date, r.ResultID, r.Guesses, r.ElapsedMs, r.Correct,
	)
	if err != nil {
		return false, fmt.Errorf("insert daily_results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// History returns userID's results, newest first.
func (s *Store) History(ctx context.Context, userID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, category, date, result_id, guesses, elapsed_ms, correct
		 FROM daily_results
		 WHERE user_id=?
		 ORDER BY date DESC, created_at DESC
		 LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query daily_results: %w", err)
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.UserID, &r.Category, &r.Date, &r.ResultID, &r.Guesses, &r.ElapsedMs, &r.Correct); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnonymous moves an anonymous player's results to a signed-in user.
// Rows that would collide with the user's own results are left behind.
func (s *Store) ClaimAnonymous(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE OR IGNORE daily_results SET user_id=? WHERE user_id=?`, userID, anonID)
	return err
}
