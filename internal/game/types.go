// internal/game/types.go
//
// Core type definitions for the guess evaluation engine.
// Defines:
//   - Direction: which way the next guess should move (up/down/exact).
//   - ScoreResult: the evaluation of one guess against the hidden value.
//   - Guess: one scored submission in a session's log.
//   - Status + Session: the per-player attempt stream for one day's challenge.
//   - Outcome: the summary returned to callers after every submission.

package game

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/robalobadob/dailyguess/internal/category"
)

// MaxGuesses is the number of attempts a session allows.
const MaxGuesses = 6

// Direction tells the player where the actual value lies relative to the guess.
//   - "up":    actual is higher, guess higher next time.
//   - "down":  actual is lower.
//   - "exact": guess equals the actual value.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionExact Direction = "exact"
)

// ScoreResult is the evaluation of a single guess.
type ScoreResult struct {
	Direction  Direction       `json:"direction"`
	Magnitude  int             `json:"magnitude"`  // arrow count, 0 only for exact
	Difference decimal.Decimal `json:"difference"` // actual - guess (signed)
	IsClose    bool            `json:"isClose"`    // |difference| < closeness threshold
}

// AbsDifference returns the unsigned distance between guess and actual.
func (r ScoreResult) AbsDifference() decimal.Decimal { return r.Difference.Abs() }

// Guess is one submission, immutable once scored.
type Guess struct {
	RawInput    string          `json:"raw"`   // left-padded digits
	Value       decimal.Decimal `json:"value"` // decoded value
	Sequence    int             `json:"seq"`   // 1-based
	Result      ScoreResult     `json:"result"`
	SubmittedAt time.Time       `json:"submittedAt"`
}

// Status is the lifecycle state of a session. It only moves forward.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusExhausted  Status = "exhausted"
)

// Terminal reports whether no further guesses are accepted.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusExhausted }

// Session holds one player's attempts against one day's challenge in one category.
// It is reconstructed by the caller for every submission and persisted afterwards.
type Session struct {
	ResultID    string          // supplied by the caller
	OwnerID     string          // user or anonymous id, empty if unknown
	Category    category.Config // resolved category parameters
	Date        string          // challenge date key (YYYY-MM-DD)
	ActualValue decimal.Decimal // hidden target, never sent to clients before completion
	Guesses     []Guess         // append-only, at most MaxGuesses
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      Status
	Version     int // optimistic concurrency token, owned by the store
}

// Outcome summarizes a session after a submission.
type Outcome struct {
	IsComplete       bool     `json:"isComplete"`
	Correct          bool     `json:"correct"`
	TriesUsed        int      `json:"tries"`
	TimeTakenSeconds *float64 `json:"timeTaken"` // nil until a terminal state is reached
}
