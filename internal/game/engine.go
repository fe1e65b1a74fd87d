// internal/game/engine.go
//
// Session state machine for the daily challenge.
// Responsibilities:
//   - Create sessions for a category and a hidden actual value.
//   - Validate, decode and score guesses.
//   - Track state transitions: in_progress → won/exhausted (both terminal).
//   - Report tries used and time taken once a terminal state is reached.
//
// Notes:
//   - The engine keeps no state between calls; callers load a Session, submit,
//     and persist the mutated Session. Concurrent submissions for the same
//     session must be serialized by the store (see store.ErrConflict).
//   - Any precondition failure leaves the session untouched.

package game

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/robalobadob/dailyguess/internal/category"
)

// Engine drives submissions. The clock is injectable for tests.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an Engine using the wall clock.
func NewEngine() *Engine { return &Engine{now: time.Now} }

// NewEngineWithClock returns an Engine using now as its clock.
func NewEngineWithClock(now func() time.Time) *Engine { return &Engine{now: now} }

// NewSession starts an in-progress session.
func (e *Engine) NewSession(resultID string, cfg category.Config, date string, actual decimal.Decimal) *Session {
	return &Session{
		ResultID:    resultID,
		Category:    cfg,
		Date:        date,
		ActualValue: actual,
		Guesses:     []Guess{},
		StartedAt:   e.now().UTC(),
		Status:      StatusInProgress,
	}
}

// SubmitGuess decodes, scores and records rawInput on s.
//
// Errors:
//   - *SessionClosedError if s is already won or exhausted.
//   - *InvalidFormatError if rawInput is empty, not digits, or wider than the category allows.
//
// State transitions:
//   - Exact guess → won.
//   - Otherwise, the MaxGuesses-th guess → exhausted.
func (e *Engine) SubmitGuess(s *Session, rawInput string) (ScoreResult, Outcome, error) {
	if s.Status != StatusInProgress || len(s.Guesses) >= MaxGuesses {
		return ScoreResult{}, s.Outcome(), &SessionClosedError{ResultID: s.ResultID, Status: s.Status}
	}
	padded, err := PadInput(rawInput, s.Category.Width)
	if err != nil {
		return ScoreResult{}, s.Outcome(), err
	}
	value, err := Decode(padded, s.Category.DecimalPlaces)
	if err != nil {
		return ScoreResult{}, s.Outcome(), err
	}

	res := Score(value, s.ActualValue, s.Category)
	now := e.now().UTC()
	s.Guesses = append(s.Guesses, Guess{
		RawInput:    padded,
		Value:       value,
		Sequence:    len(s.Guesses) + 1,
		Result:      res,
		SubmittedAt: now,
	})

	if res.Direction == DirectionExact {
		s.finish(StatusWon, now)
	} else if len(s.Guesses) >= MaxGuesses {
		s.finish(StatusExhausted, now)
	}
	return res, s.Outcome(), nil
}

func (s *Session) finish(st Status, at time.Time) {
	s.Status = st
	s.CompletedAt = &at
}

// Outcome summarizes the session as it currently stands.
func (s *Session) Outcome() Outcome {
	o := Outcome{
		IsComplete: s.Status.Terminal(),
		Correct:    s.Status == StatusWon,
		TriesUsed:  len(s.Guesses),
	}
	if o.IsComplete && s.CompletedAt != nil {
		secs := s.CompletedAt.Sub(s.StartedAt).Seconds()
		o.TimeTakenSeconds = &secs
	}
	return o
}

// Remaining returns how many guesses are left.
func (s *Session) Remaining() int {
	if s.Status.Terminal() {
		return 0
	}
	return MaxGuesses - len(s.Guesses)
}

// Clone returns a deep copy so stores never share guess slices with callers.
func (s *Session) Clone() *Session {
	c := *s
	c.Guesses = append([]Guess(nil), s.Guesses...)
	if c.Guesses == nil {
		c.Guesses = []Guess{}
	}
	c.Category.Tiers = append(s.Category.Tiers[:0:0], s.Category.Tiers...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
