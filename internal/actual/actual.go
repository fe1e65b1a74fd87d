// internal/actual/actual.go
//
// Source of each day's hidden value per category.
//
// The engine never computes or caches the actual value; the API layer asks a
// Source for (category, date) when a session starts and stores the answer on
// the session. Failures surface as *UpstreamDataError so callers can map them
// to a server error; no retry happens here.

package actual

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Source supplies the actual value for a category on a date.
type Source interface {
	Actual(ctx context.Context, categoryID string, date time.Time) (decimal.Decimal, error)
}

// Observation is one historical data point.
type Observation struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// UpstreamDataError reports that no value could be produced for a request.
type UpstreamDataError struct {
	Category string
	Date     string
	Err      error
}

func (e *UpstreamDataError) Error() string {
	return fmt.Sprintf("actual value for %s on %s: %v", e.Category, e.Date, e.Err)
}

func (e *UpstreamDataError) Unwrap() error { return e.Err }
