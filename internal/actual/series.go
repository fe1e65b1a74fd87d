// internal/actual/series.go
//
// SeriesSource picks each day's value from a fixed list of historical
// observations per category.
//
// Loading (LoadSeries):
//   1. If path is non-empty, read that YAML file.
//   2. Otherwise use the embedded assets/series.yaml.
//
// Selection: daily.Index(date, category, salt, len(series)) so the pick is
// stable for a whole UTC day, differs between categories, and cannot be
// predicted without the salt.

package actual

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/dailyguess/assets"
	"github.com/robalobadob/dailyguess/internal/category"
	"github.com/robalobadob/dailyguess/internal/daily"
	"github.com/robalobadob/dailyguess/internal/game"
)

var errNoSeries = errors.New("no observations")

// SeriesSource implements Source over in-memory observations.
type SeriesSource struct {
	salt   string
	series map[string][]Observation // keyed by upper-case category id, sorted by date
}

type seriesFile struct {
	Series map[string][]struct {
		Date  string `yaml:"date"`
		Value string `yaml:"value"`
	} `yaml:"series"`
}

// LoadSeries reads observations from path, or the embedded defaults when path is empty.
func LoadSeries(path, salt string) (*SeriesSource, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = assets.Series()
	}
	if err != nil {
		return nil, fmt.Errorf("read series: %w", err)
	}
	return ParseSeries(data, salt)
}

// ParseSeries builds a SeriesSource from YAML.
func ParseSeries(data []byte, salt string) (*SeriesSource, error) {
	var f seriesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse series: %w", err)
	}
	s := &SeriesSource{salt: salt, series: make(map[string][]Observation, len(f.Series))}
	for cat, points := range f.Series {
		key := strings.ToUpper(strings.TrimSpace(cat))
		obs := make([]Observation, 0, len(points))
		for _, p := range points {
			if _, err := time.Parse("2006-01-02", p.Date); err != nil {
				return nil, fmt.Errorf("series %s: bad date %q", cat, p.Date)
			}
			v, err := decimal.NewFromString(p.Value)
			if err != nil || v.IsNegative() {
				return nil, fmt.Errorf("series %s: bad value %q", cat, p.Value)
			}
			obs = append(obs, Observation{Date: p.Date, Value: v})
		}
		sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date < obs[j].Date })
		s.series[key] = obs
	}
	return s, nil
}

// Actual returns the observation chosen for date.
func (s *SeriesSource) Actual(ctx context.Context, categoryID string, date time.Time) (decimal.Decimal, error) {
	obs, idx, err := s.pick(ctx, categoryID, date)
	if err != nil {
		return decimal.Zero, err
	}
	return obs[idx].Value, nil
}

// Window returns up to n observations ending at the one chosen for date,
// for the post-game chart.
func (s *SeriesSource) Window(ctx context.Context, categoryID string, date time.Time, n int) ([]Observation, error) {
	obs, idx, err := s.pick(ctx, categoryID, date)
	if err != nil {
		return nil, err
	}
	start := max(idx+1-n, 0)
	return append([]Observation(nil), obs[start:idx+1]...), nil
}

// CheckEnterable reports every observation that could never be guessed on its
// category's keypad: more fractional digits than DecimalPlaces, or more digits
// than Width. Categories without observations are skipped.
func (s *SeriesSource) CheckEnterable(cfgs []category.Config) error {
	var errs []error
	for _, cfg := range cfgs {
		for _, o := range s.series[cfg.ID] {
			if !o.Value.Equal(o.Value.Truncate(int32(cfg.DecimalPlaces))) {
				errs = append(errs, fmt.Errorf("series %s %s: %s has more than %d decimal places",
					cfg.ID, o.Date, o.Value, cfg.DecimalPlaces))
				continue
			}
			if digits := game.EncodeForDisplay(o.Value, cfg.DecimalPlaces); len(digits) > cfg.Width {
				errs = append(errs, fmt.Errorf("series %s %s: %s needs %d digits, keypad has %d",
					cfg.ID, o.Date, o.Value, len(digits), cfg.Width))
			}
		}
	}
	return errors.Join(errs...)
}

// Len reports how many observations a category has.
func (s *SeriesSource) Len(categoryID string) int {
	return len(s.series[strings.ToUpper(categoryID)])
}

func (s *SeriesSource) pick(ctx context.Context, categoryID string, date time.Time) ([]Observation, int, error) {
	key := strings.ToUpper(strings.TrimSpace(categoryID))
	if err := ctx.Err(); err != nil {
		return nil, 0, &UpstreamDataError{Category: key, Date: daily.DateKey(date), Err: err}
	}
	obs := s.series[key]
	if len(obs) == 0 {
		return nil, 0, &UpstreamDataError{Category: key, Date: daily.DateKey(date), Err: errNoSeries}
	}
	return obs, daily.Index(date, key, s.salt, len(obs)), nil
}
