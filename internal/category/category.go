// internal/category/category.go
//
// Category registry for the daily challenge.
// Each category (a stock price, a currency rate or one interest-rate duration)
// only differs in decimal placement, keypad width and scoring thresholds, so
// the engine resolves those parameters here instead of branching per category.
//
// The table is a closed set: ids outside Known are rejected at load time and
// by Resolve. The registry is read-only after construction.

package category

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/dailyguess/assets"
)

// Kind groups categories that share value semantics.
type Kind string

const (
	KindStock        Kind = "stock"
	KindCurrency     Kind = "currency"
	KindInterestRate Kind = "interest_rate"
)

// Category ids.
const (
	Stock      = "STOCK"
	Currency   = "CURRENCY"
	T30        = "T_30"
	T20        = "T_20"
	T10        = "T_10"
	T5         = "T_5"
	T1         = "T_1"
	TOvernight = "T_OVERNIGHT"
)

// Known is the enumerated set of category ids.
var Known = []string{Stock, Currency, T30, T20, T10, T5, T1, TOvernight}

// aliases map generic ids onto a concrete category.
var aliases = map[string]string{
	"INTEREST_RATE": T10,
}

// TierCount is the number of relative-distance boundaries; magnitudes run 1..TierCount+1.
const TierCount = 4

// Config holds the scoring and formatting parameters of one category.
type Config struct {
	ID                 string
	Kind               Kind
	Description        string
	DisplayUnit        string
	DecimalPlaces      int             // implied decimal point, counted from the right
	Width              int             // digit slots; raw input is left-padded to this
	ClosenessThreshold decimal.Decimal // |difference| below this is "close"
	Tiers              []decimal.Decimal
}

// UnknownCategoryError is returned when an id is not in the enumerated set.
type UnknownCategoryError struct {
	ID string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", e.ID)
}

// Registry resolves category ids to their Config.
type Registry struct {
	byID map[string]Config
}

// yaml shape of assets/categories.yaml
type fileEntry struct {
	ID          string   `yaml:"id"`
	Kind        string   `yaml:"kind"`
	Description string   `yaml:"description"`
	Unit        string   `yaml:"unit"`
	Decimal     int      `yaml:"decimal"`
	Width       int      `yaml:"width"`
	Threshold   string   `yaml:"threshold"`
	Tiers       []string `yaml:"tiers"`
}

type fileTable struct {
	Categories []fileEntry `yaml:"categories"`
}

// Parse builds a registry from a YAML category table.
// Every id in Known must be present exactly once.
func Parse(data []byte) (*Registry, error) {
	var tbl fileTable
	if err := yaml.Unmarshal(data, &tbl); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}

	r := &Registry{byID: make(map[string]Config, len(tbl.Categories))}
	for _, e := range tbl.Categories {
		cfg, err := e.config()
		if err != nil {
			return nil, err
		}
		if _, dup := r.byID[cfg.ID]; dup {
			return nil, fmt.Errorf("category %s: duplicate entry", cfg.ID)
		}
		r.byID[cfg.ID] = cfg
	}
	for _, id := range Known {
		if _, ok := r.byID[id]; !ok {
			return nil, fmt.Errorf("category %s: missing from table", id)
		}
	}
	return r, nil
}

func (e fileEntry) config() (Config, error) {
	id := strings.ToUpper(strings.TrimSpace(e.ID))
	if !isKnown(id) {
		return Config{}, &UnknownCategoryError{ID: e.ID}
	}
	kind := Kind(e.Kind)
	switch kind {
	case KindStock, KindCurrency, KindInterestRate:
	default:
		return Config{}, fmt.Errorf("category %s: invalid kind %q", id, e.Kind)
	}
	if e.Decimal < 0 {
		return Config{}, fmt.Errorf("category %s: decimal must be >= 0", id)
	}
	if e.Width <= e.Decimal {
		return Config{}, fmt.Errorf("category %s: width %d must exceed decimal %d", id, e.Width, e.Decimal)
	}
	threshold, err := decimal.NewFromString(e.Threshold)
	if err != nil || threshold.IsNegative() {
		return Config{}, fmt.Errorf("category %s: invalid threshold %q", id, e.Threshold)
	}
	if len(e.Tiers) != TierCount {
		return Config{}, fmt.Errorf("category %s: want %d tiers, got %d", id, TierCount, len(e.Tiers))
	}
	tiers := make([]decimal.Decimal, 0, TierCount)
	for i, s := range e.Tiers {
		t, err := decimal.NewFromString(s)
		if err != nil || !t.IsPositive() {
			return Config{}, fmt.Errorf("category %s: invalid tier %q", id, s)
		}
		if i > 0 && !t.GreaterThan(tiers[i-1]) {
			return Config{}, fmt.Errorf("category %s: tiers must be strictly ascending", id)
		}
		tiers = append(tiers, t)
	}
	return Config{
		ID:                 id,
		Kind:               kind,
		Description:        e.Description,
		DisplayUnit:        e.Unit,
		DecimalPlaces:      e.Decimal,
		Width:              e.Width,
		ClosenessThreshold: threshold,
		Tiers:              tiers,
	}, nil
}

// Resolve returns the Config for id (case-insensitive, aliases allowed).
func (r *Registry) Resolve(id string) (Config, error) {
	key := strings.ToUpper(strings.TrimSpace(id))
	if a, ok := aliases[key]; ok {
		key = a
	}
	cfg, ok := r.byID[key]
	if !ok {
		return Config{}, &UnknownCategoryError{ID: id}
	}
	return cfg.clone(), nil
}

// List returns every category sorted by id.
func (r *Registry) List() []Config {
	out := make([]Config, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c Config) clone() Config {
	c.Tiers = append([]decimal.Decimal(nil), c.Tiers...)
	return c
}

func isKnown(id string) bool {
	for _, k := range Known {
		if k == id {
			return true
		}
	}
	return false
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the registry built from the embedded table, loading it once.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		data, err := assets.Categories()
		if err != nil {
			defaultErr = err
			return
		}
		defaultReg, defaultErr = Parse(data)
	})
	return defaultReg, defaultErr
}
