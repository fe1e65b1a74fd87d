// internal/game/scorer.go
//
// Proximity scoring of a decoded guess against the actual value.
//
// Magnitude ("arrows") is bucketed on the relative distance
//   rel = |actual - guess| / |actual|      (or |actual - guess| when actual is 0)
// against the category's ascending tier boundaries b1..b4:
//   rel <= b1 → 1, <= b2 → 2, <= b3 → 3, <= b4 → 4, otherwise 5.
// An exact guess has magnitude 0.

package game

import (
	"github.com/shopspring/decimal"

	"github.com/robalobadob/dailyguess/internal/category"
)

// MaxMagnitude caps the arrow count so it always fits the arrow row.
const MaxMagnitude = ArrowSlots

// Score compares guess to actual. It is pure and deterministic.
func Score(guess, actual decimal.Decimal, cfg category.Config) ScoreResult {
	diff := actual.Sub(guess)
	abs := diff.Abs()

	res := ScoreResult{
		Difference: diff,
		IsClose:    abs.LessThan(cfg.ClosenessThreshold),
	}
	switch diff.Sign() {
	case 0:
		res.Direction = DirectionExact
		return res
	case 1:
		res.Direction = DirectionUp
	default:
		res.Direction = DirectionDown
	}
	res.Magnitude = magnitude(abs, actual, cfg.Tiers)
	return res
}

// magnitude maps a non-zero distance onto 1..MaxMagnitude.
func magnitude(abs, actual decimal.Decimal, tiers []decimal.Decimal) int {
	rel := abs
	if !actual.IsZero() {
		rel = abs.Div(actual.Abs())
	}
	for i, b := range tiers {
		if rel.LessThanOrEqual(b) {
			return min(i+1, MaxMagnitude)
		}
	}
	return min(len(tiers)+1, MaxMagnitude)
}
