package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/dailyguess/internal/category"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func stockConfig() category.Config {
	return category.Config{
		ID:                 category.Stock,
		Kind:               category.KindStock,
		DecimalPlaces:      2,
		Width:              5,
		ClosenessThreshold: d("15"),
		Tiers:              []decimal.Decimal{d("0.01"), d("0.03"), d("0.07"), d("0.15")},
	}
}

func rateConfig() category.Config {
	return category.Config{
		ID:                 category.T10,
		Kind:               category.KindInterestRate,
		DecimalPlaces:      2,
		Width:              3,
		ClosenessThreshold: d("0.25"),
		Tiers:              []decimal.Decimal{d("0.02"), d("0.05"), d("0.10"), d("0.25")},
	}
}

func TestScoreExact(t *testing.T) {
	r := Score(d("1.53"), d("1.530"), rateConfig())
	assert.Equal(t, DirectionExact, r.Direction)
	assert.Equal(t, 0, r.Magnitude)
	assert.True(t, r.Difference.IsZero())
	assert.True(t, r.IsClose)
}

func TestScoreDirection(t *testing.T) {
	cfg := stockConfig()

	up := Score(d("152.00"), d("153.00"), cfg)
	assert.Equal(t, DirectionUp, up.Direction)
	assert.True(t, up.Difference.Equal(d("1.00")))
	assert.True(t, up.IsClose)
	assert.Equal(t, 1, up.Magnitude)

	down := Score(d("200"), d("153"), cfg)
	assert.Equal(t, DirectionDown, down.Direction)
	assert.True(t, down.Difference.Equal(d("-47")))
	assert.True(t, down.AbsDifference().Equal(d("47")))
	assert.False(t, down.IsClose)
}

func TestScoreTiers(t *testing.T) {
	cfg := stockConfig()
	actual := d("100")
	tests := []struct {
		guess string
		want  int
	}{
		{"99.5", 1},
		{"99", 1},
		{"98", 2},
		{"97", 2},
		{"95", 3},
		{"93", 3},
		{"90", 4},
		{"85", 4},
		{"84.99", 5},
		{"0", 5},
		{"500", 5},
	}
	for _, tt := range tests {
		t.Run(tt.guess, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(d(tt.guess), actual, cfg).Magnitude)
		})
	}
}

func TestScoreZeroActual(t *testing.T) {
	r := Score(d("0.01"), decimal.Zero, rateConfig())
	assert.Equal(t, DirectionDown, r.Direction)
	assert.Equal(t, 1, r.Magnitude)

	r = Score(d("9.99"), decimal.Zero, rateConfig())
	assert.Equal(t, 5, r.Magnitude)
}

func TestScoreMonotonic(t *testing.T) {
	cfg := stockConfig()
	actual := d("153.00")
	prev := MaxMagnitude + 1
	for cents := int64(0); cents <= 15300; cents += 37 {
		g := decimal.New(cents, -2)
		m := Score(g, actual, cfg).Magnitude
		require.LessOrEqual(t, m, prev, "guess %s", g)
		require.GreaterOrEqual(t, m, 1)
		require.LessOrEqual(t, m, MaxMagnitude)
		prev = m
	}
}

func TestScoreIsPure(t *testing.T) {
	cfg := stockConfig()
	a := Score(d("140"), d("153"), cfg)
	b := Score(d("140"), d("153"), cfg)
	assert.Equal(t, a.Direction, b.Direction)
	assert.Equal(t, a.Magnitude, b.Magnitude)
	assert.True(t, a.Difference.Equal(b.Difference))
}
