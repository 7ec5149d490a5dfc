package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescent-wealth/advisor-cli/internal/catalog"
)

func TestDefaultAllocation_SumsTo100ForEveryRiskScore(t *testing.T) {
	for risk := 0; risk <= 100; risk++ {
		weights := DefaultAllocation(float64(risk))
		sum := 0
		for _, w := range weights {
			sum += w.Percent
		}
		assert.Equal(t, 100, sum, "risk %d", risk)
	}
}

func TestDefaultAllocation_Endpoints(t *testing.T) {
	byClass := func(weights []ClassWeight) map[catalog.AssetClass]int {
		out := make(map[catalog.AssetClass]int, len(weights))
		for _, w := range weights {
			out[w.Class] = w.Percent
		}
		return out
	}

	low := byClass(DefaultAllocation(0))
	assert.Equal(t, 20, low[catalog.AssetEquityETF])
	assert.Equal(t, 50, low[catalog.AssetGold])
	assert.Equal(t, 20, low[catalog.AssetSilver])
	assert.Equal(t, 10, low[catalog.AssetPlatinum])

	high := byClass(DefaultAllocation(100))
	assert.Equal(t, 80, high[catalog.AssetEquityETF])
	assert.Equal(t, 10, high[catalog.AssetGold])
	assert.Equal(t, 5, high[catalog.AssetSilver])
	assert.Equal(t, 5, high[catalog.AssetPlatinum])
}

func TestDefaultAllocation_EquityRisesGoldFalls(t *testing.T) {
	prevEquity, prevGold := -1, 101
	for risk := 0; risk <= 100; risk += 10 {
		weights := DefaultAllocation(float64(risk))
		var equity, gold int
		for _, w := range weights {
			switch w.Class {
			case catalog.AssetEquityETF:
				equity = w.Percent
			case catalog.AssetGold:
				gold = w.Percent
			}
		}
		assert.GreaterOrEqual(t, equity, prevEquity, "equity at risk %d", risk)
		assert.LessOrEqual(t, gold, prevGold, "gold at risk %d", risk)
		prevEquity, prevGold = equity, gold
	}
}

func TestDefaultAllocation_ClampsOutOfRange(t *testing.T) {
	assert.Equal(t, DefaultAllocation(0), DefaultAllocation(-40))
	assert.Equal(t, DefaultAllocation(100), DefaultAllocation(250))
	assert.Equal(t, DefaultAllocation(0), DefaultAllocation(math.NaN()))
}

func TestExpectedAnnualRate(t *testing.T) {
	assert.InDelta(t, 0.03, ExpectedAnnualRate(0), 1e-9)
	assert.InDelta(t, 0.065, ExpectedAnnualRate(50), 1e-9)
	assert.InDelta(t, 0.10, ExpectedAnnualRate(100), 1e-9)
	assert.InDelta(t, 0.10, ExpectedAnnualRate(9999), 1e-9)
}

func TestValidateFinite(t *testing.T) {
	require.NoError(t, validateFinite("x", 1.5))
	require.Error(t, validateFinite("x", math.NaN()))
	require.Error(t, validateFinite("x", math.Inf(1)))
}
