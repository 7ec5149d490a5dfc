package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestTiers(t *testing.T) {
	tiers, err := SuggestTiers(1000)
	require.NoError(t, err)
	assert.Equal(t, Tiers{Low: 700, Mid: 1000, High: 1300}, tiers)
}

func TestSuggestTiers_Rounds(t *testing.T) {
	tiers, err := SuggestTiers(333)
	require.NoError(t, err)
	// 233.1 and 432.9 round to the nearest euro.
	assert.Equal(t, Tiers{Low: 233, Mid: 333, High: 433}, tiers)
}

func TestSuggestTiers_OrderingHoldsAtZero(t *testing.T) {
	tiers, err := SuggestTiers(0)
	require.NoError(t, err)
	assert.LessOrEqual(t, tiers.Low, tiers.Mid)
	assert.LessOrEqual(t, tiers.Mid, tiers.High)
}

func TestSuggestTiers_InvalidInput(t *testing.T) {
	_, err := SuggestTiers(-100)
	require.Error(t, err)

	_, err = SuggestTiers(math.NaN())
	require.Error(t, err)
}
