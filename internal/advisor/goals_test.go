package advisor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestGoalsFromDream_KeywordInference(t *testing.T) {
	goals := GoalsFromDream("I want to buy a house by the sea and travel the world", testNow)
	require.Len(t, goals, 2)

	assert.Equal(t, GoalHouse, goals[0].Category)
	assert.Equal(t, 500000.0, goals[0].Cost)
	assert.Equal(t, 2036, goals[0].Year)

	assert.Equal(t, GoalTravel, goals[1].Category)
	assert.Equal(t, 15000.0, goals[1].Cost)
	assert.Equal(t, 2031, goals[1].Year)
}

func TestGoalsFromDream_FallbackForUnmatchedText(t *testing.T) {
	goals := GoalsFromDream("I just want peace of mind and financial security", testNow)
	require.Len(t, goals, 1)
	assert.Equal(t, GoalRetirement, goals[0].Category)
	assert.Equal(t, 1000000.0, goals[0].Cost)
	assert.Equal(t, 2046, goals[0].Year)
}

func TestGoalsFromDream_ShortTextYieldsNothing(t *testing.T) {
	assert.Empty(t, GoalsFromDream("idk", testNow))
	assert.Empty(t, GoalsFromDream("   ", testNow))
}

func TestFollowUpQuestion(t *testing.T) {
	assert.Contains(t, FollowUpQuestion("I dream of travel"), "visit")
	assert.Contains(t, FollowUpQuestion("a house for my family"), "location")
	assert.Contains(t, FollowUpQuestion("retire early"), "retirement")
	assert.Contains(t, FollowUpQuestion("something else entirely"), "emotion")
}

func TestMarketScenarios_TailoredToRisk(t *testing.T) {
	conservative := MarketScenarios(20)
	require.Len(t, conservative, 3)
	for _, s := range conservative {
		assert.GreaterOrEqual(t, s.Impact, -0.05)
	}

	growth := MarketScenarios(70)
	require.Len(t, growth, 3)
	var worst float64
	for _, s := range growth {
		if s.Impact < worst {
			worst = s.Impact
		}
	}
	assert.Equal(t, -0.2, worst)
}

func TestTargetWealthFromGoals(t *testing.T) {
	goals := []LifeGoal{{Cost: 15000}, {Cost: 400000}}
	assert.Equal(t, 415000.0, TargetWealthFromGoals(goals, 1000000))
	assert.Equal(t, 1000000.0, TargetWealthFromGoals(nil, 1000000))
}

func TestDecodeGoals_Variants(t *testing.T) {
	want := []LifeGoal{{ID: "g1", Category: GoalTravel, Cost: 15000, Year: 2031}}

	t.Run("typed slice", func(t *testing.T) {
		goals, ok := decodeGoals(want)
		require.True(t, ok)
		assert.Equal(t, want, goals)
	})

	t.Run("raw json", func(t *testing.T) {
		raw, err := json.Marshal(want)
		require.NoError(t, err)
		goals, ok := decodeGoals(json.RawMessage(raw))
		require.True(t, ok)
		assert.Equal(t, want, goals)
	})

	t.Run("wrapped json", func(t *testing.T) {
		goals, ok := decodeGoals(json.RawMessage(`{"goals":[{"id":"g1","category":"Travel","cost":15000,"year":2031}]}`))
		require.True(t, ok)
		assert.Equal(t, want, goals)
	})

	t.Run("generic slice from decoded json", func(t *testing.T) {
		var v any
		require.NoError(t, json.Unmarshal([]byte(`[{"id":"g1","category":"Travel","cost":15000,"year":2031}]`), &v))
		goals, ok := decodeGoals(v)
		require.True(t, ok)
		assert.Equal(t, want, goals)
	})

	t.Run("dream text", func(t *testing.T) {
		goals, ok := decodeGoals("I want to start a business someday")
		require.True(t, ok)
		require.Len(t, goals, 1)
		assert.Equal(t, GoalBusiness, goals[0].Category)
	})

	t.Run("unusable", func(t *testing.T) {
		_, ok := decodeGoals(42)
		assert.False(t, ok)
	})
}
