package advisor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_WireRoundTrip(t *testing.T) {
	steps := []Step{
		GalaxyStep(),
		MonthlyContributionStep(),
		FallbackQuestion(40),
		BuildCrisisStep(500, 90),
		{
			Type:     StepPostcard,
			Progress: 50,
			Postcard: &PostcardContent{
				Title:       "Two futures",
				Description: "Pick one",
				ScenarioA:   ScenarioCard{ID: "safe", Title: "Steady", Description: "calm", ImagePrompt: "a cottage"},
				ScenarioB:   ScenarioCard{ID: "risky", Title: "Bold", Description: "storm", ImagePrompt: "a penthouse"},
			},
		},
		{
			Type:     StepResult,
			Progress: 100,
			Result: &ResultContent{
				Summary:          "done",
				Allocations:      []AllocationLine{{ProductID: "gold-standard", Percentage: 100}},
				ProjectedOutcome: "wealth",
			},
		},
	}

	for _, step := range steps {
		t.Run(string(step.Type), func(t *testing.T) {
			raw, err := json.Marshal(step)
			require.NoError(t, err)

			var decoded Step
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assert.Equal(t, step, decoded)
		})
	}
}

func TestStep_WireShape(t *testing.T) {
	raw, err := json.Marshal(GalaxyStep())
	require.NoError(t, err)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Contains(t, env, "type")
	assert.Contains(t, env, "progress")
	assert.Contains(t, env, "content")
}

func TestStep_UnmarshalRejectsUnknownType(t *testing.T) {
	var step Step
	err := json.Unmarshal([]byte(`{"type":"dance","progress":10,"content":{}}`), &step)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step type")
}

func TestStep_UnmarshalRejectsNonIntegerProgress(t *testing.T) {
	var step Step
	err := json.Unmarshal([]byte(`{"type":"galaxy","progress":10.5,"content":{}}`), &step)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an integer")
}

func TestStep_UnmarshalRejectsMissingContent(t *testing.T) {
	var step Step
	err := json.Unmarshal([]byte(`{"type":"galaxy","progress":10}`), &step)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestStep_ContentMismatch(t *testing.T) {
	step := Step{Type: StepCrisis, Progress: 50}
	_, err := step.Content()
	require.Error(t, err)

	_, err = Step{Type: "mystery"}.Content()
	require.Error(t, err)
}
