package advisor

// Fixed steps of the consultation opening plus the hardcoded substitute used
// whenever a provider step is unavailable or fails validation. These never
// come from the provider, so the flow always grounds itself in concrete life
// goals and a savings figure before any open-ended generation.

const openingProgress = 10

// GalaxyStep is the fixed first step: capture life goals.
func GalaxyStep() Step {
	return Step{
		Type:     StepGalaxy,
		Progress: openingProgress,
		Galaxy: &GalaxyContent{
			Title:       "Map your life goals",
			Description: "Place the moments that matter on your timeline. We will build your plan around them.",
		},
	}
}

// MonthlyContributionStep is the fixed second step: a slider capturing the
// monthly savings figure the engine needs.
func MonthlyContributionStep() Step {
	return Step{
		Type:     StepQuestion,
		Progress: openingProgress,
		Question: &QuestionContent{
			Question:  "How much could you comfortably set aside each month?",
			Subtext:   "A rough figure is fine. You can change it anytime.",
			InputType: InputSlider,
			SliderConfig: &SliderConfig{
				Min:   100,
				Max:   5000,
				Step:  100,
				Unit:  "€",
				Label: "Monthly contribution",
			},
		},
	}
}

// FallbackQuestion is the deterministic substitute for a failed or invalid
// provider step. It reads as just another question, so provider failures stay
// invisible to the user.
func FallbackQuestion(progress int) Step {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return Step{
		Type:     StepQuestion,
		Progress: progress,
		Question: &QuestionContent{
			Question:  "What is your primary financial goal?",
			InputType: InputChoice,
			Options: []Option{
				{Label: "Wealth Preservation", Value: "preservation", Icon: "🛡️"},
				{Label: "Aggressive Growth", Value: "growth", Icon: "🚀"},
			},
		},
	}
}
