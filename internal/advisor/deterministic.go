package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/crescent-wealth/advisor-cli/internal/catalog"
	"github.com/crescent-wealth/advisor-cli/internal/engine"
	"github.com/crescent-wealth/advisor-cli/internal/format"
)

// defaultMonthly is assumed when no slider answer exists in the history.
const defaultMonthly = 500

// riskSignals maps answer values to risk-score deltas around a neutral 50.
var riskSignals = map[string]float64{
	"growth":       15,
	"risky":        15,
	"preservation": -15,
	"safe":         -15,
	"hold":         10,
	"buy":          20,
	"sell":         -20,
	"panic":        -25,
}

// RiskScoreFromHistory derives a 0-100 risk score from the answers given so
// far. Each recognized signal shifts the neutral midpoint; the result is
// clamped. This is the deterministic stand-in for the provider's judgment.
func RiskScoreFromHistory(history []HistoryEntry) float64 {
	score := 50.0
	for _, entry := range history {
		if s, ok := entry.Answer.(string); ok {
			if delta, found := riskSignals[strings.ToLower(strings.TrimSpace(s))]; found {
				score += delta
			}
		}
	}
	return engine.ClampRisk(score)
}

// MonthlyFromHistory finds the slider answer following the fixed monthly
// contribution question, defaulting when absent or unreadable.
func MonthlyFromHistory(history []HistoryEntry) float64 {
	for _, entry := range history {
		if entry.StepType != StepQuestion {
			continue
		}
		if v, ok := toNumber(entry.Answer); ok && v > 0 {
			return v
		}
	}
	return defaultMonthly
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// BuildResultStep assembles the deterministic result: the engine's default
// allocation mapped onto catalog products, a realistic-scenario projection
// against the target wealth, and contribution tiers.
func BuildResultStep(cat *catalog.Catalog, riskScore, monthly, targetWealth float64, years int) (Step, error) {
	weights := engine.DefaultAllocation(riskScore)

	var allocations []AllocationLine
	var portions []engine.Portion
	for _, w := range weights {
		if w.Percent <= 0 {
			continue
		}
		product, ok := cat.ByAssetClass(w.Class)
		if !ok {
			return Step{}, eris.Errorf("advisor: no catalog product for asset class %q", w.Class)
		}
		allocations = append(allocations, AllocationLine{
			ProductID:  product.ID,
			Percentage: float64(w.Percent),
			Reasoning:  fmt.Sprintf("%s weighting for a risk score of %.0f", product.RiskTier, riskScore),
		})
		portions = append(portions, engine.Portion{Class: w.Class, Percent: float64(w.Percent)})
	}

	series, err := engine.ProjectWealth(monthly, portions, years, engine.ScenarioRealistic)
	if err != nil {
		return Step{}, err
	}
	projected := engine.FinalValue(series)

	tiers, err := engine.SuggestTiers(monthly)
	if err != nil {
		return Step{}, err
	}

	outcome := fmt.Sprintf("Projected wealth after %d years: %s.", years, format.Euro(projected))
	if gap := engine.GapToTarget(projected, targetWealth); gap > 0 {
		outcome += fmt.Sprintf(" That leaves a gap of %s to your %s target.", format.Euro(gap), format.Euro(targetWealth))
	} else {
		outcome += fmt.Sprintf(" That reaches your %s target.", format.Euro(targetWealth))
	}

	return Step{
		Type:     StepResult,
		Progress: 100,
		Result: &ResultContent{
			Summary: fmt.Sprintf(
				"Based on your goals and a risk score of %.0f, we blended stability and growth at %s.",
				riskScore, format.EuroMonthly(monthly)),
			Allocations:      allocations,
			ProjectedOutcome: outcome,
			InvestmentTiers: &InvestmentTiers{
				Low:  TierAmount{Amount: tiers.Low, Label: "Conservative"},
				Mid:  TierAmount{Amount: tiers.Mid, Label: "Recommended"},
				High: TierAmount{Amount: tiers.High, Label: "Ambitious"},
			},
		},
	}, nil
}

// BuildCrisisStep assembles the deterministic crisis step. The simulated loss
// is three years of contributions, per the flow's resilience-test rule.
func BuildCrisisStep(monthly float64, progress int) Step {
	lost := monthly * 36
	return Step{
		Type:     StepCrisis,
		Progress: progress,
		Crisis: &CrisisContent{
			Headline: "Markets Plunge as Global Selloff Accelerates",
			NewsBody: "Equities are down sharply for a third straight week. Analysts warn of bankruptcies among overleveraged firms, and your portfolio has not been spared.",
			ImpactData: &ImpactData{
				AmountLost: format.Euro(lost),
				TimeLost:   "3 Years of Savings",
			},
			Reactions: []Reaction{
				{ID: "sell", Label: "Sell everything", Description: "Cut losses and move to cash.", Icon: "🏳️"},
				{ID: "hold", Label: "Hold steady", Description: "Stay the course and wait it out.", Icon: "⚓"},
				{ID: "buy", Label: "Buy the dip", Description: "Invest more while prices are low.", Icon: "📈"},
			},
		},
	}
}

// StaticProvider is the deterministic engine-backed step provider used when no
// model backend is configured. It walks a canned question script, always runs
// the crisis test before the result, and builds the result from the engine.
type StaticProvider struct {
	catalog         *catalog.Catalog
	minTurns        int
	projectionYears int
	defaultTarget   float64
}

// NewStaticProvider builds the deterministic provider.
func NewStaticProvider(cat *catalog.Catalog, minTurns, projectionYears int, defaultTarget float64) *StaticProvider {
	return &StaticProvider{
		catalog:         cat,
		minTurns:        minTurns,
		projectionYears: projectionYears,
		defaultTarget:   defaultTarget,
	}
}

// scriptedSteps are asked in order between the fixed opening and the crisis
// test. Indirect, psychological questions only.
func scriptedSteps(progress int) []Step {
	return []Step{
		{
			Type:     StepQuestion,
			Progress: progress,
			Question: &QuestionContent{
				Question:  "A friend offers you a chance to double your savings, with a real chance of losing half. What do you do?",
				InputType: InputChoice,
				Options: []Option{
					{Label: "Take the chance", Value: "risky", Icon: "🎲"},
					{Label: "Politely decline", Value: "safe", Icon: "🛡️"},
				},
			},
		},
		{
			Type:     StepPostcard,
			Progress: progress,
			Postcard: &PostcardContent{
				Title:       "A postcard from your future self",
				Description: "Two futures, one choice. Which postcard would you rather receive?",
				ScenarioA: ScenarioCard{
					ID:          "safe",
					Title:       "The Steady Path",
					Description: "A comfortable home, savings intact, no sleepless nights.",
					ImagePrompt: "A calm seaside cottage at sunset, warm light, serene atmosphere",
				},
				ScenarioB: ScenarioCard{
					ID:          "risky",
					Title:       "The Bold Path",
					Description: "You backed the venture. It paid off, after some stormy years.",
					ImagePrompt: "A city penthouse overlooking a skyline at dawn, dramatic light",
				},
			},
		},
		{
			Type:     StepQuestion,
			Progress: progress,
			Question: &QuestionContent{
				Question:  "When you imagine the life you described, what matters most?",
				InputType: InputChoice,
				Options: []Option{
					{Label: "Security", Value: "preservation", Icon: "🏡"},
					{Label: "Freedom", Value: "growth", Icon: "🕊️"},
					{Label: "Family", Value: "family", Icon: "👨‍👩‍👧"},
					{Label: "Legacy", Value: "legacy", Icon: "🌳"},
				},
			},
		},
		{
			Type:     StepQuestion,
			Progress: progress,
			Question: &QuestionContent{
				Question:  "What is the most important emotion you want to feel when you achieve this?",
				InputType: InputText,
			},
		},
	}
}

// NextStep implements Provider deterministically: scripted questions, then a
// crisis before any result, then the engine-built result once the minimum
// turn count is reached.
func (p *StaticProvider) NextStep(_ context.Context, history []HistoryEntry) (json.RawMessage, error) {
	n := len(history)
	progress := ProgressFor(n, p.minTurns)

	var step Step
	switch {
	case n >= p.minTurns:
		riskScore := RiskScoreFromHistory(history)
		monthly := MonthlyFromHistory(history)
		target := p.defaultTarget
		if goals := goalsFromHistory(history); len(goals) > 0 {
			target = TargetWealthFromGoals(goals, p.defaultTarget)
		}
		built, err := BuildResultStep(p.catalog, riskScore, monthly, target, p.projectionYears)
		if err != nil {
			return nil, err
		}
		step = built
	case n == p.minTurns-1:
		step = BuildCrisisStep(MonthlyFromHistory(history), progress)
	default:
		script := scriptedSteps(progress)
		idx := n - 2 // turns consumed by the fixed opening steps
		if idx < 0 {
			idx = 0
		}
		step = script[idx%len(script)]
		step.Progress = progress
	}

	raw, err := json.Marshal(step)
	if err != nil {
		return nil, eris.Wrap(err, "advisor: marshal static step")
	}
	return raw, nil
}

// goalsFromHistory recovers the life goals recorded as the galaxy answer.
func goalsFromHistory(history []HistoryEntry) []LifeGoal {
	for _, entry := range history {
		if entry.StepType != StepGalaxy {
			continue
		}
		if goals, ok := decodeGoals(entry.Answer); ok {
			return goals
		}
	}
	return nil
}

// ProgressFor is the canonical progress formula: the share of the minimum
// turn count completed, as a rounded percentage clamped to [0,100].
func ProgressFor(historyLen, minTurns int) int {
	if minTurns <= 0 {
		return 100
	}
	p := int(math.Round(float64(historyLen) / float64(minTurns) * 100))
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return p
}
