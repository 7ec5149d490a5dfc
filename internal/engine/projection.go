package engine

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/crescent-wealth/advisor-cli/internal/catalog"
)

// Scenario selects a growth-rate assumption set for projections. This is the
// projection scenario, distinct from the crisis narrative step.
type Scenario string

const (
	ScenarioOptimistic  Scenario = "optimistic"
	ScenarioRealistic   Scenario = "realistic"
	ScenarioPessimistic Scenario = "pessimistic"
)

// Scenarios lists all projection scenarios.
var Scenarios = []Scenario{ScenarioPessimistic, ScenarioRealistic, ScenarioOptimistic}

// MaxProjectionYears bounds the projection horizon.
const MaxProjectionYears = 60

// annualRates maps (asset class, scenario) to an annual growth rate. Stable
// assets carry narrow bands; growth assets carry wide bands with a negative
// pessimistic rate, so a pessimistic projection may shrink year over year.
var annualRates = map[catalog.AssetClass]map[Scenario]float64{
	catalog.AssetGold: {
		ScenarioPessimistic: 0.03,
		ScenarioRealistic:   0.05,
		ScenarioOptimistic:  0.08,
	},
	catalog.AssetPlatinum: {
		ScenarioPessimistic: 0.03,
		ScenarioRealistic:   0.04,
		ScenarioOptimistic:  0.06,
	},
	catalog.AssetSilver: {
		ScenarioPessimistic: -0.03,
		ScenarioRealistic:   0.06,
		ScenarioOptimistic:  0.12,
	},
	catalog.AssetEquityETF: {
		ScenarioPessimistic: -0.05,
		ScenarioRealistic:   0.08,
		ScenarioOptimistic:  0.14,
	},
}

// AnnualRate resolves the growth rate for an asset class under a scenario.
func AnnualRate(class catalog.AssetClass, scenario Scenario) (float64, error) {
	byScenario, ok := annualRates[class]
	if !ok {
		return 0, eris.Errorf("engine: no rate table for asset class %q", class)
	}
	rate, ok := byScenario[scenario]
	if !ok {
		return 0, eris.Errorf("engine: unknown scenario %q", scenario)
	}
	return rate, nil
}

// Portion is one slice of a projection input: an asset class and the share of
// the monthly contribution flowing into it.
type Portion struct {
	Class   catalog.AssetClass `json:"class"`
	Percent float64            `json:"percent"`
}

// YearValue is one point of a projection series.
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// ProjectWealth computes cumulative wealth per year for a monthly contribution
// split across portions, compounding each portion at its scenario rate with
// the annuity formula value(y) = annual × ((1+rate)^y − 1)/rate. Year 0 is
// exactly 0. Years must be in [0, MaxProjectionYears]; anything else is a
// validation error, not a clamp.
func ProjectWealth(monthlyContribution float64, portions []Portion, years int, scenario Scenario) ([]YearValue, error) {
	if err := validateFinite("monthly contribution", monthlyContribution); err != nil {
		return nil, err
	}
	if monthlyContribution < 0 {
		return nil, eris.New("engine: monthly contribution must not be negative")
	}
	if years < 0 || years > MaxProjectionYears {
		return nil, eris.Errorf("engine: years must be between 0 and %d, got %d", MaxProjectionYears, years)
	}
	if len(portions) == 0 {
		return nil, eris.New("engine: at least one allocation portion is required")
	}

	rates := make([]float64, len(portions))
	annuals := make([]float64, len(portions))
	for i, p := range portions {
		if err := validateFinite("allocation percentage", p.Percent); err != nil {
			return nil, err
		}
		if p.Percent < 0 || p.Percent > 100 {
			return nil, eris.Errorf("engine: allocation percentage %.2f out of range [0,100]", p.Percent)
		}
		rate, err := AnnualRate(p.Class, scenario)
		if err != nil {
			return nil, err
		}
		rates[i] = rate
		annuals[i] = monthlyContribution * 12 * p.Percent / 100
	}

	series := make([]YearValue, years+1)
	series[0] = YearValue{Year: 0, Value: 0}
	for y := 1; y <= years; y++ {
		var total float64
		for i := range portions {
			total += annuityValue(annuals[i], rates[i], y)
		}
		series[y] = YearValue{Year: y, Value: total}
	}
	return series, nil
}

// annuityValue is the future value of an annual contribution compounded for
// the given number of years. A zero rate degenerates to simple accumulation.
func annuityValue(annual, rate float64, years int) float64 {
	if rate == 0 {
		return annual * float64(years)
	}
	return annual * (math.Pow(1+rate, float64(years)) - 1) / rate
}

// FinalValue returns the last value of a projection series, 0 for empty input.
func FinalValue(series []YearValue) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1].Value
}

// GapToTarget reports how far a projected value falls short of the target
// wealth. A non-positive gap means the target is reached.
func GapToTarget(projected, targetWealth float64) float64 {
	return targetWealth - projected
}
