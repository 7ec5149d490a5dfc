// Package engine provides the deterministic financial computations behind the
// advisory flow: risk-based default allocation, multi-year wealth projection
// under a growth scenario, and monthly-contribution tier suggestions. All
// functions are pure; inputs are validated at the call boundary and never
// silently repaired except for the documented risk-score clamp.
package engine

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/crescent-wealth/advisor-cli/internal/catalog"
)

// ClassWeight is one bucket of a default allocation, as an integer percentage.
type ClassWeight struct {
	Class   catalog.AssetClass `json:"class"`
	Percent int                `json:"percent"`
}

// DefaultAllocation maps a 0-100 risk score onto asset-class weights by linear
// interpolation: equity rises 20%→80%, gold falls 50%→10%, silver falls
// 20%→5%, and the platinum bucket takes whatever remains so the weights total
// exactly 100. Risk scores outside [0,100] are clamped before interpolating.
func DefaultAllocation(riskScore float64) []ClassWeight {
	risk := ClampRisk(riskScore)

	equity := int(math.Round(20 + risk*0.6))
	gold := int(math.Round(50 - risk*0.4))
	silver := int(math.Round(20 - risk*0.15))
	platinum := 100 - equity - gold - silver

	return []ClassWeight{
		{Class: catalog.AssetEquityETF, Percent: equity},
		{Class: catalog.AssetGold, Percent: gold},
		{Class: catalog.AssetSilver, Percent: silver},
		{Class: catalog.AssetPlatinum, Percent: platinum},
	}
}

// ClampRisk clamps a risk score into [0,100]. NaN clamps to 0.
func ClampRisk(riskScore float64) float64 {
	if math.IsNaN(riskScore) || riskScore < 0 {
		return 0
	}
	if riskScore > 100 {
		return 100
	}
	return riskScore
}

// ExpectedAnnualRate is the blended headline growth rate for a risk score,
// 3% at risk 0 rising linearly to 10% at risk 100.
func ExpectedAnnualRate(riskScore float64) float64 {
	return 0.03 + ClampRisk(riskScore)/100*0.07
}

// validateFinite rejects NaN and infinities with a descriptive error.
func validateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return eris.Errorf("engine: %s must be finite", name)
	}
	return nil
}
