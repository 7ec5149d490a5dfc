package engine

import (
	"math"

	"github.com/rotisserie/eris"
)

// Tiers holds the three suggested monthly contribution amounts shown with a
// result: conservative, recommended, and ambitious.
type Tiers struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// SuggestTiers derives the low/high amounts from the user's indicated monthly
// contribution: low = 70% and high = 130% of mid, both rounded. The ordering
// low ≤ mid ≤ high holds for every valid mid, including 0.
func SuggestTiers(mid float64) (Tiers, error) {
	if err := validateFinite("mid amount", mid); err != nil {
		return Tiers{}, err
	}
	if mid < 0 {
		return Tiers{}, eris.New("engine: mid amount must not be negative")
	}
	return Tiers{
		Low:  math.Round(mid * 0.7),
		Mid:  math.Round(mid),
		High: math.Round(mid * 1.3),
	}, nil
}
