package advisor

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"

	"github.com/crescent-wealth/advisor-cli/internal/catalog"
)

// Validator checks untrusted candidate steps against the step schema and the
// product catalog. Steps that fail any check are rejected whole; the caller
// substitutes the fallback step and never renders the raw payload.
type Validator struct {
	validate *validator.Validate
	catalog  *catalog.Catalog
}

// NewValidator builds a Validator bound to the given catalog.
func NewValidator(cat *catalog.Catalog) *Validator {
	return &Validator{
		validate: validator.New(),
		catalog:  cat,
	}
}

// Decode parses and fully validates an untrusted candidate step.
func (v *Validator) Decode(raw []byte) (Step, error) {
	var step Step
	if err := step.UnmarshalJSON(raw); err != nil {
		return Step{}, err
	}
	if err := v.Validate(step); err != nil {
		return Step{}, err
	}
	return step, nil
}

// Validate checks a structurally-typed step against the per-variant rules.
// Engine-built steps pass through here too, so the validator can never be
// stricter than the engine's own output.
func (v *Validator) Validate(step Step) error {
	if step.Progress < 0 || step.Progress > 100 {
		return eris.Errorf("advisor: progress %d out of range [0,100]", step.Progress)
	}

	content, err := step.Content()
	if err != nil {
		return err
	}
	if err := v.validate.Struct(content); err != nil {
		return eris.Wrapf(err, "advisor: invalid %s step", step.Type)
	}

	switch step.Type {
	case StepQuestion:
		return v.validateQuestion(step.Question)
	case StepPostcard:
		return v.validatePostcard(step.Postcard)
	case StepCrisis:
		return nil
	case StepResult:
		return v.validateResult(step)
	case StepGalaxy:
		return nil
	}
	return eris.Errorf("advisor: unknown step type %q", step.Type)
}

func (v *Validator) validateQuestion(q *QuestionContent) error {
	switch q.InputType {
	case InputChoice:
		if len(q.Options) == 0 {
			return eris.New("advisor: choice question has no options")
		}
	case InputSlider:
		if q.SliderConfig == nil {
			return eris.New("advisor: slider question has no slider config")
		}
		for name, val := range map[string]float64{
			"min":  q.SliderConfig.Min,
			"max":  q.SliderConfig.Max,
			"step": q.SliderConfig.Step,
		} {
			if math.IsNaN(val) || math.IsInf(val, 0) {
				return eris.Errorf("advisor: slider %s must be finite", name)
			}
		}
	}
	return nil
}

func (v *Validator) validatePostcard(p *PostcardContent) error {
	if p.ScenarioA.ID != "safe" {
		return eris.Errorf("advisor: postcard scenarioA id %q, want safe", p.ScenarioA.ID)
	}
	if p.ScenarioB.ID != "risky" {
		return eris.Errorf("advisor: postcard scenarioB id %q, want risky", p.ScenarioB.ID)
	}
	return nil
}

// validateResult enforces the literal progress=100 rule and cross-references
// every allocation against the catalog. A single dangling product id rejects
// the whole step.
func (v *Validator) validateResult(step Step) error {
	if step.Progress != 100 {
		return eris.Errorf("advisor: result progress %d, must be exactly 100", step.Progress)
	}
	for _, a := range step.Result.Allocations {
		if math.IsNaN(a.Percentage) || math.IsInf(a.Percentage, 0) {
			return eris.New("advisor: allocation percentage must be finite")
		}
		if !v.catalog.Has(a.ProductID) {
			return eris.Errorf("advisor: allocation references unknown product %q", a.ProductID)
		}
	}
	if t := step.Result.InvestmentTiers; t != nil {
		if t.Low.Amount > t.Mid.Amount || t.Mid.Amount > t.High.Amount {
			return eris.New("advisor: investment tiers out of order")
		}
	}
	return nil
}
