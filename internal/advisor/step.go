// Package advisor implements the advisory step protocol: the typed step
// union, validation of untrusted candidate steps, the per-session
// orchestrator, and the step providers that generate each next turn.
package advisor

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// StepType tags one variant of the advisory step union.
type StepType string

const (
	StepQuestion StepType = "question"
	StepPostcard StepType = "postcard"
	StepCrisis   StepType = "crisis"
	StepResult   StepType = "result"
	StepGalaxy   StepType = "galaxy"
)

// StepTypes lists every legal step variant tag.
var StepTypes = []StepType{StepQuestion, StepPostcard, StepCrisis, StepResult, StepGalaxy}

// InputType selects how a question step collects its answer.
type InputType string

const (
	InputText   InputType = "text"
	InputChoice InputType = "choice"
	InputSlider InputType = "slider"
)

// Option is one selectable answer of a choice question.
type Option struct {
	Label string `json:"label" validate:"required"`
	Value string `json:"value" validate:"required"`
	Icon  string `json:"icon,omitempty"`
}

// SliderConfig configures a slider question.
type SliderConfig struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max" validate:"gtfield=Min"`
	Step  float64 `json:"step" validate:"gt=0"`
	Unit  string  `json:"unit,omitempty"`
	Label string  `json:"label,omitempty"`
}

// QuestionContent is the payload of a question step.
type QuestionContent struct {
	Question     string        `json:"question" validate:"required"`
	Subtext      string        `json:"subtext,omitempty"`
	InputType    InputType     `json:"inputType" validate:"required,oneof=text choice slider"`
	Options      []Option      `json:"options,omitempty" validate:"omitempty,min=1,dive"`
	SliderConfig *SliderConfig `json:"sliderConfig,omitempty"`
}

// ScenarioCard is one of the two futures shown on a postcard step.
type ScenarioCard struct {
	ID          string `json:"id" validate:"required,oneof=safe risky"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	ImagePrompt string `json:"imagePrompt" validate:"required"`
}

// PostcardContent is the payload of a postcard step: a safe and a risky
// future the user chooses between.
type PostcardContent struct {
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description" validate:"required"`
	ScenarioA   ScenarioCard `json:"scenarioA" validate:"required"`
	ScenarioB   ScenarioCard `json:"scenarioB" validate:"required"`
}

// ImpactData quantifies the simulated loss of a crisis step.
type ImpactData struct {
	AmountLost string `json:"amountLost" validate:"required"`
	TimeLost   string `json:"timeLost" validate:"required"`
}

// Reaction is one way the user may respond to a crisis step.
type Reaction struct {
	ID          string `json:"id" validate:"required"`
	Label       string `json:"label" validate:"required"`
	Description string `json:"description" validate:"required"`
	Icon        string `json:"icon" validate:"required"`
}

// CrisisContent is the payload of a crisis step: a simulated market shock
// testing emotional resilience.
type CrisisContent struct {
	Headline   string      `json:"headline" validate:"required"`
	NewsBody   string      `json:"newsBody" validate:"required"`
	ImpactData *ImpactData `json:"impactData,omitempty"`
	Reactions  []Reaction  `json:"reactions" validate:"required,min=1,dive"`
}

// AllocationLine assigns a percentage of the contribution to one catalog
// product.
type AllocationLine struct {
	ProductID  string  `json:"productId" validate:"required"`
	Percentage float64 `json:"percentage" validate:"min=0,max=100"`
	Reasoning  string  `json:"reasoning"`
}

// TierAmount is one suggested monthly contribution level.
type TierAmount struct {
	Amount float64 `json:"amount" validate:"min=0"`
	Label  string  `json:"label" validate:"required"`
}

// InvestmentTiers holds the three suggested contribution levels.
type InvestmentTiers struct {
	Low  TierAmount `json:"low"`
	Mid  TierAmount `json:"mid"`
	High TierAmount `json:"high"`
}

// ResultContent is the payload of the terminal result step.
type ResultContent struct {
	Summary          string           `json:"summary" validate:"required"`
	Allocations      []AllocationLine `json:"allocations" validate:"required,min=1,dive"`
	ProjectedOutcome string           `json:"projectedOutcome" validate:"required"`
	InvestmentTiers  *InvestmentTiers `json:"investmentTiers,omitempty"`
}

// GalaxyContent is the payload of the life-goals galaxy step.
type GalaxyContent struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Step is one unit of the guided consultation. Exactly one variant pointer is
// non-nil, matching Type. The zero value is not a valid step.
type Step struct {
	Type     StepType
	Progress int

	Question *QuestionContent
	Postcard *PostcardContent
	Crisis   *CrisisContent
	Result   *ResultContent
	Galaxy   *GalaxyContent
}

// Content returns the active variant payload. Errors on a tag/payload
// mismatch so an unknown or half-built step can never reach rendering.
func (s Step) Content() (any, error) {
	switch s.Type {
	case StepQuestion:
		if s.Question != nil {
			return s.Question, nil
		}
	case StepPostcard:
		if s.Postcard != nil {
			return s.Postcard, nil
		}
	case StepCrisis:
		if s.Crisis != nil {
			return s.Crisis, nil
		}
	case StepResult:
		if s.Result != nil {
			return s.Result, nil
		}
	case StepGalaxy:
		if s.Galaxy != nil {
			return s.Galaxy, nil
		}
	default:
		return nil, eris.Errorf("advisor: unknown step type %q", s.Type)
	}
	return nil, eris.Errorf("advisor: step type %q has no content", s.Type)
}

// stepEnvelope is the wire shape of a step. Progress is decoded as float64 so
// non-integer values can be rejected instead of truncated.
type stepEnvelope struct {
	Type     StepType        `json:"type"`
	Progress float64         `json:"progress"`
	Content  json.RawMessage `json:"content"`
}

// MarshalJSON renders the step in its wire shape {type, progress, content}.
func (s Step) MarshalJSON() ([]byte, error) {
	content, err := s.Content()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, eris.Wrap(err, "advisor: marshal step content")
	}
	return json.Marshal(stepEnvelope{
		Type:     s.Type,
		Progress: float64(s.Progress),
		Content:  raw,
	})
}

// UnmarshalJSON decodes the wire shape, discriminating on the type tag. The
// result is structurally typed but NOT yet validated; untrusted steps must go
// through Validator.Decode.
func (s *Step) UnmarshalJSON(data []byte) error {
	var env stepEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return eris.Wrap(err, "advisor: decode step envelope")
	}
	if env.Progress != float64(int(env.Progress)) {
		return eris.Errorf("advisor: progress %v is not an integer", env.Progress)
	}
	if len(env.Content) == 0 {
		return eris.Errorf("advisor: step %q has no content", env.Type)
	}

	decoded := Step{Type: env.Type, Progress: int(env.Progress)}
	var err error
	switch env.Type {
	case StepQuestion:
		decoded.Question = &QuestionContent{}
		err = json.Unmarshal(env.Content, decoded.Question)
	case StepPostcard:
		decoded.Postcard = &PostcardContent{}
		err = json.Unmarshal(env.Content, decoded.Postcard)
	case StepCrisis:
		decoded.Crisis = &CrisisContent{}
		err = json.Unmarshal(env.Content, decoded.Crisis)
	case StepResult:
		decoded.Result = &ResultContent{}
		err = json.Unmarshal(env.Content, decoded.Result)
	case StepGalaxy:
		decoded.Galaxy = &GalaxyContent{}
		err = json.Unmarshal(env.Content, decoded.Galaxy)
	default:
		return eris.Errorf("advisor: unknown step type %q", env.Type)
	}
	if err != nil {
		return eris.Wrapf(err, "advisor: decode %s content", env.Type)
	}

	*s = decoded
	return nil
}
