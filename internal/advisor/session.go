package advisor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// HistoryEntry records one completed step and the user's answer to it. The
// history is append-only: it is never truncated or reordered, and grows by
// exactly one entry per completed step.
type HistoryEntry struct {
	StepType StepType `json:"type"`
	Answer   any      `json:"answer"`
}

// State is the orchestrator lifecycle state.
type State int

const (
	StateAwaitingFirstStep State = iota
	StateInProgress
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateAwaitingFirstStep:
		return "awaiting_first_step"
	case StateInProgress:
		return "in_progress"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Protocol errors. These indicate a presentation-layer integration bug and
// are fatal to the session; the caller should surface a restart prompt
// rather than attempt repair.
var (
	ErrSessionTerminated = eris.New("advisor: session already terminated")
	ErrStepPending       = eris.New("advisor: a step request is already in flight")
	ErrNotStarted        = eris.New("advisor: session not started")
	ErrAlreadyStarted    = eris.New("advisor: session already started")
)

// Step resolution outcomes, for logging and metrics.
const (
	OutcomeFixed             = "fixed"
	OutcomeProvider          = "provider"
	OutcomeFallbackCall      = "fallback_provider_unavailable"
	OutcomeFallbackSchema    = "fallback_schema_violation"
	OutcomeFallbackProgress  = "fallback_progress_regression"
	OutcomeFallbackPremature = "fallback_premature_result"
)

// Observer receives step resolution outcomes. Implementations must be safe
// for concurrent use across sessions.
type Observer interface {
	StepResolved(outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) StepResolved(string, time.Duration) {}

// Config holds orchestrator tuning. All fields have working defaults.
type Config struct {
	// MinTurns is the minimum history length before a result step is legal.
	MinTurns int
	// ProjectionYears is the horizon used for deterministic results.
	ProjectionYears int
	// DefaultTargetWealth is assumed when the galaxy step yields no goals.
	DefaultTargetWealth float64
	// ProviderTimeout bounds each provider call; expiry is treated exactly
	// like a validation failure.
	ProviderTimeout time.Duration
	// Observer, if set, receives step resolution outcomes.
	Observer Observer
}

// Defaults for zero-valued config fields.
const (
	DefaultMinTurns        = 10
	DefaultProjectionYears = 30
	DefaultTargetWealth    = 1000000
	DefaultProviderTimeout = 8 * time.Second
)

func (c Config) withDefaults() Config {
	if c.MinTurns <= 0 {
		c.MinTurns = DefaultMinTurns
	}
	if c.ProjectionYears <= 0 {
		c.ProjectionYears = DefaultProjectionYears
	}
	if c.DefaultTargetWealth <= 0 {
		c.DefaultTargetWealth = DefaultTargetWealth
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = DefaultProviderTimeout
	}
	if c.Observer == nil {
		c.Observer = nopObserver{}
	}
	return c
}

// Session owns one consultation: the append-only history, the current step,
// and the derived scalars the engine needs. A session is strictly
// sequential; a concurrent RecordAnswer while a step request is in flight is
// a protocol error, not a queueing mechanism.
type Session struct {
	id        string
	cfg       Config
	provider  Provider
	validator *Validator

	mu      sync.Mutex
	pending bool

	state        State
	history      []HistoryEntry
	current      *Step
	lastProgress int

	targetWealth float64
	monthly      float64
}

// NewSession builds a session in AwaitingFirstStep.
func NewSession(provider Provider, validator *Validator, cfg Config) *Session {
	return &Session{
		id:        uuid.NewString(),
		cfg:       cfg.withDefaults(),
		provider:  provider,
		validator: validator,
		state:     StateAwaitingFirstStep,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the step awaiting an answer, or nil before Start.
func (s *Session) Current() *Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// History returns a copy of the completed-step record.
func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// TargetWealth returns the goal-cost sum derived from the galaxy answer,
// or 0 before that answer arrives.
func (s *Session) TargetWealth() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetWealth
}

// MonthlyContribution returns the slider-derived monthly amount, or 0.
func (s *Session) MonthlyContribution() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monthly
}

// Start produces the fixed opening galaxy step. No provider call is made.
func (s *Session) Start(ctx context.Context) (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingFirstStep {
		return Step{}, ErrAlreadyStarted
	}
	step := GalaxyStep()
	s.current = &step
	s.lastProgress = step.Progress
	s.state = StateInProgress
	s.cfg.Observer.StepResolved(OutcomeFixed, 0)

	zap.L().Info("session started",
		zap.String("session_id", s.id),
		zap.String("step_type", string(step.Type)),
	)
	return step, nil
}

// RecordAnswer appends the answer for the current step and resolves the next
// one. History is committed only after a validated next step is obtained, so
// a cancelled in-flight request leaves the session unchanged.
func (s *Session) RecordAnswer(ctx context.Context, answer any) (Step, error) {
	s.mu.Lock()
	switch {
	case s.state == StateTerminal:
		s.mu.Unlock()
		return Step{}, ErrSessionTerminated
	case s.state == StateAwaitingFirstStep || s.current == nil:
		s.mu.Unlock()
		return Step{}, ErrNotStarted
	case s.pending:
		s.mu.Unlock()
		return Step{}, ErrStepPending
	}
	s.pending = true
	answered := *s.current
	candidate := make([]HistoryEntry, len(s.history), len(s.history)+1)
	copy(candidate, s.history)
	candidate = append(candidate, HistoryEntry{StepType: answered.Type, Answer: answer})
	lastProgress := s.lastProgress
	s.mu.Unlock()

	next, outcome := s.resolveNextStep(ctx, candidate, lastProgress)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false

	if ctx.Err() != nil {
		// Cancelled mid-flight: do not mutate history.
		return Step{}, eris.Wrap(ctx.Err(), "advisor: step request cancelled")
	}

	s.history = candidate
	s.extractDerivedState(answered, answer)
	s.current = &next
	if next.Progress > s.lastProgress {
		s.lastProgress = next.Progress
	}
	if next.Type == StepResult {
		s.state = StateTerminal
	}

	zap.L().Info("step resolved",
		zap.String("session_id", s.id),
		zap.String("step_type", string(next.Type)),
		zap.String("outcome", outcome),
		zap.Int("history_len", len(s.history)),
		zap.Int("progress", next.Progress),
	)
	return next, nil
}

// resolveNextStep picks the next step for the candidate history: fixed steps
// for the opening turns, then the provider guarded by timeout, validation,
// and the protocol invariants. Every failure path lands on the fallback
// question; nothing invalid ever escapes.
func (s *Session) resolveNextStep(ctx context.Context, history []HistoryEntry, lastProgress int) (Step, string) {
	n := len(history)

	if n == 1 {
		step := MonthlyContributionStep()
		s.cfg.Observer.StepResolved(OutcomeFixed, 0)
		return step, OutcomeFixed
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	started := time.Now()
	raw, err := s.provider.NextStep(callCtx, history)
	elapsed := time.Since(started)
	if err != nil {
		zap.L().Warn("provider unavailable, substituting fallback",
			zap.String("session_id", s.id),
			zap.Error(err),
		)
		return s.fallback(n, lastProgress, OutcomeFallbackCall, elapsed)
	}

	step, err := s.validator.Decode(raw)
	if err != nil {
		zap.L().Warn("provider step failed validation, substituting fallback",
			zap.String("session_id", s.id),
			zap.Error(err),
		)
		return s.fallback(n, lastProgress, OutcomeFallbackSchema, elapsed)
	}

	if step.Progress < lastProgress {
		zap.L().Warn("provider step regressed progress, substituting fallback",
			zap.String("session_id", s.id),
			zap.Int("got", step.Progress),
			zap.Int("floor", lastProgress),
		)
		return s.fallback(n, lastProgress, OutcomeFallbackProgress, elapsed)
	}

	if step.Type == StepResult && n < s.cfg.MinTurns {
		zap.L().Warn("provider returned premature result, substituting fallback",
			zap.String("session_id", s.id),
			zap.Int("history_len", n),
			zap.Int("min_turns", s.cfg.MinTurns),
		)
		return s.fallback(n, lastProgress, OutcomeFallbackPremature, elapsed)
	}

	s.cfg.Observer.StepResolved(OutcomeProvider, elapsed)
	return step, OutcomeProvider
}

// fallback builds the substitute question at a progress that never regresses.
func (s *Session) fallback(historyLen, lastProgress int, outcome string, elapsed time.Duration) (Step, string) {
	progress := ProgressFor(historyLen, s.cfg.MinTurns)
	if progress < lastProgress {
		progress = lastProgress
	}
	s.cfg.Observer.StepResolved(outcome, elapsed)
	return FallbackQuestion(progress), outcome
}

// extractDerivedState captures the orchestrator-level scalars from answers to
// the fixed opening steps: target wealth from the galaxy goals and the
// monthly contribution from the slider, clamped to the slider bounds.
func (s *Session) extractDerivedState(answered Step, answer any) {
	switch {
	case answered.Type == StepGalaxy:
		goals, _ := decodeGoals(answer)
		s.targetWealth = TargetWealthFromGoals(goals, s.cfg.DefaultTargetWealth)
	case answered.Type == StepQuestion &&
		answered.Question != nil &&
		answered.Question.InputType == InputSlider &&
		answered.Question.SliderConfig != nil:
		if v, ok := toNumber(answer); ok {
			sc := answered.Question.SliderConfig
			if v < sc.Min {
				v = sc.Min
			}
			if v > sc.Max {
				v = sc.Max
			}
			s.monthly = v
		}
	}
}
