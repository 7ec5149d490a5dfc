package advisor

import (
	"context"
	"encoding/json"

	"github.com/crescent-wealth/advisor-cli/internal/resilience"
)

// GuardedProvider wraps a Provider with a circuit breaker so a struggling
// model backend fails fast instead of stalling every session on timeouts.
// A rejected call surfaces as a provider error and lands on the fallback
// step like any other failure.
type GuardedProvider struct {
	inner   Provider
	breaker *resilience.CircuitBreaker
}

// NewGuardedProvider wraps the provider with the given breaker.
func NewGuardedProvider(inner Provider, breaker *resilience.CircuitBreaker) *GuardedProvider {
	return &GuardedProvider{inner: inner, breaker: breaker}
}

// NextStep implements Provider.
func (g *GuardedProvider) NextStep(ctx context.Context, history []HistoryEntry) (json.RawMessage, error) {
	return resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) (json.RawMessage, error) {
		return g.inner.NextStep(ctx, history)
	})
}
