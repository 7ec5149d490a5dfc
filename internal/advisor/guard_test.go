package advisor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescent-wealth/advisor-cli/internal/resilience"
)

func TestGuardedProvider_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &stubProvider{fn: func([]HistoryEntry) (json.RawMessage, error) {
		return nil, eris.New("api down")
	}}
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{FailureThreshold: 3})
	g := NewGuardedProvider(inner, breaker)

	for i := 0; i < 3; i++ {
		_, err := g.NextStep(context.Background(), nil)
		require.Error(t, err)
	}
	assert.Equal(t, 3, inner.calls)

	// Circuit is open now; the inner provider is no longer reached.
	_, err := g.NextStep(context.Background(), nil)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 3, inner.calls)
}

func TestGuardedProvider_PassesThroughOnSuccess(t *testing.T) {
	inner := &stubProvider{fn: func([]HistoryEntry) (json.RawMessage, error) {
		return mustJSONRaw(GalaxyStep())
	}}
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})
	g := NewGuardedProvider(inner, breaker)

	raw, err := g.NextStep(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))
	assert.Equal(t, resilience.CircuitClosed, breaker.State())
}

func mustJSONRaw(step Step) (json.RawMessage, error) {
	return json.Marshal(step)
}
