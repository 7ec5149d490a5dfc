package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Anthropic.Key)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, int64(2048), cfg.Anthropic.MaxTokens)

	assert.Equal(t, 10, cfg.Advisor.MinTurns)
	assert.Equal(t, 30, cfg.Advisor.ProjectionYears)
	assert.Equal(t, 1000000.0, cfg.Advisor.DefaultTargetWealth)
	assert.Equal(t, 8, cfg.Advisor.ProviderTimeoutSecs)
	assert.Equal(t, 3, cfg.Advisor.BreakerFailureThreshold)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 2.0, cfg.Server.RateLimitRPS)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ADVISOR_ADVISOR_MIN_TURNS", "6")
	t.Setenv("ADVISOR_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Advisor.MinTurns)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger_RejectsBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "chatty", Format: "json"})
	require.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
