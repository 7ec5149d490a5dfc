package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crescent-wealth/advisor-cli/internal/advisor"
	"github.com/crescent-wealth/advisor-cli/internal/catalog"
	"github.com/crescent-wealth/advisor-cli/internal/config"
	"github.com/crescent-wealth/advisor-cli/internal/resilience"
	"github.com/crescent-wealth/advisor-cli/pkg/anthropic"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Guided financial consultation engine",
	Long:  "Runs the multi-step advisory wizard: life-goal capture, risk discovery, crisis stress test, and a validated portfolio recommendation, backed by Claude or a deterministic engine.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// sessionConfig maps the loaded config onto orchestrator tuning.
func sessionConfig(obs advisor.Observer) advisor.Config {
	return advisor.Config{
		MinTurns:            cfg.Advisor.MinTurns,
		ProjectionYears:     cfg.Advisor.ProjectionYears,
		DefaultTargetWealth: cfg.Advisor.DefaultTargetWealth,
		ProviderTimeout:     time.Duration(cfg.Advisor.ProviderTimeoutSecs) * time.Second,
		Observer:            obs,
	}
}

// buildProvider picks the step provider: Claude behind a circuit breaker
// when a key is configured, otherwise the deterministic engine-backed one.
func buildProvider(cat *catalog.Catalog) advisor.Provider {
	if cfg.Anthropic.Key == "" {
		zap.L().Info("no anthropic key configured, using deterministic provider")
		return advisor.NewStaticProvider(cat,
			cfg.Advisor.MinTurns,
			cfg.Advisor.ProjectionYears,
			cfg.Advisor.DefaultTargetWealth,
		)
	}

	client := anthropic.NewClient(cfg.Anthropic.Key)
	claude := advisor.NewClaudeProvider(client, cat,
		cfg.Anthropic.Model,
		cfg.Anthropic.MaxTokens,
		cfg.Anthropic.Temperature,
		cfg.Advisor.MinTurns,
	)
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: cfg.Advisor.BreakerFailureThreshold,
		ResetTimeout:     time.Duration(cfg.Advisor.BreakerResetSecs) * time.Second,
		OnStateChange: func(from, to resilience.CircuitState) {
			zap.L().Warn("provider circuit state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return advisor.NewGuardedProvider(claude, breaker)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
