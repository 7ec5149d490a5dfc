package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crescent-wealth/advisor-cli/internal/advisor"
	"github.com/crescent-wealth/advisor-cli/internal/engine"
	"github.com/crescent-wealth/advisor-cli/internal/format"
)

var (
	projectMonthly float64
	projectRisk    float64
	projectYears   int
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project wealth growth for a monthly contribution",
	Long:  "Computes the default allocation for a risk score and projects wealth over the horizon under all three growth scenarios.",
	RunE: func(cmd *cobra.Command, args []string) error {
		weights := engine.DefaultAllocation(projectRisk)
		portions := make([]engine.Portion, len(weights))
		for i, w := range weights {
			portions[i] = engine.Portion{Class: w.Class, Percent: float64(w.Percent)}
		}

		fmt.Printf("Allocation at risk %.0f:\n", engine.ClampRisk(projectRisk))
		for _, w := range weights {
			fmt.Printf("  %3d%%  %s\n", w.Percent, w.Class)
		}

		finals := make([]float64, len(engine.Scenarios))
		g, _ := errgroup.WithContext(cmd.Context())
		for i, scenario := range engine.Scenarios {
			g.Go(func() error {
				series, err := engine.ProjectWealth(projectMonthly, portions, projectYears, scenario)
				if err != nil {
					return err
				}
				finals[i] = engine.FinalValue(series)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("\nProjection of %s over %d years (blended rate %.1f%%):\n",
			format.EuroMonthly(projectMonthly), projectYears, engine.ExpectedAnnualRate(projectRisk)*100)
		realistic := 0.0
		for i, scenario := range engine.Scenarios {
			fmt.Printf("  %-12s %s\n", scenario, format.Euro(finals[i]))
			if scenario == engine.ScenarioRealistic {
				realistic = finals[i]
			}
		}

		fmt.Println("\nStress scenarios:")
		for _, s := range advisor.MarketScenarios(projectRisk) {
			fmt.Printf("  %-20s %+5.0f%%  → %s\n", s.Title, s.Impact*100, format.Euro(realistic*(1+s.Impact)))
		}
		return nil
	},
}

func init() {
	projectCmd.Flags().Float64Var(&projectMonthly, "monthly", 500, "monthly contribution in euros")
	projectCmd.Flags().Float64Var(&projectRisk, "risk", 50, "risk score 0-100")
	projectCmd.Flags().IntVar(&projectYears, "years", 30, "projection horizon in years")
	rootCmd.AddCommand(projectCmd)
}
