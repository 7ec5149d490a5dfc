package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crescent-wealth/advisor-cli/internal/catalog"
	"github.com/crescent-wealth/advisor-cli/internal/format"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the investable product catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load()
		if err != nil {
			return err
		}

		for _, p := range cat.Products() {
			fmt.Printf("%s (%s)\n", p.Name, p.ID)
			fmt.Printf("  class: %-10s risk: %-7s min: %-12s return: %s\n",
				p.AssetClass, p.RiskTier, format.Euro(p.MinInvestment), p.ExpectedReturn)
			fmt.Printf("  %s\n\n", p.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
