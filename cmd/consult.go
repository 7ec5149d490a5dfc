package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crescent-wealth/advisor-cli/internal/advisor"
	"github.com/crescent-wealth/advisor-cli/internal/catalog"
	"github.com/crescent-wealth/advisor-cli/internal/format"
)

var consultCmd = &cobra.Command{
	Use:   "consult",
	Short: "Run an interactive consultation in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load()
		if err != nil {
			return err
		}

		session := advisor.NewSession(buildProvider(cat), advisor.NewValidator(cat), sessionConfig(nil))
		step, err := session.Start(cmd.Context())
		if err != nil {
			return err
		}

		reader := bufio.NewReader(os.Stdin)
		for {
			answer, done, err := renderStep(cat, step, reader)
			if err != nil {
				return err
			}
			if done {
				return nil
			}

			step, err = session.RecordAnswer(cmd.Context(), answer)
			if err != nil {
				return err
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(consultCmd)
}

// renderStep prints one step and collects the answer. The switch is
// exhaustive over every step variant; an unknown variant is a bug, not a
// case to skip.
func renderStep(cat *catalog.Catalog, step advisor.Step, reader *bufio.Reader) (any, bool, error) {
	fmt.Printf("\n[%d%%]\n", step.Progress)

	switch step.Type {
	case advisor.StepGalaxy:
		return askGalaxy(step, reader), false, nil
	case advisor.StepQuestion:
		return askQuestion(step, reader), false, nil
	case advisor.StepPostcard:
		return askPostcard(step, reader), false, nil
	case advisor.StepCrisis:
		return askCrisis(step, reader), false, nil
	case advisor.StepResult:
		printResult(cat, step)
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("unhandled step type %q", step.Type)
	}
}

func askGalaxy(step advisor.Step, reader *bufio.Reader) any {
	fmt.Println(step.Galaxy.Title)
	if step.Galaxy.Description != "" {
		fmt.Println(step.Galaxy.Description)
	}
	fmt.Print("\nDescribe your dreams in a sentence or two: ")
	text := readLine(reader)

	goals := advisor.GoalsFromDream(text, time.Now())
	if len(goals) == 0 {
		fmt.Println("No specific goals recognized; we'll plan for general wealth building.")
		return text
	}
	for _, g := range goals {
		fmt.Printf("  • %s — %s by %d\n", g.Category, format.Euro(g.Cost), g.Year)
	}
	fmt.Println(advisor.FollowUpQuestion(text))
	return goals
}

func askQuestion(step advisor.Step, reader *bufio.Reader) any {
	q := step.Question
	fmt.Println(q.Question)
	if q.Subtext != "" {
		fmt.Println(q.Subtext)
	}

	switch q.InputType {
	case advisor.InputChoice:
		for i, opt := range q.Options {
			fmt.Printf("  %d) %s %s\n", i+1, opt.Icon, opt.Label)
		}
		for {
			fmt.Print("> ")
			if idx, err := strconv.Atoi(readLine(reader)); err == nil && idx >= 1 && idx <= len(q.Options) {
				return q.Options[idx-1].Value
			}
			fmt.Println("Pick one of the numbered options.")
		}
	case advisor.InputSlider:
		sc := q.SliderConfig
		for {
			fmt.Printf("Enter an amount between %.0f and %.0f%s: ", sc.Min, sc.Max, sc.Unit)
			if v, err := strconv.ParseFloat(readLine(reader), 64); err == nil {
				return v
			}
			fmt.Println("That doesn't look like a number.")
		}
	default:
		fmt.Print("> ")
		return readLine(reader)
	}
}

func askPostcard(step advisor.Step, reader *bufio.Reader) any {
	p := step.Postcard
	fmt.Println(p.Title)
	fmt.Println(p.Description)
	fmt.Printf("  1) %s — %s\n", p.ScenarioA.Title, p.ScenarioA.Description)
	fmt.Printf("  2) %s — %s\n", p.ScenarioB.Title, p.ScenarioB.Description)
	for {
		fmt.Print("> ")
		switch readLine(reader) {
		case "1":
			return p.ScenarioA.ID
		case "2":
			return p.ScenarioB.ID
		}
		fmt.Println("Pick 1 or 2.")
	}
}

func askCrisis(step advisor.Step, reader *bufio.Reader) any {
	c := step.Crisis
	fmt.Printf("‼ %s\n%s\n", c.Headline, c.NewsBody)
	if c.ImpactData != nil {
		fmt.Printf("Impact: %s lost (%s)\n", c.ImpactData.AmountLost, c.ImpactData.TimeLost)
	}
	for i, re := range c.Reactions {
		fmt.Printf("  %d) %s %s — %s\n", i+1, re.Icon, re.Label, re.Description)
	}
	for {
		fmt.Print("> ")
		if idx, err := strconv.Atoi(readLine(reader)); err == nil && idx >= 1 && idx <= len(c.Reactions) {
			return c.Reactions[idx-1].ID
		}
		fmt.Println("Pick one of the numbered reactions.")
	}
}

func printResult(cat *catalog.Catalog, step advisor.Step) {
	res := step.Result
	fmt.Println("\n════ Your Recommendation ════")
	fmt.Println(res.Summary)
	fmt.Println()
	for _, a := range res.Allocations {
		name := a.ProductID
		if p, ok := cat.Lookup(a.ProductID); ok {
			name = p.Name
		}
		fmt.Printf("  %5.1f%%  %s", a.Percentage, name)
		if a.Reasoning != "" {
			fmt.Printf("  (%s)", a.Reasoning)
		}
		fmt.Println()
	}
	fmt.Println()
	fmt.Println(res.ProjectedOutcome)
	if t := res.InvestmentTiers; t != nil {
		fmt.Printf("\nContribution tiers: %s %s | %s %s | %s %s\n",
			t.Low.Label, format.EuroMonthly(t.Low.Amount),
			t.Mid.Label, format.EuroMonthly(t.Mid.Amount),
			t.High.Label, format.EuroMonthly(t.High.Amount),
		)
	}
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
