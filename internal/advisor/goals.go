package advisor

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GoalCategory classifies a life goal.
type GoalCategory string

const (
	GoalTravel     GoalCategory = "Travel"
	GoalEducation  GoalCategory = "Education"
	GoalHouse      GoalCategory = "House"
	GoalRetirement GoalCategory = "Retirement"
	GoalBusiness   GoalCategory = "Business"
	GoalOther      GoalCategory = "Other"
)

// LifeGoal is one declared life goal. The sum of goal costs defines the
// session's target wealth.
type LifeGoal struct {
	ID       string       `json:"id"`
	Category GoalCategory `json:"category"`
	Cost     float64      `json:"cost"`
	Year     int          `json:"year"`
}

// dreamRule maps dream-text keywords to an inferred goal.
type dreamRule struct {
	keywords  []string
	category  GoalCategory
	cost      float64
	yearsFrom int
}

var dreamRules = []dreamRule{
	{[]string{"house", "home", "villa", "apartment"}, GoalHouse, 500000, 10},
	{[]string{"travel", "trip", "tour", "hajj", "umrah", "mecca"}, GoalTravel, 15000, 5},
	{[]string{"retire", "retirement", "stop working"}, GoalRetirement, 800000, 25},
	{[]string{"school", "education", "university", "college"}, GoalEducation, 60000, 15},
	{[]string{"business", "company", "startup"}, GoalBusiness, 100000, 8},
}

// GoalsFromDream infers life goals from free-form dream text by keyword
// matching. A sufficiently long text that matches nothing falls back to a
// general wealth-building retirement goal.
func GoalsFromDream(dreamText string, now time.Time) []LifeGoal {
	lower := strings.ToLower(dreamText)
	currentYear := now.Year()

	var goals []LifeGoal
	for _, rule := range dreamRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				goals = append(goals, LifeGoal{
					ID:       uuid.NewString(),
					Category: rule.category,
					Cost:     rule.cost,
					Year:     currentYear + rule.yearsFrom,
				})
				break
			}
		}
	}

	if len(goals) == 0 && len(strings.TrimSpace(dreamText)) > 10 {
		goals = append(goals, LifeGoal{
			ID:       uuid.NewString(),
			Category: GoalRetirement,
			Cost:     1000000,
			Year:     currentYear + 20,
		})
	}
	return goals
}

// FollowUpQuestion picks a deepening question for the given dream text.
func FollowUpQuestion(dreamText string) string {
	lower := strings.ToLower(dreamText)
	switch {
	case containsAny(lower, "travel", "trip", "hajj", "umrah"):
		return "Where is the first place you want to visit?"
	case strings.Contains(lower, "house"):
		return "Do you have a specific location in mind for this property?"
	case strings.Contains(lower, "retire"):
		return "What kind of lifestyle do you envision for your retirement?"
	}
	return "What is the most important emotion you want to feel when you achieve this?"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// MarketScenario is one narrative stress-test scenario with its wealth impact
// as a fraction (-0.2 means -20%).
type MarketScenario struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Impact      float64 `json:"impact"`
}

// MarketScenarios returns stress-test scenarios tailored to the risk score:
// conservative profiles see how their allocation shields them, growth
// profiles see both the drawdowns and the safe-haven upside.
func MarketScenarios(riskScore float64) []MarketScenario {
	if riskScore < 40 {
		return []MarketScenario{
			{ID: "inflation", Title: "High Inflation", Description: "Inflation rises to 8%. Your gold holdings protect your purchasing power.", Impact: 0.05},
			{ID: "market-correction", Title: "Market Dip", Description: "Global markets drop 10%. Your conservative allocation minimizes losses.", Impact: -0.03},
			{ID: "recession", Title: "Global Recession", Description: "Economic slowdown. Your capital preservation strategy keeps you safe.", Impact: -0.05},
		}
	}
	return []MarketScenario{
		{ID: "inflation", Title: "High Inflation (8%)", Description: "Global supply chains disrupt, pushing inflation up. Cash loses value rapidly.", Impact: -0.15},
		{ID: "market-correction", Title: "Market Correction", Description: "A temporary 20% dip in global equities due to geopolitical tension.", Impact: -0.2},
		{ID: "gold-rally", Title: "Gold Bull Run", Description: "Economic uncertainty drives investors to safe havens. Gold hits record highs.", Impact: 0.25},
	}
}

// TargetWealthFromGoals sums goal costs; an empty set falls back to the
// configured default so the engine always has a benchmark.
func TargetWealthFromGoals(goals []LifeGoal, defaultTarget float64) float64 {
	if len(goals) == 0 {
		return defaultTarget
	}
	var sum float64
	for _, g := range goals {
		sum += g.Cost
	}
	return sum
}
