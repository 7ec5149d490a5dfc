package advisor

import (
	"encoding/json"
	"time"
)

// decodeGoals coerces a galaxy answer into life goals. The presentation layer
// may send a structured goal list, raw JSON, or free dream text (which goes
// through keyword inference). Returns false when nothing usable was sent.
func decodeGoals(answer any) ([]LifeGoal, bool) {
	switch v := answer.(type) {
	case []LifeGoal:
		return v, true
	case LifeGoal:
		return []LifeGoal{v}, true
	case json.RawMessage:
		return goalsFromJSON(v)
	case []byte:
		return goalsFromJSON(v)
	case string:
		goals := GoalsFromDream(v, time.Now())
		return goals, len(goals) > 0
	case []any:
		return goalsFromSlice(v)
	case map[string]any:
		if inner, ok := v["goals"]; ok {
			return decodeGoals(inner)
		}
	}
	return nil, false
}

func goalsFromJSON(raw []byte) ([]LifeGoal, bool) {
	var goals []LifeGoal
	if err := json.Unmarshal(raw, &goals); err == nil && len(goals) > 0 {
		return goals, true
	}
	var wrapper struct {
		Goals []LifeGoal `json:"goals"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Goals) > 0 {
		return wrapper.Goals, true
	}
	return nil, false
}

func goalsFromSlice(items []any) ([]LifeGoal, bool) {
	var goals []LifeGoal
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var g LifeGoal
		if id, ok := m["id"].(string); ok {
			g.ID = id
		}
		if cat, ok := m["category"].(string); ok {
			g.Category = GoalCategory(cat)
		}
		if cost, ok := toNumber(m["cost"]); ok {
			g.Cost = cost
		}
		if year, ok := toNumber(m["year"]); ok {
			g.Year = int(year)
		}
		if g.Cost > 0 {
			goals = append(goals, g)
		}
	}
	return goals, len(goals) > 0
}
