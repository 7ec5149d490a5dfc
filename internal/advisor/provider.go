package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/crescent-wealth/advisor-cli/internal/catalog"
	"github.com/crescent-wealth/advisor-cli/pkg/anthropic"
)

// Provider generates the next candidate step from the full history. The
// provider is stateless between calls and its output is untrusted: every
// returned payload must pass the Validator before use.
type Provider interface {
	NextStep(ctx context.Context, history []HistoryEntry) (json.RawMessage, error)
}

const systemPromptTemplate = `You are an expert wealth advisor guiding a discovery session. You construct a personalized portfolio from these products:
%s

Respond with ONE advisory step as a JSON object: {"type": ..., "progress": ..., "content": {...}} where type is one of "question", "postcard", "crisis", "result", "galaxy".

Instructions:
- Analyze the session history. The user has already placed life goals (the 'galaxy' step) and set a monthly contribution (a slider question).
- Ask RELEVANT follow-up questions based on the recorded goals.
- Target roughly %d steps total.
- DO NOT generate a 'result' step if history length is less than %d. Ask another question or run a crisis scenario instead.
- If history length is %d or more, you MUST generate a 'result'.
- Cover these topics if missing: risk attitude (via a 'postcard' step), emotional resilience (via a 'crisis' step, MANDATORY before any result).
- Never ask direct financial questions like "What is your risk tolerance?". Ask indirect, psychological, or lifestyle questions.
- Choice questions have either 2 or 4 options, never 3.
- Use 'slider' for money questions.
- Progress = round(100 * history length / %d). Never decrease progress. A 'result' step has progress exactly 100.
- In a 'crisis' step: find the user's monthly amount in the history (default 500), set impactData.amountLost to that amount times 36 with a euro sign, and impactData.timeLost to "3 Years of Savings".
- In the 'result': allocations reference product ids from the list above and percentages sum to 100. Provide investmentTiers where mid is the user's slider amount, low is 70%% of mid, high is 130%% of mid.

Return ONLY the JSON object, no prose.`

// ClaudeProvider backs the step protocol with the Anthropic messages API.
type ClaudeProvider struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	system      []anthropic.SystemBlock
}

// NewClaudeProvider builds a provider for the given catalog and model.
func NewClaudeProvider(client anthropic.Client, cat *catalog.Catalog, model string, maxTokens int64, temperature float64, minTurns int) *ClaudeProvider {
	type productBrief struct {
		ID   string             `json:"id"`
		Name string             `json:"name"`
		Type catalog.AssetClass `json:"type"`
		Risk catalog.RiskTier   `json:"risk"`
	}
	briefs := make([]productBrief, 0, len(cat.Products()))
	for _, p := range cat.Products() {
		briefs = append(briefs, productBrief{ID: p.ID, Name: p.Name, Type: p.AssetClass, Risk: p.RiskTier})
	}
	productsJSON, _ := json.Marshal(briefs)

	system := fmt.Sprintf(systemPromptTemplate, productsJSON, minTurns, minTurns, minTurns, minTurns)
	return &ClaudeProvider{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		system:      anthropic.BuildCachedSystemBlocks(system),
	}
}

// NextStep requests one candidate step. The model's text is fence-stripped
// and repaired before being returned; schema validation stays with the
// caller so an invalid-but-parseable step is still rejected downstream.
func (p *ClaudeProvider) NextStep(ctx context.Context, history []HistoryEntry) (json.RawMessage, error) {
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, eris.Wrap(err, "advisor: marshal history")
	}

	temp := p.temperature
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		System:      p.system,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: "Session history:\n" + string(historyJSON) + "\n\nGenerate the next advisory step."},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "advisor: provider call")
	}
	resp.Usage.LogCost(p.model, "advisory_step")

	raw, err := extractStepJSON(resp.Text())
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// extractStepJSON turns raw model text into a candidate step document:
// strip markdown fences, repair malformed JSON, and unwrap an optional
// {"step": {...}} envelope some models produce.
func extractStepJSON(text string) (json.RawMessage, error) {
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return nil, eris.New("advisor: empty provider response")
	}

	if !json.Valid([]byte(cleaned)) {
		repaired, err := jsonrepair.JSONRepair(cleaned)
		if err != nil {
			return nil, eris.Wrap(err, "advisor: repair provider JSON")
		}
		zap.L().Debug("provider JSON repaired", zap.Int("original_len", len(cleaned)))
		cleaned = repaired
	}

	var wrapper struct {
		Step json.RawMessage `json:"step"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapper); err == nil && len(wrapper.Step) > 0 {
		return wrapper.Step, nil
	}
	return json.RawMessage(cleaned), nil
}

// cleanJSON strips markdown code fences and surrounding prose, leaving the
// outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
