package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zen-systems/opsgate/pkg/adapter"
)

// LLMStrategy classifies text with a model call. One uniform prompt is
// built from the vocabulary; per-label prompt strings do not exist.
type LLMStrategy struct {
	adapter adapter.Adapter
	model   string
}

// NewLLMStrategy creates an LLM-backed strategy.
func NewLLMStrategy(a adapter.Adapter, model string) *LLMStrategy {
	return &LLMStrategy{adapter: a, model: model}
}

// Source returns the strategy identifier.
func (s *LLMStrategy) Source() Source {
	return SourceLLM
}

// Classify asks the model to pick a label and extract parameters. The
// response must be JSON; markdown fences are tolerated. An invalid
// label, confidence, or payload is an error so the caller can fall back.
func (s *LLMStrategy) Classify(ctx context.Context, text string, vocab []Entry) (*Result, error) {
	if s.adapter == nil {
		return nil, fmt.Errorf("llm strategy has no adapter")
	}

	resp, err := s.adapter.Generate(ctx, s.model, buildClassifierPrompt(text, vocab))
	if err != nil {
		return nil, fmt.Errorf("classifier call: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return nil, fmt.Errorf("classifier returned empty response")
	}

	pick, err := parseClassifierResponse(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("classifier response invalid: %w", err)
	}

	if !validLabel(pick.Label, vocab) {
		return nil, fmt.Errorf("classifier label %q not in vocabulary", pick.Label)
	}
	if pick.Confidence < 0 || pick.Confidence > 1 {
		return nil, fmt.Errorf("classifier confidence %.2f out of range", pick.Confidence)
	}

	return &Result{
		Label:      pick.Label,
		Confidence: pick.Confidence,
		Reasoning:  pick.Reasoning,
		Params:     pick.Params,
		Source:     SourceLLM,
	}, nil
}

type classifierPick struct {
	Label      string            `json:"label"`
	Confidence float64           `json:"confidence"`
	Reasoning  string            `json:"reasoning"`
	Params     map[string]string `json:"params,omitempty"`
}

func parseClassifierResponse(content string) (*classifierPick, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var pick classifierPick
	if err := json.Unmarshal([]byte(content), &pick); err != nil {
		return nil, err
	}
	if pick.Label == "" {
		return nil, fmt.Errorf("missing label")
	}
	return &pick, nil
}

func validLabel(label string, vocab []Entry) bool {
	if label == LabelUnknown {
		return true
	}
	for _, entry := range vocab {
		if entry.Label == label {
			return true
		}
	}
	return false
}

func buildClassifierPrompt(text string, vocab []Entry) string {
	var sb strings.Builder
	sb.WriteString("You are an intent classifier for a developer CLI assistant. Choose the best label for the user input.\n")
	sb.WriteString("Return ONLY JSON: {\"label\":\"...\",\"confidence\":0-1,\"reasoning\":\"...\",\"params\":{\"name\":\"value\"}}.\n")
	sb.WriteString("Use label \"unknown\" with low confidence if nothing fits.\n\n")
	sb.WriteString("User input:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nLabels:\n")

	for _, entry := range vocab {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", entry.Label, entry.Description))
		if len(entry.Triggers) > 0 {
			sb.WriteString(fmt.Sprintf("  keywords: %s\n", strings.Join(entry.Triggers, ", ")))
		}
		for _, ex := range entry.Examples {
			sb.WriteString(fmt.Sprintf("  example: %q\n", ex))
		}
	}

	return sb.String()
}
