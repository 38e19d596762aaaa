// Package intent provides confidence-scored classification of free-form
// text against a label vocabulary, with an LLM-backed primary strategy
// and a deterministic pattern fallback.
package intent

import (
	"context"

	"github.com/zen-systems/opsgate/pkg/catalog"
)

// Source identifies which strategy produced a result.
type Source string

const (
	SourceLLM     Source = "llm"
	SourcePattern Source = "pattern"
)

// LabelUnknown is returned when no label can be determined.
const LabelUnknown = "unknown"

// Entry is one label in a classification vocabulary.
type Entry struct {
	Label       string
	Description string
	Triggers    []string
	Examples    []string
}

// Candidate captures a scored candidate label from the pattern strategy.
type Candidate struct {
	Label    string   `json:"label"`
	Score    int      `json:"score"`
	Triggers []string `json:"triggers,omitempty"`
}

// Result is a normalized classification outcome. Immutable once produced.
type Result struct {
	Label         string            `json:"label"`
	Confidence    float64           `json:"confidence"`
	Reasoning     string            `json:"reasoning,omitempty"`
	Params        map[string]string `json:"params,omitempty"`
	Source        Source            `json:"source"`
	Candidates    []Candidate       `json:"candidates,omitempty"`
	LowConfidence bool              `json:"low_confidence,omitempty"`

	// OtherReasoning retains the losing strategy's reasoning when a
	// fallback occurred, so nothing is discarded silently.
	OtherReasoning string `json:"other_reasoning,omitempty"`
}

// Strategy maps text to a labeled result with a confidence score.
type Strategy interface {
	Classify(ctx context.Context, text string, vocab []Entry) (*Result, error)
	Source() Source
}

// DomainVocab builds the top-level vocabulary from a catalog, in
// catalog order.
func DomainVocab(c *catalog.Catalog) []Entry {
	vocab := make([]Entry, 0, len(c.Domains))
	for _, d := range c.Domains {
		vocab = append(vocab, Entry{
			Label:       d.Name,
			Description: d.Description,
			Triggers:    d.Triggers,
			Examples:    d.Examples,
		})
	}
	return vocab
}

// OperationVocab builds a domain's sub-operation vocabulary.
func OperationVocab(d *catalog.Domain) []Entry {
	vocab := make([]Entry, 0, len(d.Operations))
	for _, op := range d.Operations {
		vocab = append(vocab, Entry{
			Label:       op.Name,
			Description: op.Description,
			Triggers:    op.Triggers,
		})
	}
	return vocab
}
