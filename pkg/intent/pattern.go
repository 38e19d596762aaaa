package intent

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// unknownConfidence is reported when no trigger matches at all.
const unknownConfidence = 0.1

// PatternStrategy classifies with a per-label trigger table. It always
// returns a result and never fails.
type PatternStrategy struct{}

// NewPatternStrategy creates a deterministic pattern strategy.
func NewPatternStrategy() *PatternStrategy {
	return &PatternStrategy{}
}

// Source returns the strategy identifier.
func (s *PatternStrategy) Source() Source {
	return SourcePattern
}

// Classify scores each vocabulary entry by matched triggers. An input
// that exactly equals a trigger scores 1.0; no match at all yields
// LabelUnknown with a default low confidence. Equal scores resolve to
// the earlier vocabulary entry.
func (s *PatternStrategy) Classify(_ context.Context, text string, vocab []Entry) (*Result, error) {
	textLower := strings.ToLower(strings.TrimSpace(text))

	var candidates []Candidate
	exact := ""
	for _, entry := range vocab {
		var matched []string
		for _, trig := range entry.Triggers {
			trigger := strings.ToLower(trig)
			if textLower == trigger && exact == "" {
				exact = entry.Label
			}
			if containsTrigger(textLower, trigger) {
				matched = append(matched, trig)
			}
		}
		if len(matched) == 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			Label:    entry.Label,
			Score:    len(matched),
			Triggers: matched,
		})
	}

	if exact != "" {
		return &Result{
			Label:      exact,
			Confidence: 1.0,
			Reasoning:  "input matches trigger exactly",
			Source:     SourcePattern,
			Candidates: candidates,
		}, nil
	}

	if len(candidates) == 0 {
		return &Result{
			Label:      LabelUnknown,
			Confidence: unknownConfidence,
			Reasoning:  "no triggers matched",
			Source:     SourcePattern,
		}, nil
	}

	// Stable sort keeps vocabulary order for equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}

	topScore := candidates[0].Score
	secondScore := 0
	if len(candidates) > 1 {
		secondScore = candidates[1].Score
	}

	margin := float64(topScore-secondScore) / float64(max(topScore, 1))
	strength := float64(min(topScore, 5)) / 5.0
	confidence := 0.75*margin + 0.25*strength
	if topScore >= 2 && secondScore == 0 {
		confidence = max(confidence, 0.9)
	}
	if topScore >= 3 {
		confidence = min(confidence+0.15, 1.0)
	}

	return &Result{
		Label:      candidates[0].Label,
		Confidence: confidence,
		Reasoning:  fmt.Sprintf("top_score=%d second_score=%d", topScore, secondScore),
		Source:     SourcePattern,
		Candidates: candidates,
	}, nil
}

// containsTrigger checks if the text contains the trigger phrase on
// word boundaries.
func containsTrigger(text, trigger string) bool {
	idx := strings.Index(text, trigger)
	if idx == -1 {
		return false
	}

	if idx > 0 && isWordChar(text[idx-1]) {
		return false
	}

	endIdx := idx + len(trigger)
	if endIdx < len(text) && isWordChar(text[endIdx]) {
		return false
	}

	return true
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}
