// Package agent resolves text already attributed to a domain into a
// concrete sub-operation with typed parameters. Resolution is pure:
// agents never call collaborators.
package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zen-systems/opsgate/pkg/catalog"
	"github.com/zen-systems/opsgate/pkg/dispatch"
	"github.com/zen-systems/opsgate/pkg/intent"
)

// Agent resolves free text within one domain.
type Agent interface {
	// Domain returns the domain this agent owns.
	Domain() string

	// Resolve classifies text against the domain's operation vocabulary
	// and extracts parameters. Exactly one of the decision or the
	// clarification is non-nil on success.
	Resolve(ctx context.Context, text string) (*dispatch.Decision, *dispatch.Clarification, error)
}

// ExtractFunc pulls domain-specific parameter values out of raw text
// for one operation. Returned values are raw; they are normalized and
// validated against the schema afterwards.
type ExtractFunc func(text string, op *catalog.Operation) map[string]string

// CatalogAgent is the generic agent implementation, driven entirely by
// the declarative catalog plus an optional extractor.
type CatalogAgent struct {
	domain   catalog.Domain
	detector *intent.Detector
	extract  ExtractFunc
}

// New creates an agent for the given domain. The detector runs the same
// two-tier classification as the router, against the smaller
// sub-operation vocabulary. extract may be nil.
func New(domain catalog.Domain, detector *intent.Detector, extract ExtractFunc) *CatalogAgent {
	return &CatalogAgent{domain: domain, detector: detector, extract: extract}
}

// Domain returns the domain name.
func (a *CatalogAgent) Domain() string {
	return a.domain.Name
}

// Resolve maps text to an operation and its parameters. A missing
// required parameter always yields a clarification naming the field,
// never a decision.
func (a *CatalogAgent) Resolve(ctx context.Context, text string) (*dispatch.Decision, *dispatch.Clarification, error) {
	result, err := a.detector.Classify(ctx, text, intent.OperationVocab(&a.domain))
	if err != nil {
		return nil, nil, err
	}

	if result.Label == intent.LabelUnknown || result.Confidence < a.detector.Thresholds().Low {
		return nil, &dispatch.Clarification{
			Domain: a.domain.Name,
			Prompt: fmt.Sprintf("could not tell which %s operation you meant; options: %s", a.domain.Name, strings.Join(a.operationNames(), ", ")),
		}, nil
	}

	op, ok := a.domain.Operation(result.Label)
	if !ok {
		return nil, nil, fmt.Errorf("agent %s: classified to unknown operation %q", a.domain.Name, result.Label)
	}

	values := make(map[string]string)
	for name, value := range result.Params {
		if _, declared := op.Param(name); declared {
			values[name] = value
		}
	}
	if a.extract != nil {
		// Deterministic extraction overrides model-extracted values.
		for name, value := range a.extract(text, op) {
			if _, declared := op.Param(name); declared {
				values[name] = value
			}
		}
	}

	normalized := make(map[string]string, len(values))
	for name, value := range values {
		p, _ := op.Param(name)
		if v, ok := NormalizeValue(p, value); ok {
			normalized[name] = v
		}
	}
	normalized = op.ApplyDefaults(normalized)

	if missing := op.MissingRequired(normalized); len(missing) > 0 {
		return nil, dispatch.NewMissingParams(a.domain.Name, op.Name, missing), nil
	}

	return &dispatch.Decision{
		Domain:        a.domain.Name,
		Operation:     op.Name,
		Params:        normalized,
		Confidence:    result.Confidence,
		LowConfidence: result.LowConfidence,
		Origin: []dispatch.Origin{
			{Stage: "operation", Label: op.Name, Source: string(result.Source), Confidence: result.Confidence},
		},
	}, nil, nil
}

func (a *CatalogAgent) operationNames() []string {
	names := make([]string, 0, len(a.domain.Operations))
	for _, op := range a.domain.Operations {
		names = append(names, op.Name)
	}
	return names
}

// NormalizeValue validates a raw value against its declared type and
// returns the canonical form. Invalid values are dropped so required
// ones surface as clarifications instead of bad dispatches.
func NormalizeValue(p *catalog.Param, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	switch p.Type {
	case catalog.ParamInt:
		if _, err := strconv.Atoi(raw); err != nil {
			return "", false
		}
		return raw, true
	case catalog.ParamDuration:
		w, ok := NormalizeWindow(raw)
		if !ok {
			return "", false
		}
		return w, true
	case catalog.ParamEnum:
		lower := strings.ToLower(raw)
		for _, v := range p.Values {
			if lower == v {
				return v, true
			}
		}
		return "", false
	default:
		return raw, true
	}
}
