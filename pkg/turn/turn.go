// Package turn exposes the three entry points of the dispatch core:
// route-and-execute for free text, explicit execution for literal
// commands, and read-only catalog introspection.
package turn

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/zen-systems/opsgate/pkg/agent"
	"github.com/zen-systems/opsgate/pkg/catalog"
	"github.com/zen-systems/opsgate/pkg/dispatch"
	"github.com/zen-systems/opsgate/pkg/invoke"
	"github.com/zen-systems/opsgate/pkg/router"
	"github.com/zen-systems/opsgate/pkg/workflow"
)

// stepSplitRe separates multi-step requests: "trigger a build, then
// show the status" runs as one ordered workflow.
var stepSplitRe = regexp.MustCompile(`(?i)(?:;|,?\s+and\s+then\b|,?\s+then\b)\s+`)

// TurnResult reports one processed conversation turn.
type TurnResult struct {
	Domain        string
	Operation     string
	Confidence    float64
	LowConfidence bool

	// Clarification is set instead of a workflow when a targeted
	// follow-up is needed.
	Clarification *dispatch.Clarification

	// Workflow is the terminal workflow when execution occurred.
	Workflow *workflow.Workflow
}

// Core wires the router, engine and registry behind the public entry
// points. One turn is processed end-to-end before the next is accepted.
type Core struct {
	mu       sync.Mutex
	router   *router.Router
	engine   *workflow.Engine
	registry *invoke.Registry
}

// New builds a core. The registry must already be validated against
// the catalog (see invoke.Registry.Validate).
func New(r *router.Router, e *workflow.Engine, registry *invoke.Registry) *Core {
	return &Core{router: r, engine: e, registry: registry}
}

// RouteAndExecute processes one line of free text: classification,
// resolution, and workflow execution. Turns are strictly serialized.
func (c *Core) RouteAndExecute(ctx context.Context, text string) (*TurnResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	segments := splitSegments(text)
	decisions := make([]*dispatch.Decision, 0, len(segments))
	for _, segment := range segments {
		decision, clarification, err := c.router.Route(ctx, segment)
		if err != nil {
			return nil, err
		}
		if clarification != nil {
			// Nothing executes until every segment resolves.
			return &TurnResult{
				Domain:        clarification.Domain,
				Operation:     clarification.Operation,
				Clarification: clarification,
			}, nil
		}
		decisions = append(decisions, decision)
	}

	w, err := c.engine.Execute(ctx, decisions, workflow.PolicyAbortAndCompensate)
	if err != nil {
		return nil, err
	}

	first := decisions[0]
	return &TurnResult{
		Domain:        first.Domain,
		Operation:     first.Operation,
		Confidence:    first.Confidence,
		LowConfidence: first.LowConfidence,
		Workflow:      w,
	}, nil
}

// ExecuteExplicit bypasses classification for a literal command. The
// parameters are still validated against the operation schema.
func (c *Core) ExecuteExplicit(ctx context.Context, domain, operation string, params map[string]string) (*workflow.Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	decision, err := c.buildExplicit(domain, operation, params)
	if err != nil {
		return nil, err
	}

	w, err := c.engine.Execute(ctx, []*dispatch.Decision{decision}, workflow.PolicyAbortAndCompensate)
	if err != nil {
		return nil, err
	}
	return w.Steps[0], nil
}

func (c *Core) buildExplicit(domain, operation string, params map[string]string) (*dispatch.Decision, error) {
	d, ok := c.router.Catalog().Domain(domain)
	if !ok {
		return nil, fmt.Errorf("unknown domain %q", domain)
	}
	op, ok := d.Operation(operation)
	if !ok {
		return nil, fmt.Errorf("unknown operation %s/%s", domain, operation)
	}

	normalized := make(map[string]string, len(params))
	for name, value := range params {
		p, declared := op.Param(name)
		if !declared {
			return nil, fmt.Errorf("%s/%s does not declare parameter %q", domain, operation, name)
		}
		v, valid := agent.NormalizeValue(p, value)
		if !valid {
			return nil, fmt.Errorf("invalid value %q for %s/%s parameter %q", value, domain, operation, name)
		}
		normalized[name] = v
	}
	normalized = op.ApplyDefaults(normalized)
	if missing := op.MissingRequired(normalized); len(missing) > 0 {
		return nil, fmt.Errorf("%s/%s missing required parameters: %v", domain, operation, missing)
	}

	return &dispatch.Decision{
		Domain:     domain,
		Operation:  operation,
		Params:     normalized,
		Confidence: 1.0,
		Origin: []dispatch.Origin{
			{Stage: "domain", Label: domain, Source: "explicit", Confidence: 1.0},
			{Stage: "operation", Label: operation, Source: "explicit", Confidence: 1.0},
		},
	}, nil
}

// DomainCatalog returns the catalog domains for help and autocomplete.
// Idempotent absent a registry change.
func (c *Core) DomainCatalog() []catalog.Domain {
	domains := c.router.Catalog().Domains
	out := make([]catalog.Domain, len(domains))
	copy(out, domains)
	return out
}

func splitSegments(text string) []string {
	parts := stepSplitRe.Split(text, -1)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimRight(strings.TrimSpace(p), "."); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	if len(segments) == 0 {
		segments = append(segments, strings.TrimSpace(text))
	}
	return segments
}
