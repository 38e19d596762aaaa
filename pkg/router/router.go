// Package router owns the domain agent registry and top-level domain
// selection for one line of free-form text.
package router

import (
	"context"
	"fmt"
	"log"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/zen-systems/opsgate/pkg/agent"
	"github.com/zen-systems/opsgate/pkg/catalog"
	"github.com/zen-systems/opsgate/pkg/dispatch"
	"github.com/zen-systems/opsgate/pkg/intent"
)

const cacheSize = 256

// Router routes text to a domain agent and returns one normalized
// dispatch outcome.
type Router struct {
	catalog  *catalog.Catalog
	detector *intent.Detector
	agents   map[string]agent.Agent

	// legacyAgents classify with the pattern fallback only, so a slash
	// command never reaches the LLM strategy.
	legacyAgents map[string]agent.Agent
	legacy       map[string]string
	cache        *lru.Cache[string, *routeOutcome]
	debug        bool
}

// routeOutcome memoizes a resolved route. Decisions and clarifications
// are immutable, so sharing cached values is safe.
type routeOutcome struct {
	decision      *dispatch.Decision
	clarification *dispatch.Clarification
	userErr       *dispatch.UserError
}

// Option configures a Router.
type Option func(*Router)

// WithDebug enables debug logging.
func WithDebug(debug bool) Option {
	return func(r *Router) {
		r.debug = debug
	}
}

// WithLegacyPrefixes merges extra literal command prefixes into the
// built-in table. Keys must start with "/".
func WithLegacyPrefixes(prefixes map[string]string) Option {
	return func(r *Router) {
		for prefix, domain := range prefixes {
			r.legacy[prefix] = domain
		}
	}
}

// New creates a router over the catalog. The detector is shared by the
// router and all catalog-driven agents; extractors may be nil.
func New(c *catalog.Catalog, detector *intent.Detector, extractors map[string]agent.ExtractFunc, opts ...Option) (*Router, error) {
	if c == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cache, err := lru.New[string, *routeOutcome](cacheSize)
	if err != nil {
		return nil, err
	}

	r := &Router{
		catalog:      c,
		detector:     detector,
		agents:       make(map[string]agent.Agent, len(c.Domains)),
		legacyAgents: make(map[string]agent.Agent, len(c.Domains)),
		legacy:       make(map[string]string),
		cache:        cache,
	}
	patternOnly := detector.FallbackOnly()
	for _, d := range c.Domains {
		r.agents[d.Name] = agent.New(d, detector, extractors[d.Name])
		r.legacyAgents[d.Name] = agent.New(d, patternOnly, extractors[d.Name])
	}

	// Built-in prefixes apply only where the catalog carries the
	// domain; explicitly configured prefixes are validated strictly.
	for prefix, domain := range defaultLegacyPrefixes() {
		if _, ok := r.agents[domain]; ok {
			r.legacy[prefix] = domain
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	for prefix, domain := range r.legacy {
		if _, ok := r.agents[domain]; !ok {
			return nil, fmt.Errorf("legacy prefix %s targets unknown domain %q", prefix, domain)
		}
	}
	return r, nil
}

// defaultLegacyPrefixes maps the slash commands kept for backward
// compatibility onto catalog domains.
func defaultLegacyPrefixes() map[string]string {
	return map[string]string{
		"/scm":         "source-control",
		"/github":      "source-control",
		"/build":       "build-system",
		"/jenkins":     "build-system",
		"/issues":      "issue-tracker",
		"/jira":        "issue-tracker",
		"/graph":       "graph",
		"/neo4j":       "graph",
		"/monitor":     "monitoring",
		"/appdynamics": "monitoring",
	}
}

// Catalog returns the routing catalog.
func (r *Router) Catalog() *catalog.Catalog {
	return r.catalog
}

// Agent returns the agent registered for a domain.
func (r *Router) Agent(domain string) (agent.Agent, bool) {
	a, ok := r.agents[domain]
	return a, ok
}

// Route maps one line of text to a dispatch decision. Exactly one of
// the three outcomes is set: a decision, a clarification, or an error
// (UserError for empty input and no-match).
func (r *Router) Route(ctx context.Context, text string) (*dispatch.Decision, *dispatch.Clarification, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil, dispatch.NewEmptyInput()
	}

	// Literal legacy prefixes bypass classification entirely.
	if strings.HasPrefix(trimmed, "/") {
		return r.routeLegacy(ctx, trimmed)
	}

	key := strings.ToLower(trimmed)
	if cached, ok := r.cache.Get(key); ok {
		if r.debug {
			log.Printf("[router] cache hit for %q", key)
		}
		return cached.decision, cached.clarification, cached.err()
	}

	decision, clarification, err := r.route(ctx, trimmed)
	if outcome := cacheable(decision, clarification, err); outcome != nil {
		r.cache.Add(key, outcome)
	}
	return decision, clarification, err
}

func (r *Router) route(ctx context.Context, text string) (*dispatch.Decision, *dispatch.Clarification, error) {
	result, err := r.detector.Classify(ctx, text, intent.DomainVocab(r.catalog))
	if err != nil {
		return nil, nil, err
	}

	if result.Label == intent.LabelUnknown || result.Confidence < r.detector.Thresholds().Low {
		var candidates []string
		for _, c := range result.Candidates {
			candidates = append(candidates, c.Label)
		}
		return nil, nil, dispatch.NewNoMatch(candidates)
	}

	a, ok := r.agents[result.Label]
	if !ok {
		return nil, nil, fmt.Errorf("no agent registered for domain %q", result.Label)
	}
	if r.debug {
		log.Printf("[router] domain=%s confidence=%.2f source=%s", result.Label, result.Confidence, result.Source)
	}

	decision, clarification, err := a.Resolve(ctx, text)
	if err != nil {
		return nil, nil, err
	}
	if clarification != nil {
		// Propagates unchanged; no silent retries.
		return nil, clarification, nil
	}

	merged := *decision
	merged.Confidence = min(result.Confidence, decision.Confidence)
	merged.LowConfidence = decision.LowConfidence || result.LowConfidence
	merged.Origin = append([]dispatch.Origin{
		{Stage: "domain", Label: result.Label, Source: string(result.Source), Confidence: result.Confidence},
	}, decision.Origin...)
	return &merged, nil, nil
}

// routeLegacy resolves "/prefix rest" commands. The prefix selects the
// domain with an O(1) lookup; "rest" in the form "op key=value ..."
// dispatches without touching either classifier, anything else is
// resolved by the pattern-only agent. The LLM strategy never runs for
// a slash command.
func (r *Router) routeLegacy(ctx context.Context, text string) (*dispatch.Decision, *dispatch.Clarification, error) {
	prefix, rest, _ := strings.Cut(text, " ")
	domainName, ok := r.legacy[strings.ToLower(prefix)]
	if !ok {
		return nil, nil, &dispatch.UserError{
			Kind:    dispatch.ErrNoMatch,
			Message: fmt.Sprintf("unknown command %s", prefix),
		}
	}
	rest = strings.TrimSpace(rest)

	d, _ := r.catalog.Domain(domainName)
	if decision, ok := parseExplicit(d, rest); ok {
		return decision, nil, nil
	}
	if rest == "" {
		return nil, &dispatch.Clarification{
			Domain: domainName,
			Prompt: fmt.Sprintf("what would you like to do in %s?", domainName),
		}, nil
	}
	return r.legacyAgents[domainName].Resolve(ctx, rest)
}

// parseExplicit recognizes "operation key=value ..." literals.
func parseExplicit(d *catalog.Domain, rest string) (*dispatch.Decision, bool) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return nil, false
	}
	op, ok := d.Operation(fields[0])
	if !ok {
		return nil, false
	}
	params := make(map[string]string)
	for _, f := range fields[1:] {
		name, value, found := strings.Cut(f, "=")
		if !found {
			return nil, false
		}
		params[name] = value
	}
	params = op.ApplyDefaults(params)
	if len(op.MissingRequired(params)) > 0 {
		return nil, false
	}
	return &dispatch.Decision{
		Domain:     d.Name,
		Operation:  op.Name,
		Params:     params,
		Confidence: 1.0,
		Origin: []dispatch.Origin{
			{Stage: "domain", Label: d.Name, Source: "legacy", Confidence: 1.0},
			{Stage: "operation", Label: op.Name, Source: "legacy", Confidence: 1.0},
		},
	}, true
}

func (o *routeOutcome) err() error {
	if o.userErr != nil {
		return o.userErr
	}
	return nil
}

// cacheable wraps an outcome for memoization. Transient errors (agent
// or strategy failures) are never cached.
func cacheable(decision *dispatch.Decision, clarification *dispatch.Clarification, err error) *routeOutcome {
	if err != nil {
		if ue, ok := dispatch.IsUserError(err); ok {
			return &routeOutcome{userErr: ue}
		}
		return nil
	}
	return &routeOutcome{decision: decision, clarification: clarification}
}
