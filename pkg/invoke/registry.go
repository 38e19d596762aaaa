// Package invoke adapts dispatch decisions onto the uniform handler
// contract registered by external collaborators.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/zen-systems/opsgate/pkg/catalog"
	"github.com/zen-systems/opsgate/pkg/dispatch"
)

// Handler is the uniform contract collaborators register per
// (domain, operation).
type Handler func(ctx context.Context, params map[string]string) (any, error)

// Compensation reverses the effect of a previously succeeded
// invocation. It receives the decision and the result it produced.
type Compensation func(ctx context.Context, decision *dispatch.Decision, result any) error

type key struct {
	domain    string
	operation string
}

// Registry holds registered handlers and compensations.
type Registry struct {
	handlers      map[key]Handler
	compensations map[key]Compensation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers:      make(map[key]Handler),
		compensations: make(map[key]Compensation),
	}
}

// Register binds a handler to a (domain, operation) pair. The last
// registration wins.
func (r *Registry) Register(domain, operation string, h Handler) {
	r.handlers[key{domain, operation}] = h
}

// RegisterCompensation binds a compensation to a (domain, operation)
// pair. Operations without one are treated as non-compensable.
func (r *Registry) RegisterCompensation(domain, operation string, c Compensation) {
	r.compensations[key{domain, operation}] = c
}

// Handler returns the handler for a pair.
func (r *Registry) Handler(domain, operation string) (Handler, bool) {
	h, ok := r.handlers[key{domain, operation}]
	return h, ok
}

// Compensation returns the compensation for a pair, if any.
func (r *Registry) Compensation(domain, operation string) (Compensation, bool) {
	c, ok := r.compensations[key{domain, operation}]
	return c, ok
}

// Validate checks at startup that every catalog operation has a
// handler. Unregistered pairs are configuration errors, not
// dispatch-time errors.
func (r *Registry) Validate(c *catalog.Catalog) error {
	var missing []string
	for _, d := range c.Domains {
		for _, op := range d.Operations {
			if _, ok := r.handlers[key{d.Name, op.Name}]; !ok {
				missing = append(missing, d.Name+"/"+op.Name)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("no handler registered for: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Invoker calls registered handlers for decisions, normalizing errors
// into the collaborator taxonomy.
type Invoker struct {
	registry *Registry
}

// NewInvoker creates an invoker over a registry.
func NewInvoker(registry *Registry) *Invoker {
	return &Invoker{registry: registry}
}

// Registry returns the underlying registry.
func (i *Invoker) Registry() *Registry {
	return i.registry
}

// Invoke calls the handler registered for the decision. Errors come
// back as CollaboratorError with the originating decision attached;
// untyped handler errors are classified KindInternal.
func (i *Invoker) Invoke(ctx context.Context, decision *dispatch.Decision) (any, error) {
	h, ok := i.registry.Handler(decision.Domain, decision.Operation)
	if !ok {
		return nil, &CollaboratorError{
			Kind:     KindValidation,
			Err:      fmt.Errorf("no handler registered for %s/%s", decision.Domain, decision.Operation),
			Decision: decision,
		}
	}

	result, err := h(ctx, decision.Params)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return nil, &CollaboratorError{Kind: ce.Kind, Err: ce.Err, Decision: decision}
	}
	return nil, &CollaboratorError{Kind: KindInternal, Err: err, Decision: decision}
}
