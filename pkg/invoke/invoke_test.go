package invoke

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zen-systems/opsgate/pkg/catalog"
	"github.com/zen-systems/opsgate/pkg/dispatch"
)

func testDecision() *dispatch.Decision {
	return &dispatch.Decision{
		Domain:    "build-system",
		Operation: "status-query",
		Params:    map[string]string{"folder": "deploy-all"},
	}
}

func TestValidateReportsAllMissingHandlers(t *testing.T) {
	c := &catalog.Catalog{Domains: []catalog.Domain{
		{Name: "alpha", Operations: []catalog.Operation{{Name: "one"}, {Name: "two"}}},
		{Name: "beta", Operations: []catalog.Operation{{Name: "three"}}},
	}}

	r := NewRegistry()
	r.Register("alpha", "one", func(ctx context.Context, params map[string]string) (any, error) {
		return nil, nil
	})

	err := r.Validate(c)
	if err == nil {
		t.Fatalf("missing handlers should fail validation")
	}
	for _, pair := range []string{"alpha/two", "beta/three"} {
		if !strings.Contains(err.Error(), pair) {
			t.Fatalf("error should name %s: %v", pair, err)
		}
	}

	r.Register("alpha", "two", func(ctx context.Context, params map[string]string) (any, error) { return nil, nil })
	r.Register("beta", "three", func(ctx context.Context, params map[string]string) (any, error) { return nil, nil })
	if err := r.Validate(c); err != nil {
		t.Fatalf("fully registered catalog should validate: %v", err)
	}
}

func TestInvokeAttachesDecision(t *testing.T) {
	r := NewRegistry()
	r.Register("build-system", "status-query", func(ctx context.Context, params map[string]string) (any, error) {
		return nil, NewNotFound(errors.New("folder does not exist"))
	})

	_, err := NewInvoker(r).Invoke(context.Background(), testDecision())
	var ce *CollaboratorError
	if !errors.As(err, &ce) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
	if ce.Kind != KindNotFound {
		t.Fatalf("expected not-found, got %s", ce.Kind)
	}
	if ce.Decision == nil || ce.Decision.Operation != "status-query" {
		t.Fatalf("decision should be attached: %+v", ce.Decision)
	}
}

func TestInvokeWrapsUntypedErrors(t *testing.T) {
	r := NewRegistry()
	r.Register("build-system", "status-query", func(ctx context.Context, params map[string]string) (any, error) {
		return nil, errors.New("boom")
	})

	_, err := NewInvoker(r).Invoke(context.Background(), testDecision())
	if KindOf(err) != KindInternal {
		t.Fatalf("untyped handler error should classify internal, got %s", KindOf(err))
	}
}

func TestInvokePassesThroughCancellation(t *testing.T) {
	r := NewRegistry()
	r.Register("build-system", "status-query", func(ctx context.Context, params map[string]string) (any, error) {
		return nil, context.Canceled
	})

	_, err := NewInvoker(r).Invoke(context.Background(), testDecision())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancellation must pass through untouched, got %v", err)
	}
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		t.Fatalf("cancellation must not be reclassified: %v", err)
	}
}

func TestInvokeUnregisteredHandler(t *testing.T) {
	_, err := NewInvoker(NewRegistry()).Invoke(context.Background(), testDecision())
	if KindOf(err) != KindValidation {
		t.Fatalf("missing handler should classify validation, got %s", KindOf(err))
	}
}

func TestKindHelpers(t *testing.T) {
	if !IsUnauthorized(NewUnauthorized(errors.New("bad token"))) {
		t.Fatalf("IsUnauthorized should match")
	}
	if IsUnauthorized(errors.New("bad token")) {
		t.Fatalf("plain errors are not unauthorized")
	}
	if !Retryable(NewTransient(errors.New("503"))) || !Retryable(NewRateLimited(errors.New("429"))) {
		t.Fatalf("transient and rate-limited should be retryable")
	}
	if Retryable(NewValidation(errors.New("bad input"))) {
		t.Fatalf("validation errors are not retryable")
	}
}
