package turn

import (
	"context"
	"errors"
	"testing"

	"github.com/zen-systems/opsgate/pkg/agent"
	"github.com/zen-systems/opsgate/pkg/catalog"
	"github.com/zen-systems/opsgate/pkg/dispatch"
	"github.com/zen-systems/opsgate/pkg/intent"
	"github.com/zen-systems/opsgate/pkg/invoke"
	"github.com/zen-systems/opsgate/pkg/router"
	"github.com/zen-systems/opsgate/pkg/workflow"
)

type recorder struct {
	invoked     []string
	compensated []string
	failures    map[string]error
}

func newCore(t *testing.T) (*Core, *recorder) {
	t.Helper()
	rec := &recorder{failures: make(map[string]error)}

	registry := invoke.NewRegistry()
	cat := catalog.Default()
	for _, d := range cat.Domains {
		for _, op := range d.Operations {
			pair := d.Name + "/" + op.Name
			registry.Register(d.Name, op.Name, func(ctx context.Context, params map[string]string) (any, error) {
				rec.invoked = append(rec.invoked, pair)
				if err := rec.failures[pair]; err != nil {
					return nil, err
				}
				return pair + " ok", nil
			})
			registry.RegisterCompensation(d.Name, op.Name, func(ctx context.Context, dec *dispatch.Decision, result any) error {
				rec.compensated = append(rec.compensated, dec.Domain+"/"+dec.Operation)
				return nil
			})
		}
	}
	if err := registry.Validate(cat); err != nil {
		t.Fatalf("registry validation: %v", err)
	}

	detector := intent.NewDetector(nil, intent.NewPatternStrategy())
	rt, err := router.New(cat, detector, agent.Extractors())
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	engine := workflow.NewEngine(invoke.NewInvoker(registry), false)
	return New(rt, engine, registry), rec
}

func TestRouteAndExecuteSingleStep(t *testing.T) {
	core, rec := newCore(t)

	result, err := core.RouteAndExecute(context.Background(), "show failed jobs in deploy-all in the last 4 hours")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Clarification != nil {
		t.Fatalf("unexpected clarification: %+v", result.Clarification)
	}
	if result.Domain != "build-system" || result.Operation != "status-query" {
		t.Fatalf("unexpected result: %s/%s", result.Domain, result.Operation)
	}
	if result.LowConfidence {
		t.Fatalf("strong trigger match should not be low confidence (%.2f)", result.Confidence)
	}
	if result.Workflow == nil || result.Workflow.Status != workflow.StatusCompleted {
		t.Fatalf("workflow should complete: %+v", result.Workflow)
	}
	if len(rec.invoked) != 1 || rec.invoked[0] != "build-system/status-query" {
		t.Fatalf("unexpected invocations: %v", rec.invoked)
	}
}

func TestRouteAndExecuteMultiStep(t *testing.T) {
	core, rec := newCore(t)

	result, err := core.RouteAndExecute(context.Background(),
		"trigger job nightly in folder ops, then show failed builds in deploy-all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Clarification != nil {
		t.Fatalf("unexpected clarification: %+v", result.Clarification)
	}
	if len(result.Workflow.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(result.Workflow.Steps))
	}
	want := []string{"build-system/trigger-build", "build-system/status-query"}
	if len(rec.invoked) != 2 || rec.invoked[0] != want[0] || rec.invoked[1] != want[1] {
		t.Fatalf("expected ordered invocations %v, got %v", want, rec.invoked)
	}
	if result.Workflow.Status != workflow.StatusCompleted {
		t.Fatalf("workflow should complete: %s", result.Workflow.Status)
	}
}

func TestRouteAndExecuteClarificationRunsNothing(t *testing.T) {
	core, rec := newCore(t)

	result, err := core.RouteAndExecute(context.Background(),
		"show me failed builds, then trigger job nightly in folder ops")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Clarification == nil {
		t.Fatalf("missing folder should yield a clarification")
	}
	if len(rec.invoked) != 0 {
		t.Fatalf("no segment may execute while another needs clarification: %v", rec.invoked)
	}
	if result.Workflow != nil {
		t.Fatalf("no workflow should exist: %+v", result.Workflow)
	}
}

func TestRouteAndExecuteRollsBackOnFailure(t *testing.T) {
	core, rec := newCore(t)
	rec.failures["build-system/status-query"] = invoke.NewTransient(errors.New("jenkins 503"))

	result, err := core.RouteAndExecute(context.Background(),
		"trigger job nightly in folder ops, then show failed builds in deploy-all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Workflow.Status != workflow.StatusRolledBack {
		t.Fatalf("expected ROLLED_BACK, got %s", result.Workflow.Status)
	}
	if len(rec.compensated) != 1 || rec.compensated[0] != "build-system/trigger-build" {
		t.Fatalf("first step should be compensated: %v", rec.compensated)
	}
}

func TestRouteAndExecuteUserErrors(t *testing.T) {
	core, rec := newCore(t)

	_, err := core.RouteAndExecute(context.Background(), "")
	if ue, ok := dispatch.IsUserError(err); !ok || ue.Kind != dispatch.ErrEmptyInput {
		t.Fatalf("expected empty-input, got %v", err)
	}

	_, err = core.RouteAndExecute(context.Background(), "sing me a song")
	if ue, ok := dispatch.IsUserError(err); !ok || ue.Kind != dispatch.ErrNoMatch {
		t.Fatalf("expected no-match, got %v", err)
	}
	if len(rec.invoked) != 0 {
		t.Fatalf("rejected input must not invoke handlers: %v", rec.invoked)
	}
}

func TestExecuteExplicit(t *testing.T) {
	core, rec := newCore(t)

	step, err := core.ExecuteExplicit(context.Background(), "build-system", "status-query",
		map[string]string{"folder": "deploy-all", "status": "FAILED", "window": "last 4 hours"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Status != workflow.StepSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s", step.Status)
	}
	if step.Decision.Params["status"] != "failed" || step.Decision.Params["window"] != "4h" {
		t.Fatalf("params should normalize: %+v", step.Decision.Params)
	}
	if step.Decision.Params["count"] != "5" {
		t.Fatalf("defaults should apply: %+v", step.Decision.Params)
	}
	if step.Decision.Confidence != 1.0 {
		t.Fatalf("explicit execution runs at confidence 1.0, got %.2f", step.Decision.Confidence)
	}
	if len(rec.invoked) != 1 {
		t.Fatalf("expected one invocation, got %v", rec.invoked)
	}
}

func TestExecuteExplicitValidation(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	if _, err := core.ExecuteExplicit(ctx, "no-such-domain", "op", nil); err == nil {
		t.Fatalf("unknown domain should fail")
	}
	if _, err := core.ExecuteExplicit(ctx, "build-system", "no-such-op", nil); err == nil {
		t.Fatalf("unknown operation should fail")
	}
	if _, err := core.ExecuteExplicit(ctx, "build-system", "status-query", map[string]string{"bogus": "x"}); err == nil {
		t.Fatalf("undeclared parameter should fail")
	}
	if _, err := core.ExecuteExplicit(ctx, "build-system", "status-query", map[string]string{"folder": "x", "status": "bogus"}); err == nil {
		t.Fatalf("invalid enum value should fail")
	}
	if _, err := core.ExecuteExplicit(ctx, "build-system", "status-query", nil); err == nil {
		t.Fatalf("missing required parameter should fail")
	}
}

func TestDomainCatalogIsACopy(t *testing.T) {
	core, _ := newCore(t)

	domains := core.DomainCatalog()
	if len(domains) == 0 {
		t.Fatalf("expected domains")
	}
	domains[0].Name = "mutated"

	if core.DomainCatalog()[0].Name == "mutated" {
		t.Fatalf("DomainCatalog must return a copy")
	}
}

func TestSplitSegments(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"do one thing", []string{"do one thing"}},
		{"first, then second", []string{"first", "second"}},
		{"first and then second; third.", []string{"first", "second", "third"}},
		{"first, THEN second", []string{"first", "second"}},
		{"strengthen the tests", []string{"strengthen the tests"}},
	}

	for _, tt := range tests {
		got := splitSegments(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("splitSegments(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("splitSegments(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
