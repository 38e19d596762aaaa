package workflow

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/zen-systems/opsgate/pkg/dispatch"
	"github.com/zen-systems/opsgate/pkg/invoke"
)

// Policy selects the failure-handling behavior for a workflow run.
type Policy string

// PolicyAbortAndCompensate is the default: stop at the first failure
// and roll back prior successes when every one of them (and the failed
// step) is compensable.
const PolicyAbortAndCompensate Policy = "abort-and-compensate"

// Engine executes workflows. One engine may run many workflows, but a
// given workflow is only ever executed by the engine that created it,
// strictly sequentially.
type Engine struct {
	invoker *invoke.Invoker
	debug   bool

	mu      sync.Mutex
	archive []*Workflow
}

// NewEngine creates a workflow engine over an invoker.
func NewEngine(invoker *invoke.Invoker, debug bool) *Engine {
	return &Engine{invoker: invoker, debug: debug}
}

// Archive returns workflows that reached a terminal status, oldest
// first.
func (e *Engine) Archive() []*Workflow {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Workflow, len(e.archive))
	copy(out, e.archive)
	return out
}

// Execute runs decisions strictly in order under the given policy and
// returns the workflow in a terminal state. A step starts only after
// the previous one reached a terminal per-step state; steps are never
// auto-retried. Cancellation is checked only between steps and does
// not trigger compensation.
func (e *Engine) Execute(ctx context.Context, decisions []*dispatch.Decision, policy Policy) (*Workflow, error) {
	if len(decisions) == 0 {
		return nil, fmt.Errorf("workflow requires at least one decision")
	}
	if policy == "" {
		policy = PolicyAbortAndCompensate
	}
	if policy != PolicyAbortAndCompensate {
		return nil, fmt.Errorf("unsupported policy %q", policy)
	}

	w := newWorkflow(decisions, e.invoker.Registry())
	defer e.archiveTerminal(w)

	for i, step := range w.Steps {
		if ctx.Err() != nil {
			e.cancelFrom(w, i)
			return w, nil
		}

		if err := step.transition(StepRunning); err != nil {
			return w, err
		}
		if e.debug {
			log.Printf("[workflow] %s step %d: %s/%s", w.ID, i+1, step.Decision.Domain, step.Decision.Operation)
		}

		result, err := e.invoker.Invoke(ctx, step.Decision)
		if err == nil {
			// An empty or zero result is success, not failure.
			step.Result = result
			if terr := step.transition(StepSucceeded); terr != nil {
				return w, terr
			}
			continue
		}

		step.Err = err
		if terr := step.transition(StepFailed); terr != nil {
			return w, terr
		}
		e.resolveFailure(ctx, w, i)
		return w, nil
	}

	w.Status = StatusCompleted
	return w, nil
}

// cancelFrom marks unexecuted steps SKIPPED after a cancellation.
// Default policy: only execution failure triggers rollback, never user
// cancellation.
func (e *Engine) cancelFrom(w *Workflow, from int) {
	skipFrom(w, from)
	if from == 0 {
		w.Status = StatusFailed
		return
	}
	w.Status = StatusPartiallyFailed
}

// resolveFailure applies abort-and-compensate semantics after the step
// at index failed reached FAILED.
func (e *Engine) resolveFailure(ctx context.Context, w *Workflow, failed int) {
	skipFrom(w, failed+1)
	failedStep := w.Steps[failed]

	// Unauthorized short-circuits the rest of the workflow regardless
	// of compensation availability.
	if invoke.IsUnauthorized(failedStep.Err) {
		if failed == 0 {
			w.Status = StatusFailed
		} else {
			w.Status = StatusPartiallyFailed
		}
		return
	}

	if failed == 0 {
		// Nothing to compensate.
		w.Status = StatusFailed
		return
	}

	if !e.rollbackCovered(w, failed) {
		w.Status = StatusPartiallyFailed
		return
	}

	// Compensate in reverse execution order.
	fullyRolledBack := true
	for i := failed - 1; i >= 0; i-- {
		step := w.Steps[i]
		if step.Status != StepSucceeded {
			continue
		}
		if err := step.Compensate(ctx, step.Decision, step.Result); err != nil {
			step.CompensationErr = err
			fullyRolledBack = false
			if e.debug {
				log.Printf("[workflow] %s compensation for step %d failed: %v", w.ID, i+1, err)
			}
			continue
		}
		if err := step.transition(StepRolledBack); err != nil {
			step.CompensationErr = err
			fullyRolledBack = false
		}
	}

	if fullyRolledBack {
		w.Status = StatusRolledBack
	} else {
		w.Status = StatusPartiallyFailed
	}
}

// rollbackCovered reports whether rollback is safe: the failed step and
// every previously-succeeded step carry compensation handlers.
func (e *Engine) rollbackCovered(w *Workflow, failed int) bool {
	if !w.Steps[failed].Compensable() {
		return false
	}
	for i := 0; i < failed; i++ {
		if w.Steps[i].Status == StepSucceeded && !w.Steps[i].Compensable() {
			return false
		}
	}
	return true
}

func skipFrom(w *Workflow, from int) {
	for i := from; i < len(w.Steps); i++ {
		if w.Steps[i].Status == StepPending {
			w.Steps[i].Status = StepSkipped
		}
	}
}

func (e *Engine) archiveTerminal(w *Workflow) {
	if w == nil || !w.Terminal() {
		return
	}
	e.mu.Lock()
	e.archive = append(e.archive, w)
	e.mu.Unlock()
}
