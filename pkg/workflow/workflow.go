// Package workflow executes ordered dispatch decisions with explicit
// partial-failure and rollback semantics.
package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zen-systems/opsgate/pkg/dispatch"
	"github.com/zen-systems/opsgate/pkg/invoke"
)

// StepStatus is the per-step lifecycle state.
type StepStatus string

const (
	StepPending    StepStatus = "PENDING"
	StepRunning    StepStatus = "RUNNING"
	StepSucceeded  StepStatus = "SUCCEEDED"
	StepFailed     StepStatus = "FAILED"
	StepRolledBack StepStatus = "ROLLED_BACK"
	StepSkipped    StepStatus = "SKIPPED"
)

// stepTransitions encodes the legal, monotonic status machine. A step
// never re-enters RUNNING from a terminal state.
var stepTransitions = map[StepStatus][]StepStatus{
	StepPending:   {StepRunning, StepSkipped},
	StepRunning:   {StepSucceeded, StepFailed},
	StepSucceeded: {StepRolledBack},
}

// Step is one unit of execution in a workflow. Mutable only by the
// engine executing it.
type Step struct {
	Decision   *dispatch.Decision
	Status     StepStatus
	Result     any
	Err        error
	Compensate invoke.Compensation

	// CompensationErr records a rollback attempt that itself failed.
	CompensationErr error
}

// transition advances the step status, enforcing monotonicity.
func (s *Step) transition(to StepStatus) error {
	for _, allowed := range stepTransitions[s.Status] {
		if allowed == to {
			s.Status = to
			return nil
		}
	}
	return fmt.Errorf("illegal step transition %s -> %s", s.Status, to)
}

// Compensable reports whether the step has a compensation handler.
func (s *Step) Compensable() bool {
	return s.Compensate != nil
}

// Status is the workflow-level terminal state.
type Status string

const (
	StatusRunning         Status = "RUNNING"
	StatusCompleted       Status = "COMPLETED"
	StatusPartiallyFailed Status = "PARTIALLY_FAILED"
	StatusFailed          Status = "FAILED"
	StatusRolledBack      Status = "ROLLED_BACK"
)

// Workflow is an ordered step sequence with one overall status. The
// step list is owned exclusively by the engine instance executing it.
type Workflow struct {
	ID        string
	Steps     []*Step
	Status    Status
	CreatedAt time.Time
}

// newWorkflow wraps decisions in pending steps.
func newWorkflow(decisions []*dispatch.Decision, registry *invoke.Registry) *Workflow {
	steps := make([]*Step, 0, len(decisions))
	for _, d := range decisions {
		step := &Step{Decision: d, Status: StepPending}
		if comp, ok := registry.Compensation(d.Domain, d.Operation); ok {
			step.Compensate = comp
		}
		steps = append(steps, step)
	}
	return &Workflow{
		ID:        uuid.NewString(),
		Steps:     steps,
		Status:    StatusRunning,
		CreatedAt: time.Now().UTC(),
	}
}

// Succeeded returns the steps that completed successfully.
func (w *Workflow) Succeeded() []*Step {
	var out []*Step
	for _, s := range w.Steps {
		if s.Status == StepSucceeded {
			out = append(out, s)
		}
	}
	return out
}

// StatusTable renders the per-step status summary reported with every
// workflow-level failure.
func (w *Workflow) StatusTable() []string {
	rows := make([]string, 0, len(w.Steps))
	for i, s := range w.Steps {
		row := fmt.Sprintf("step %d %s/%s: %s", i+1, s.Decision.Domain, s.Decision.Operation, s.Status)
		if s.Err != nil {
			row += " (" + s.Err.Error() + ")"
		}
		if s.CompensationErr != nil {
			row += " [compensation failed: " + s.CompensationErr.Error() + "]"
		}
		rows = append(rows, row)
	}
	return rows
}

// Terminal reports whether the workflow reached a terminal status.
func (w *Workflow) Terminal() bool {
	return w.Status != StatusRunning
}
