// Package dispatch holds the types shared between the router, the
// domain agents and the workflow engine.
package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

// Origin records one classification hop that produced a decision.
type Origin struct {
	Stage      string  `json:"stage"`  // "domain" or "operation"
	Label      string  `json:"label"`  // what the hop selected
	Source     string  `json:"source"` // "llm" or "pattern"
	Confidence float64 `json:"confidence"`
}

// Decision is a resolved (domain, operation, parameters) triple ready
// for execution. Immutable once created; the workflow engine owns it.
type Decision struct {
	Domain     string            `json:"domain"`
	Operation  string            `json:"operation"`
	Params     map[string]string `json:"params"`
	Confidence float64           `json:"confidence"`

	// LowConfidence is carried from the classification results; it is
	// the single flag surfaced to the user, never recomputed downstream.
	LowConfidence bool     `json:"low_confidence,omitempty"`
	Origin        []Origin `json:"origin,omitempty"`
}

// Clarification is a targeted follow-up question issued instead of
// guessing. Missing names the exact parameters still needed.
type Clarification struct {
	Domain    string   `json:"domain"`
	Operation string   `json:"operation,omitempty"`
	Missing   []string `json:"missing,omitempty"`
	Prompt    string   `json:"prompt"`
}

// NewMissingParams builds a clarification for absent required parameters.
func NewMissingParams(domain, operation string, missing []string) *Clarification {
	return &Clarification{
		Domain:    domain,
		Operation: operation,
		Missing:   missing,
		Prompt:    fmt.Sprintf("%s/%s needs: %s", domain, operation, strings.Join(missing, ", ")),
	}
}

// UserErrorKind distinguishes user-facing rejection reasons.
type UserErrorKind string

const (
	ErrEmptyInput UserErrorKind = "empty-input"
	ErrNoMatch    UserErrorKind = "no-match"
)

// UserError is shown to the user as-is and never retried.
type UserError struct {
	Kind       UserErrorKind
	Message    string
	Candidates []string // best-guess domains for no-match, may be empty
}

func (e *UserError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

// NewEmptyInput reports that the input was empty after trimming.
func NewEmptyInput() *UserError {
	return &UserError{Kind: ErrEmptyInput, Message: "input is empty"}
}

// NewNoMatch reports that no domain cleared the acceptance threshold.
func NewNoMatch(candidates []string) *UserError {
	msg := "could not match the request to a capability"
	if len(candidates) > 0 {
		msg = fmt.Sprintf("%s; closest: %s", msg, strings.Join(candidates, ", "))
	}
	return &UserError{Kind: ErrNoMatch, Message: msg, Candidates: candidates}
}

// IsUserError reports whether err is a UserError, returning it if so.
func IsUserError(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
