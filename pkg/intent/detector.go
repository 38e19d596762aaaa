package intent

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/zen-systems/opsgate/pkg/adapter"
	"github.com/zen-systems/opsgate/pkg/dispatch"
)

// Default acceptance thresholds. Both are configurable; see Thresholds.
const (
	DefaultHighThreshold = 0.6
	DefaultLowThreshold  = 0.3
)

// Thresholds carries the acceptance band for classification results.
type Thresholds struct {
	High float64
	Low  float64
}

// DefaultThresholds returns the stock 0.6/0.3 band.
func DefaultThresholds() Thresholds {
	return Thresholds{High: DefaultHighThreshold, Low: DefaultLowThreshold}
}

// Detector runs strategies in priority order and decides
// accept / accept-with-flag / fallback.
type Detector struct {
	primary    Strategy
	fallback   Strategy
	thresholds Thresholds
	timeout    time.Duration
	backoff    time.Duration
	debug      bool
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithThresholds overrides the acceptance thresholds.
func WithThresholds(t Thresholds) DetectorOption {
	return func(d *Detector) {
		if t.High > 0 {
			d.thresholds.High = t.High
		}
		if t.Low > 0 {
			d.thresholds.Low = t.Low
		}
	}
}

// WithTimeout bounds each primary strategy call.
func WithTimeout(timeout time.Duration) DetectorOption {
	return func(d *Detector) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithBackoff sets the pause before the single primary retry.
func WithBackoff(backoff time.Duration) DetectorOption {
	return func(d *Detector) {
		if backoff >= 0 {
			d.backoff = backoff
		}
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) DetectorOption {
	return func(d *Detector) {
		d.debug = debug
	}
}

// NewDetector creates a detector. primary may be nil, in which case
// every classification goes straight to the fallback strategy.
func NewDetector(primary, fallback Strategy, opts ...DetectorOption) *Detector {
	d := &Detector{
		primary:    primary,
		fallback:   fallback,
		thresholds: DefaultThresholds(),
		timeout:    10 * time.Second,
		backoff:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Thresholds returns the detector's acceptance band.
func (d *Detector) Thresholds() Thresholds {
	return d.thresholds
}

// FallbackOnly returns a detector that runs only the deterministic
// fallback strategy, with the same thresholds. Used where
// classification must never leave the process.
func (d *Detector) FallbackOnly() *Detector {
	return &Detector{
		fallback:   d.fallback,
		thresholds: d.thresholds,
		timeout:    d.timeout,
		backoff:    d.backoff,
		debug:      d.debug,
	}
}

// Classify runs the primary strategy with a bounded timeout and at most
// one retry, falling back to the deterministic strategy on error or a
// sub-threshold result. Empty input is rejected before any strategy runs.
func (d *Detector) Classify(ctx context.Context, text string, vocab []Entry) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, dispatch.NewEmptyInput()
	}

	primary, primaryErr := d.classifyPrimary(ctx, text, vocab)

	if primaryErr == nil && primary != nil {
		if primary.Confidence >= d.thresholds.High {
			return primary, nil
		}
		if primary.Confidence >= d.thresholds.Low {
			flagged := *primary
			flagged.LowConfidence = true
			return &flagged, nil
		}
	}

	if d.fallback == nil {
		if primaryErr != nil {
			return nil, primaryErr
		}
		return primary, nil
	}

	result, err := d.fallback.Classify(ctx, text, vocab)
	if err != nil {
		// The pattern strategy never fails; any other fallback that
		// does leaves us with nothing to return.
		return nil, err
	}

	switch {
	case primaryErr != nil:
		result.OtherReasoning = "primary strategy failed: " + primaryErr.Error()
	case primary != nil:
		result.OtherReasoning = primary.Reasoning
	}
	if result.Confidence < d.thresholds.High && result.Confidence >= d.thresholds.Low {
		result.LowConfidence = true
	}

	if d.debug {
		log.Printf("[intent] fallback result label=%s confidence=%.2f", result.Label, result.Confidence)
	}
	return result, nil
}

// classifyPrimary calls the primary strategy with a timeout, retrying
// at most once after a bounded backoff. Only transient failures are
// retried; a malformed or off-vocabulary response will not get better
// on a second call.
func (d *Detector) classifyPrimary(ctx context.Context, text string, vocab []Entry) (*Result, error) {
	if d.primary == nil {
		return nil, errNoPrimary
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d.backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, d.timeout)
		result, err := d.primary.Classify(callCtx, text, vocab)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if d.debug {
			log.Printf("[intent] primary attempt %d failed: %v", attempt+1, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !adapter.IsTransient(err) {
			break
		}
	}
	return nil, lastErr
}

var errNoPrimary = &strategyError{msg: "no primary strategy configured"}

type strategyError struct{ msg string }

func (e *strategyError) Error() string { return e.msg }
