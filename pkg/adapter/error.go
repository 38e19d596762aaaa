package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// AdapterError carries provider failure metadata: the HTTP status when
// one exists, and whether the failure is worth retrying.
type AdapterError struct {
	Status    int
	Temporary bool
	Err       error
}

func (e *AdapterError) Error() string {
	if e == nil {
		return "adapter error"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("adapter error (status=%d)", e.Status)
}

func (e *AdapterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTransient reports whether a provider call that failed with err is
// worth one more attempt. Cancellation is final; timeouts, throttling
// and provider 5xx responses are not.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var ae *AdapterError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Temporary || ae.Status == 429 || (ae.Status >= 500 && ae.Status <= 599)
}
