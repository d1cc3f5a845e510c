package matching

import (
	"errors"
	"fmt"
)

// ValidationError marks malformed survey input. It is rejected before any
// persistence and surfaced synchronously to the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid survey input: " + e.Reason
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransientComputeError wraps an infrastructure hiccup during recomputation.
// The coordinator retries these with backoff.
type TransientComputeError struct {
	Op  string
	Err error
}

func (e *TransientComputeError) Error() string {
	return fmt.Sprintf("transient compute error in %s: %v", e.Op, e.Err)
}

func (e *TransientComputeError) Unwrap() error {
	return e.Err
}

func transientErr(op string, err error) error {
	return &TransientComputeError{Op: op, Err: err}
}

func IsTransient(err error) bool {
	var te *TransientComputeError
	return errors.As(err, &te)
}

// FatalComputeError marks a recomputation failure that retrying cannot fix.
// The user keeps last-known-good scores; the failure is only visible to
// operators through logs and metrics.
type FatalComputeError struct {
	Op  string
	Err error
}

func (e *FatalComputeError) Error() string {
	return fmt.Sprintf("fatal compute error in %s: %v", e.Op, e.Err)
}

func (e *FatalComputeError) Unwrap() error {
	return e.Err
}

func fatalErr(op string, err error) error {
	return &FatalComputeError{Op: op, Err: err}
}

// ConsistencyViolation flags a match row whose perfume no longer exists in
// the catalog. The row is dropped; the batch is not failed.
type ConsistencyViolation struct {
	PerfumeID uint64
}

func (e *ConsistencyViolation) Error() string {
	return fmt.Sprintf("match references missing perfume %d", e.PerfumeID)
}
