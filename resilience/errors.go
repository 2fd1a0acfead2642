package resilience

import (
	"errors"
	"fmt"
)

// DefaultMessage is the message used when no classifier entry or fallback
// predicate matches a failure.
const DefaultMessage = "Unexpected error occurred"

// Sentinel errors for resilience operations.
var (
	// ErrOperationFailed matches every *OperationError.
	ErrOperationFailed = errors.New("resilience: operation failed")

	// ErrRetryInterrupted is returned when the wait between attempts is cancelled.
	ErrRetryInterrupted = errors.New("resilience: retry interrupted")

	// ErrPolicyConfiguration is returned when a RetryPolicy call panics or
	// returns an invalid value, or a classifier is malformed.
	ErrPolicyConfiguration = errors.New("resilience: policy configuration error")

	// ErrMappingMismatch indicates the kind and message lists differ in length.
	ErrMappingMismatch = errors.New("resilience: kinds and messages differ in length")

	// ErrNilOperation is returned when an entry point is called without an operation.
	ErrNilOperation = errors.New("resilience: operation is nil")
)

// OperationError is the terminal error returned to callers when an operation
// fails. Error returns the resolved message; the original failure is kept as
// the cause.
type OperationError struct {
	// Message is the caller-supplied or classifier-resolved message.
	Message string

	// Cause is the last failure returned by the operation.
	Cause error

	// Attempts is the number of times the operation ran.
	Attempts int

	// Unmatched is true when Message is DefaultMessage because no
	// classifier entry or fallback predicate matched.
	Unmatched bool
}

func (e *OperationError) Error() string {
	return e.Message
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// Is reports ErrOperationFailed as a match.
func (e *OperationError) Is(target error) bool {
	return target == ErrOperationFailed
}

// InterruptedError is returned when the context is cancelled while waiting
// between attempts. No further attempts are made.
type InterruptedError struct {
	// Attempt is the index of the attempt whose failure was being retried.
	Attempt int

	// Cause is the context error that interrupted the wait.
	Cause error

	// Last is the operation failure that triggered the retry.
	Last error
}

func (e *InterruptedError) Error() string {
	return "retry interrupted"
}

func (e *InterruptedError) Unwrap() error {
	return e.Cause
}

// Is reports ErrRetryInterrupted as a match.
func (e *InterruptedError) Is(target error) bool {
	return target == ErrRetryInterrupted
}

// PolicyError reports a misbehaving RetryPolicy or a malformed classifier.
// It is fatal and never retried.
type PolicyError struct {
	// Op names the call that failed: "ShouldRetry", "RetryDelay" or "classify".
	Op string

	// Attempt is the attempt index passed to the failing call.
	Attempt int

	// Cause describes what went wrong.
	Cause error

	// Last is the operation failure being evaluated, if any.
	Last error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("resilience: policy %s failed at attempt %d: %v", e.Op, e.Attempt, e.Cause)
}

func (e *PolicyError) Unwrap() error {
	return e.Cause
}

// Is reports ErrPolicyConfiguration as a match.
func (e *PolicyError) Is(target error) bool {
	return target == ErrPolicyConfiguration
}
