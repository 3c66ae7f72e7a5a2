// Package errors provides centralized error definitions and error handling utilities
// for the lbsim codebase. It defines the simulator's sentinel errors, typed errors
// with context builders, and classification helpers.
//
// # Error Types
//
// The simulator distinguishes three kinds of failure:
//
//   - InvariantError: a programming-contract violation inside the simulation
//     engine (queue underflow, pool shrinking below one worker, assigning a
//     busy worker). These are fatal to the run.
//   - ValidationError: malformed input such as an unparsable IPv4 address or
//     an inverted address range. Configuration loading recovers from these by
//     falling back to defaults.
//   - Blocked requests are a normal outcome and are never represented as errors.
//
// # Usage
//
//	err := errors.NewInvariantError("dispatch", errors.ErrEmptyQueue).WithCycle(42)
//
//	if errors.Is(err, errors.ErrEmptyQueue) { ... }
//
//	var inv *errors.InvariantError
//	if errors.As(err, &inv) { ... }
//
//	if errors.IsFatal(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that stop the simulation.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Engine sentinel errors
var (
	// ErrEmptyQueue indicates a pop or peek on an empty request queue.
	ErrEmptyQueue = New("request queue is empty")
	// ErrWorkerBusy indicates a request was assigned to a worker that already owns one.
	ErrWorkerBusy = New("worker is busy")
	// ErrWorkerNotFound indicates a worker ID that is not (or no longer) in the pool.
	ErrWorkerNotFound = New("worker not found")
	// ErrPoolExhausted indicates an attempt to shrink the pool below one worker.
	ErrPoolExhausted = New("pool cannot shrink below one worker")
	// ErrNotInitialized indicates a cycle was run before the simulator was initialized.
	ErrNotInitialized = New("simulator not initialized")
)

// Input sentinel errors
var (
	// ErrInvalidAddress indicates a string that is not a dotted-decimal IPv4 address.
	ErrInvalidAddress = New("invalid IPv4 address")
	// ErrInvalidRange indicates an address range whose bounds cannot be used.
	ErrInvalidRange = New("invalid address range")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// SimError is the base interface for all lbsim errors.
// It extends the standard error interface with classification methods.
type SimError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the error message is meaningful to
	// someone running the simulator rather than developing it.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Invariant Errors
// -----------------------------------------------------------------------------

// InvariantError reports a broken engine invariant. It always carries
// SeverityCritical and stops the run that produced it.
//
// Example:
//
//	err := errors.NewInvariantError("dispatch", errors.ErrEmptyQueue)
//	err = err.WithCycle(17).WithWorkerID(3)
//	fmt.Println(err) // "invariant violated [stage=dispatch, cycle=17, worker=3]: request queue is empty"
type InvariantError struct {
	baseError
	Stage    string
	Cycle    int
	WorkerID int
	hasCycle bool
}

// NewInvariantError creates a new InvariantError for the given engine stage.
func NewInvariantError(stage string, cause error) *InvariantError {
	return &InvariantError{
		baseError: baseError{
			message:  "invariant violated",
			cause:    cause,
			severity: SeverityCritical,
		},
		Stage: stage,
	}
}

// WithCycle records the cycle at which the violation was detected.
func (e *InvariantError) WithCycle(cycle int) *InvariantError {
	e.Cycle = cycle
	e.hasCycle = true
	return e
}

// WithWorkerID records the worker involved in the violation.
func (e *InvariantError) WithWorkerID(id int) *InvariantError {
	e.WorkerID = id
	return e
}

// Error returns the formatted error message.
func (e *InvariantError) Error() string {
	var parts []string
	if e.Stage != "" {
		parts = append(parts, fmt.Sprintf("stage=%s", e.Stage))
	}
	if e.hasCycle {
		parts = append(parts, fmt.Sprintf("cycle=%d", e.Cycle))
	}
	if e.WorkerID != 0 {
		parts = append(parts, fmt.Sprintf("worker=%d", e.WorkerID))
	}

	prefix := e.message
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", e.message, strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.cause)
	}
	return prefix
}

// -----------------------------------------------------------------------------
// Validation Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input.
//
// Example:
//
//	err := errors.NewValidationError("not a dotted-decimal address")
//	err = err.WithField("blockedIpRanges").WithValue("10.0.0")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is makes every ValidationError match ErrInvalidInput.
// The cause chain is still walked by errors.Is through Unwrap.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsFatal returns true if the error must stop the simulation run.
// Invariant violations and anything wrapping an engine sentinel are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var inv *InvariantError
	if As(err, &inv) {
		return true
	}
	return Is(err, ErrEmptyQueue) || Is(err, ErrPoolExhausted) ||
		Is(err, ErrWorkerBusy) || Is(err, ErrWorkerNotFound)
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var simErr SimError
	if As(err, &simErr) {
		return simErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement SimError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var simErr SimError
	if As(err, &simErr) {
		return simErr.Severity()
	}
	return SeverityError
}

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to open journal")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
