package errors

import (
	"fmt"
	"maps"
)

// ClassifiedError is the failure type every pipeline stage returns. Carrying
// the category and severity on the value lets the CLI and HTTP adapters map
// failures to exit codes and status codes without string matching.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

// Error renders the classification alongside the message and cause.
func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.cause
}

// Is matches classified errors by category and message, so sentinel-style
// comparisons work across wrapping.
func (e *ClassifiedError) Is(target error) bool {
	other, ok := target.(*ClassifiedError)
	return ok && e.category == other.category && e.message == other.message
}

// Category returns the error's classification.
func (e *ClassifiedError) Category() ErrorCategory {
	return e.category
}

// Severity returns the error's impact level.
func (e *ClassifiedError) Severity() ErrorSeverity {
	return e.severity
}

// RetryStrategy returns the advised retry handling.
func (e *ClassifiedError) RetryStrategy() RetryStrategy {
	return e.retry
}

// Message returns the user-facing message without classification markup.
func (e *ClassifiedError) Message() string {
	return e.message
}

// Context returns the structured detail attached to the error.
func (e *ClassifiedError) Context() ErrorContext {
	return e.context
}

// WithContext returns a copy of the error with one more context entry. The
// receiver is left untouched.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	clone := *e
	clone.context = maps.Clone(e.context).Set(key, value)
	return &clone
}

// CanRetry reports whether a caller may usefully retry the failed operation.
func (e *ClassifiedError) CanRetry() bool {
	return e.retry != RetryNever && e.retry != RetryUserAction
}

// AsClassified extracts a ClassifiedError from err, if it is one.
func AsClassified(err error) (*ClassifiedError, bool) {
	classified, ok := err.(*ClassifiedError)
	return classified, ok
}
