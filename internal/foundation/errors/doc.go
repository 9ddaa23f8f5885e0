// Package errors provides foundational, type-safe error primitives used across sourcebundle.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (locator, rate_limit, not_found, remote_api, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior (never, backoff, rate_limit, user)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - HTTP and CLI adapters for error presentation
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryRemoteAPI, "repository metadata lookup failed").
//		WithSeverity(errors.SeverityFatal).
//		WithContext("repository", "owner/repo").
//		WithCause(originalErr).
//		Build()
package errors
