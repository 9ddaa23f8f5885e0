package errors

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// CategoryLocator represents unusable acquisition input (empty string, missing owner/repo segments).
	CategoryLocator    ErrorCategory = "locator"
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"

	// CategoryRateLimit represents remote rate limiting on a required call.
	CategoryRateLimit ErrorCategory = "rate_limit"
	CategoryNotFound  ErrorCategory = "not_found"
	CategoryRemoteAPI ErrorCategory = "remote_api"
	CategoryTree      ErrorCategory = "tree"
	CategoryNetwork   ErrorCategory = "network"

	// CategoryNoCandidates and CategoryNoContent represent empty pipeline outcomes.
	CategoryNoCandidates ErrorCategory = "no_candidates"
	CategoryNoContent    ErrorCategory = "no_content"

	// CategoryEventStore represents runtime and infrastructure errors.
	CategoryEventStore ErrorCategory = "eventstore"
	CategoryEvents     ErrorCategory = "events"
	CategoryRuntime    ErrorCategory = "runtime"
	CategoryDaemon     ErrorCategory = "daemon"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution completely
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// RetryStrategy indicates how an error should be handled in retry scenarios.
// The acquisition pipeline itself never retries; the strategy advises callers.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"      // Permanent failure, don't retry
	RetryImmediate  RetryStrategy = "immediate"  // Retry immediately
	RetryBackoff    RetryStrategy = "backoff"    // Retry with exponential backoff
	RetryRateLimit  RetryStrategy = "rate_limit" // Retry after rate limit window
	RetryUserAction RetryStrategy = "user"       // Requires user intervention
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	value, exists := c[key]
	return value, exists
}

