package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Classified is implemented by every error in the taxonomy. Concrete types
// embed *AppError, so matching a specific type with errors.As and matching
// the whole taxonomy with AsClassified both work on wrapped chains.
type Classified interface {
	error
	// Base returns the underlying taxonomy error.
	Base() *AppError
}

// AppError is the base taxonomy error. Concrete types such as
// APIRateLimitError fix the category, severity and recoverability defaults
// and add their own fields.
type AppError struct {
	// Message is a human-readable description of the failure.
	Message string
	// Category classifies the failure.
	Category Category
	// Severity indicates operator urgency.
	Severity Severity
	// Context is the call-site provenance, when known.
	Context *Context
	// Cause is the original error, preserved unmodified for diagnostics.
	Cause error
	// Recoverable reports whether an automated retry or fallback might succeed.
	Recoverable bool
	// Timestamp is the creation instant.
	Timestamp time.Time
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap returns the original cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Base returns the receiver, satisfying Classified.
func (e *AppError) Base() *AppError { return e }

// Option configures a taxonomy error at construction time.
type Option func(*AppError)

// WithContext attaches call-site provenance to the error.
func WithContext(ctx Context) Option {
	return func(e *AppError) { e.Context = &ctx }
}

// WithCause records the original error. The cause is kept as-is and never
// wrapped a second time.
func WithCause(cause error) Option {
	return func(e *AppError) { e.Cause = cause }
}

// WithSeverity overrides the default severity.
func WithSeverity(s Severity) Option {
	return func(e *AppError) { e.Severity = s }
}

// WithCategory overrides the default category.
func WithCategory(c Category) Option {
	return func(e *AppError) { e.Category = c }
}

// WithRecoverable overrides the default recoverability.
func WithRecoverable(recoverable bool) Option {
	return func(e *AppError) { e.Recoverable = recoverable }
}

// New creates a base taxonomy error. Unclassified errors default to the
// SYSTEM category at medium severity and are considered recoverable.
func New(message string, opts ...Option) *AppError {
	return newTyped(message, CategorySystem, SeverityMedium, true, opts)
}

func newTyped(message string, category Category, severity Severity, recoverable bool, opts []Option) *AppError {
	e := &AppError{
		Message:     message,
		Category:    category,
		Severity:    severity,
		Recoverable: recoverable,
		Timestamp:   time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ContentGenerationError reports a failure while producing content through
// an AI provider, including content blocked by safety filters.
type ContentGenerationError struct {
	*AppError
}

// NewContentGeneration creates a ContentGenerationError.
func NewContentGeneration(message string, opts ...Option) *ContentGenerationError {
	return &ContentGenerationError{
		AppError: newTyped(message, CategoryExternalService, SeverityHigh, true, opts),
	}
}

// APIRateLimitError reports an API quota or rate limit rejection.
type APIRateLimitError struct {
	*AppError
	// RetryAfter is the server-suggested wait before retrying, zero if unknown.
	RetryAfter time.Duration
}

// NewRateLimit creates an APIRateLimitError. Pass zero for retryAfter when
// the service gave no hint.
func NewRateLimit(message string, retryAfter time.Duration, opts ...Option) *APIRateLimitError {
	return &APIRateLimitError{
		AppError:   newTyped(message, CategoryRateLimit, SeverityMedium, true, opts),
		RetryAfter: retryAfter,
	}
}

// AuthenticationError reports an authentication or authorization failure.
// These are not recoverable without new credentials.
type AuthenticationError struct {
	*AppError
}

// NewAuthentication creates an AuthenticationError.
func NewAuthentication(message string, opts ...Option) *AuthenticationError {
	return &AuthenticationError{
		AppError: newTyped(message, CategoryAuthentication, SeverityHigh, false, opts),
	}
}

// ValidationError reports malformed or out-of-bounds input.
type ValidationError struct {
	*AppError
	// Field names the offending input field, empty if not field-specific.
	Field string
}

// NewValidation creates a ValidationError for the given field.
func NewValidation(message, field string, opts ...Option) *ValidationError {
	return &ValidationError{
		AppError: newTyped(message, CategoryValidation, SeverityLow, false, opts),
		Field:    field,
	}
}

// ExternalServiceError reports a failure in a third-party dependency,
// typically network or availability trouble.
type ExternalServiceError struct {
	*AppError
	// ServiceName identifies the failing dependency.
	ServiceName string
}

// NewExternalService creates an ExternalServiceError for the named service.
func NewExternalService(message, serviceName string, opts ...Option) *ExternalServiceError {
	return &ExternalServiceError{
		AppError:    newTyped(message, CategoryExternalService, SeverityMedium, true, opts),
		ServiceName: serviceName,
	}
}

// CircuitBreakerError reports a call rejected because the service's circuit
// breaker is open. The wrapped operation was never invoked.
type CircuitBreakerError struct {
	*AppError
}

// NewCircuitOpen creates a CircuitBreakerError.
func NewCircuitOpen(message string, opts ...Option) *CircuitBreakerError {
	return &CircuitBreakerError{
		AppError: newTyped(message, CategorySystem, SeverityHigh, false, opts),
	}
}

// IsClassified reports whether err or anything in its chain belongs to the
// taxonomy.
func IsClassified(err error) bool {
	_, ok := AsClassified(err)
	return ok
}

// AsClassified extracts the taxonomy error from err's chain, if present.
func AsClassified(err error) (Classified, bool) {
	var c Classified
	if stderrors.As(err, &c) {
		return c, true
	}
	return nil, false
}
