package errors

// Category classifies an error for uniform handling downstream.
type Category string

const (
	// CategoryTransient marks temporary errors that may resolve on their own.
	CategoryTransient Category = "transient"
	// CategoryPermanent marks errors that won't resolve without intervention.
	CategoryPermanent Category = "permanent"
	// CategoryRateLimit marks API rate limiting errors.
	CategoryRateLimit Category = "rate_limit"
	// CategoryAuthentication marks auth and permission errors.
	CategoryAuthentication Category = "authentication"
	// CategoryValidation marks input validation errors.
	CategoryValidation Category = "validation"
	// CategoryExternalService marks third-party service errors.
	CategoryExternalService Category = "external_service"
	// CategorySystem marks internal errors and anything unclassified.
	CategorySystem Category = "system"
)

// Severity indicates how urgent an error is for operators.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// LogLevel returns the log level errors of this severity are reported at.
// Critical errors log at error level; alerting, not the log level, is what
// distinguishes them.
func (s Severity) LogLevel() string {
	switch s {
	case SeverityCritical, SeverityHigh:
		return "error"
	case SeverityMedium:
		return "warn"
	default:
		return "info"
	}
}
