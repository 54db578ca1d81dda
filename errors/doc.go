// Package errors defines the typed error taxonomy used across faultkit.
// Every failure that escapes a protected operation is mapped into this
// taxonomy: a category, a severity, a recoverability flag, and the
// originating call context, with the raw cause preserved for diagnostics.
package errors
