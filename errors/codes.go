package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input errors
const (
	// ErrCodeInvalidInput indicates a request failed field validation.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Credential errors
const (
	// ErrCodeConflict indicates the username or email is already taken.
	ErrCodeConflict ErrorCode = "CONFLICT"
	// ErrCodeNotFound indicates no principal matched the supplied identifier.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnauthorized indicates the password did not match.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeUnauthenticated indicates a protected route was reached without a usable token.
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
)

// Availability errors (retryable)
const (
	// ErrCodeRateLimited indicates the client is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeServiceUnavailable indicates a dependency is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeDatabaseError indicates the credential store failed.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeRateLimited:        true,
	ErrCodeServiceUnavailable: true,
	ErrCodeDatabaseError:      true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
