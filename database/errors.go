package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/authgate/errors"
)

var connectionErrorPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"no route to host",
	"network is unreachable",
	"connection closed",
	"driver: bad connection",
	"database is locked",
}

// IsConnectionError reports whether err looks like a transient connectivity failure.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range connectionErrorPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsNotFoundError checks if the error is a GORM record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError checks if the error is a translated unique-key violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// FromDatabase converts an unexpected database error to an AppError.
// Not-found and duplicate outcomes are domain results and are handled by
// the caller before reaching here.
func FromDatabase(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	if IsConnectionError(err) {
		return apperrors.ServiceUnavailable("database").WithCause(err)
	}
	return apperrors.DatabaseError(err)
}
