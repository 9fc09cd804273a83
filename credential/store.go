package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Field names reported by DuplicateError.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("credential: record not found")

// DuplicateError reports an insert that would break uniqueness.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("credential: %s already exists", e.Field)
}

// Store is the persistence contract used by the auth service and the guard.
// All lookups compare username and email case-insensitively. An excludeID
// of zero excludes nothing.
type Store interface {
	// FindByUsernameOrEmail returns a record whose username or email equals value.
	FindByUsernameOrEmail(ctx context.Context, value string, excludeID int64) (*Record, error)

	// FindByIdentity returns a record whose username equals username or
	// whose email equals email. A username match is returned in preference
	// to an email match.
	FindByIdentity(ctx context.Context, username, email string, excludeID int64) (*Record, error)

	// FindByID returns the record with the given ID.
	FindByID(ctx context.Context, id int64) (*Record, error)

	// Insert stores a new record and returns it with its assigned ID.
	Insert(ctx context.Context, username, email, passwordHash string) (*Record, error)
}

// ConflictField names the field of existing that collides with the
// candidate identity. Username wins when both collide.
func ConflictField(existing *Record, username, email string) string {
	if strings.EqualFold(existing.Username, username) {
		return FieldUsername
	}
	return FieldEmail
}
