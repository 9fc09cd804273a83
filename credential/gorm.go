package credential

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kbukum/authgate/database"
)

// GormStore persists records through GORM. Uniqueness is enforced by the
// lower(username) and lower(email) unique indexes created by the migrations.
type GormStore struct {
	db *database.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a store over an open, migrated database.
func NewGormStore(db *database.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByUsernameOrEmail(ctx context.Context, value string, excludeID int64) (*Record, error) {
	q := s.db.WithContext(ctx).Where("(lower(username) = lower(?) OR lower(email) = lower(?))", value, value)
	return s.first(q, excludeID)
}

func (s *GormStore) FindByIdentity(ctx context.Context, username, email string, excludeID int64) (*Record, error) {
	// Username matches win over email matches, so they are looked up first.
	rec, err := s.first(s.db.WithContext(ctx).Where("lower(username) = lower(?)", username), excludeID)
	if !errors.Is(err, ErrNotFound) {
		return rec, err
	}
	return s.first(s.db.WithContext(ctx).Where("lower(email) = lower(?)", email), excludeID)
}

func (s *GormStore) FindByID(ctx context.Context, id int64) (*Record, error) {
	return s.first(s.db.WithContext(ctx).Where("id = ?", id), 0)
}

func (s *GormStore) Insert(ctx context.Context, username, email, passwordHash string) (*Record, error) {
	rec := &Record{Username: username, Email: email, PasswordHash: passwordHash}
	err := s.db.WithContext(ctx).Create(rec).Error
	if err == nil {
		return rec, nil
	}
	if !database.IsDuplicateError(err) {
		return nil, database.FromDatabase(err)
	}

	// The translated error does not say which index fired; the row that won does.
	field := FieldUsername
	if existing, lookupErr := s.FindByIdentity(context.WithoutCancel(ctx), username, email, 0); lookupErr == nil {
		field = ConflictField(existing, username, email)
	}
	return nil, &DuplicateError{Field: field}
}

func (s *GormStore) first(q *gorm.DB, excludeID int64) (*Record, error) {
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var rec Record
	if err := q.Order("id").Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, database.FromDatabase(err)
	}
	return &rec, nil
}
