package credential

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. Check-and-insert happens
// under one lock, so concurrent inserts cannot both win.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	nextID  int64
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, now: time.Now}
}

func (s *MemoryStore) FindByUsernameOrEmail(ctx context.Context, value string, excludeID int64) (*Record, error) {
	return s.find(ctx, excludeID, func(r *Record) bool {
		return strings.EqualFold(r.Username, value) || strings.EqualFold(r.Email, value)
	})
}

// FindByIdentity prefers a username match over an email match.
func (s *MemoryStore) FindByIdentity(ctx context.Context, username, email string, excludeID int64) (*Record, error) {
	rec, err := s.find(ctx, excludeID, func(r *Record) bool {
		return strings.EqualFold(r.Username, username)
	})
	if !errors.Is(err, ErrNotFound) {
		return rec, err
	}
	return s.find(ctx, excludeID, func(r *Record) bool {
		return strings.EqualFold(r.Email, email)
	})
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (*Record, error) {
	return s.find(ctx, 0, func(r *Record) bool { return r.ID == id })
}

func (s *MemoryStore) Insert(ctx context.Context, username, email, passwordHash string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Username collisions are reported first, across all records.
	for i := range s.records {
		if strings.EqualFold(s.records[i].Username, username) {
			return nil, &DuplicateError{Field: FieldUsername}
		}
	}
	for i := range s.records {
		if strings.EqualFold(s.records[i].Email, email) {
			return nil, &DuplicateError{Field: FieldEmail}
		}
	}

	now := s.now()
	rec := Record{
		ID:           s.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.nextID++
	s.records = append(s.records, rec)
	return &rec, nil
}

func (s *MemoryStore) find(ctx context.Context, excludeID int64, match func(*Record) bool) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		r := &s.records[i]
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if match(r) {
			out := *r
			return &out, nil
		}
	}
	return nil, ErrNotFound
}
