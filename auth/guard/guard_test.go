package guard

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/kbukum/authgate/auth/jwt"
	"github.com/kbukum/authgate/credential"
	"github.com/kbukum/authgate/errors"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

// removableStore hides records removed out of band.
type removableStore struct {
	*credential.MemoryStore
	removed map[int64]bool
}

func (s *removableStore) FindByID(ctx context.Context, id int64) (*credential.Record, error) {
	if s.removed[id] {
		return nil, credential.ErrNotFound
	}
	return s.MemoryStore.FindByID(ctx, id)
}

type fixture struct {
	guard  *Guard
	tokens *jwt.Service
	store  *removableStore
	clock  *clock
	bob    *credential.Record
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	tokens, err := jwt.NewService(&jwt.Config{Secret: "guard-secret"}, jwt.WithClock(c.now))
	if err != nil {
		t.Fatal(err)
	}
	store := &removableStore{MemoryStore: credential.NewMemoryStore(), removed: map[int64]bool{}}
	bob, err := store.Insert(context.Background(), "bob", "bob@example.com", "hash")
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{guard: New(tokens, store), tokens: tokens, store: store, clock: c, bob: bob}
}

func (f *fixture) bearer(t *testing.T, id int64) string {
	t.Helper()
	token, err := f.tokens.Issue(id)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + token
}

func assertUnauthenticated(t *testing.T, err error) {
	t.Helper()
	app, ok := errors.AsAppError(err)
	if !ok || app.Code != errors.ErrCodeUnauthenticated {
		t.Fatalf("expected UNAUTHENTICATED, got %v", err)
	}
	if app.Message != "Authentication required." || app.Details != nil {
		t.Errorf("rejection must not reveal its reason: %+v", app)
	}
}

func TestCheck_PublicRouteIgnoresToken(t *testing.T) {
	f := newFixture(t)
	for _, header := range []string{"", "Bearer garbage", "Basic Ym9iOnB3"} {
		d, err := f.guard.Check(context.Background(), true, header)
		if err != nil {
			t.Fatalf("header %q: unexpected error %v", header, err)
		}
		if d.Outcome != OutcomePublic || d.Principal != nil {
			t.Errorf("header %q: expected public with no principal, got %+v", header, d)
		}
	}
}

func TestCheck_Authenticated(t *testing.T) {
	f := newFixture(t)
	for _, header := range []string{f.bearer(t, f.bob.ID), "bearer " + f.bearer(t, f.bob.ID)[len("Bearer "):]} {
		d, err := f.guard.Check(context.Background(), false, header)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if !d.Allowed() || d.Outcome != OutcomeAuthenticated {
			t.Fatalf("expected authenticated, got %s", d.Outcome)
		}
		want := f.bob.Principal()
		if d.Principal == nil || *d.Principal != want {
			t.Errorf("expected principal %+v, got %+v", want, d.Principal)
		}
	}
}

func TestCheck_Rejections(t *testing.T) {
	f := newFixture(t)
	valid := f.bearer(t, f.bob.ID)

	tests := []struct {
		name    string
		header  string
		outcome Outcome
	}{
		{"no header", "", OutcomeMissingToken},
		{"wrong scheme", "Basic Ym9iOnB3", OutcomeMissingToken},
		{"scheme only", "Bearer", OutcomeMissingToken},
		{"scheme with blank token", "Bearer   ", OutcomeMissingToken},
		{"token without scheme", valid[len("Bearer "):], OutcomeMissingToken},
		{"garbage token", "Bearer not.a.jwt", OutcomeInvalidToken},
		{"tampered token", valid + "x", OutcomeInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.guard.Check(context.Background(), false, tt.header)
			assertUnauthenticated(t, err)
			if d.Outcome != tt.outcome {
				t.Errorf("expected outcome %s, got %s", tt.outcome, d.Outcome)
			}
			if d.Allowed() || d.Principal != nil {
				t.Errorf("expected rejection without principal, got %+v", d)
			}
		})
	}
}

func TestCheck_ExpiredToken(t *testing.T) {
	f := newFixture(t)
	header := f.bearer(t, f.bob.ID)
	f.clock.t = f.clock.t.Add(24*time.Hour + time.Minute)

	d, err := f.guard.Check(context.Background(), false, header)
	assertUnauthenticated(t, err)
	if d.Outcome != OutcomeExpiredToken {
		t.Errorf("expected expired_token, got %s", d.Outcome)
	}
}

func TestCheck_DeletedPrincipal(t *testing.T) {
	f := newFixture(t)
	header := f.bearer(t, f.bob.ID)
	f.store.removed[f.bob.ID] = true

	d, err := f.guard.Check(context.Background(), false, header)
	assertUnauthenticated(t, err)
	if d.Outcome != OutcomeUnknownPrincipal {
		t.Errorf("expected unknown_principal, got %s", d.Outcome)
	}
}

type brokenLookup struct{}

func (brokenLookup) FindByID(context.Context, int64) (*credential.Record, error) {
	return nil, stderrors.New("connection reset")
}

func TestCheck_StoreFailureFailsClosed(t *testing.T) {
	f := newFixture(t)
	g := New(f.tokens, brokenLookup{})

	d, err := g.Check(context.Background(), false, f.bearer(t, f.bob.ID))
	app, ok := errors.AsAppError(err)
	if !ok || app.Code != errors.ErrCodeDatabaseError {
		t.Fatalf("expected DATABASE_ERROR, got %v", err)
	}
	if d.Allowed() {
		t.Error("store failure must not admit the request")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"BEARER abc", "abc", true},
		{"  bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := BearerToken(tt.header)
		if token != tt.token || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, token, ok, tt.token, tt.ok)
		}
	}
}
