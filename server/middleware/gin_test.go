package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authgate/auth/authctx"
	"github.com/kbukum/authgate/auth/guard"
	"github.com/kbukum/authgate/auth/jwt"
	"github.com/kbukum/authgate/credential"
	"github.com/kbukum/authgate/server/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

// publicSet is a PublicRoutes keyed by "METHOD path".
type publicSet map[string]bool

func (p publicSet) IsPublic(method, fullPath string) bool { return p[method+" "+fullPath] }

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body %q: %v", rr.Body.String(), err)
	}
	return body
}

func newGuardedEngine(t *testing.T) (*gin.Engine, *jwt.Service, *credential.Record) {
	t.Helper()
	tokens, err := jwt.NewService(&jwt.Config{Secret: "mw-secret"})
	if err != nil {
		t.Fatal(err)
	}
	store := credential.NewMemoryStore()
	rec, err := store.Insert(context.Background(), "erin", "erin@example.com", "hash")
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.Use(middleware.Guard(guard.New(tokens, store), publicSet{"GET /open": true}))
	r.GET("/open", func(c *gin.Context) {
		_, has := authctx.FromGin(c)
		c.JSON(http.StatusOK, gin.H{"principal": has})
	})
	r.GET("/users/:id", func(c *gin.Context) {
		p, ok := authctx.PrincipalFrom(c.Request.Context())
		if !ok {
			t.Error("guard passed a request without a principal")
		}
		c.JSON(http.StatusOK, p)
	})
	return r, tokens, rec
}

func TestGuard_PublicRoute(t *testing.T) {
	r, _, _ := newGuardedEngine(t)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/open", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != `{"principal":false}` {
		t.Errorf("expected no principal on public route, got %s", rr.Body.String())
	}
}

func TestGuard_ProtectedRouteMatchesPattern(t *testing.T) {
	r, tokens, rec := newGuardedEngine(t)
	token, _ := tokens.Issue(rec.ID)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/users/42", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var p credential.Principal
	_ = json.Unmarshal(rr.Body.Bytes(), &p)
	if p != rec.Principal() {
		t.Errorf("expected %+v, got %+v", rec.Principal(), p)
	}
}

func TestGuard_Rejections(t *testing.T) {
	r, _, _ := newGuardedEngine(t)
	for _, header := range []string{"", "Bearer nope", "Basic abc"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/users/1", http.NoBody)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rr.Code)
		}
		body := decodeError(t, rr)
		if body.Error.Code != "UNAUTHENTICATED" || body.Error.Message != "Authentication required." {
			t.Errorf("header %q: unexpected body %+v", header, body)
		}
	}
}

func TestGuard_UnknownRouteFailsClosed(t *testing.T) {
	r, _, _ := newGuardedEngine(t)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/nowhere", http.NoBody))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown route without token, got %d", rr.Code)
	}
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func rateLimitedEngine(l middleware.Limiter) *gin.Engine {
	r := gin.New()
	r.POST("/auth/login", middleware.RateLimit(middleware.RateLimitConfig{Limiter: l}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name    string
		limiter *stubLimiter
		want    int
	}{
		{"allowed", &stubLimiter{allow: true}, http.StatusOK},
		{"limited", &stubLimiter{allow: false}, http.StatusTooManyRequests},
		{"backend down fails open", &stubLimiter{err: errors.New("redis: connection refused")}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/auth/login", http.NoBody)
			req.RemoteAddr = "203.0.113.7:5555"
			rateLimitedEngine(tt.limiter).ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
			if tt.want == http.StatusTooManyRequests {
				if body := decodeError(t, rr); body.Error.Code != "RATE_LIMITED" {
					t.Errorf("expected RATE_LIMITED, got %s", body.Error.Code)
				}
			}
			if len(tt.limiter.keys) != 1 || tt.limiter.keys[0] != "/auth/login|203.0.113.7" {
				t.Errorf("unexpected limiter keys %v", tt.limiter.keys)
			}
		})
	}
}

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	l := middleware.NewMemoryLimiter(2, time.Minute)
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "k")
		if err != nil || ok != want {
			t.Fatalf("request %d: expected %v, got %v (%v)", i, want, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, "other"); !ok {
		t.Error("expected keys to be limited independently")
	}
}

func TestMemoryLimiter_WindowExpires(t *testing.T) {
	l := middleware.NewMemoryLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Fatal("expected first request to pass")
	}
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Fatal("expected second request to be limited")
	}
	time.Sleep(80 * time.Millisecond)
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("expected request to pass after the window")
	}
}

func TestTelemetry_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Telemetry(nil))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", http.NoBody))
	if rr.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rr.Code)
	}
}
