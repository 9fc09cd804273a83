package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(t *testing.T, cfg Config, c *clock) *Service {
	t.Helper()
	svc, err := NewService(&cfg, WithClock(c.now))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestIssueVerify_RoundTrip(t *testing.T) {
	c := &clock{t: t0}
	svc := newTestService(t, Config{Secret: "test-secret"}, c)

	token, err := svc.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != 42 {
		t.Errorf("expected subject 42, got %d", id)
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	c := &clock{t: t0}
	svc := newTestService(t, Config{Secret: "test-secret"}, c)
	token, err := svc.Issue(7)
	if err != nil {
		t.Fatal(err)
	}

	c.t = t0.Add(23*time.Hour + 59*time.Minute)
	if _, err := svc.Verify(token); err != nil {
		t.Errorf("expected token valid at T+23h59m, got %v", err)
	}

	c.t = t0.Add(24*time.Hour + time.Minute)
	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired at T+24h01m, got %v", err)
	}
}

func TestVerify_CustomTTL(t *testing.T) {
	c := &clock{t: t0}
	svc := newTestService(t, Config{Secret: "s", AccessTokenTTL: "15m"}, c)
	if svc.TTL() != 15*time.Minute {
		t.Errorf("expected 15m ttl, got %v", svc.TTL())
	}
	token, _ := svc.Issue(1)
	c.t = t0.Add(16 * time.Minute)
	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected expired, got %v", err)
	}
}

func TestVerify_Invalid(t *testing.T) {
	c := &clock{t: t0}
	svc := newTestService(t, Config{Secret: "test-secret"}, c)
	good, _ := svc.Issue(5)

	otherKey := newTestService(t, Config{Secret: "other-secret"}, c)
	foreign, _ := otherKey.Issue(5)

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong key", foreign},
		{"tampered payload", tampered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}

func TestVerify_ExpiredWithBadSignatureIsInvalid(t *testing.T) {
	c := &clock{t: t0}
	other := newTestService(t, Config{Secret: "other-secret"}, c)
	foreign, _ := other.Issue(5)

	svc := newTestService(t, Config{Secret: "test-secret"}, c)
	c.t = t0.Add(48 * time.Hour)
	if _, err := svc.Verify(foreign); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected signature failure to win over expiry, got %v", err)
	}
}

func sign(t *testing.T, method gojwt.SigningMethod, key interface{}, claims gojwt.Claims) string {
	t.Helper()
	s, err := gojwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestVerify_RejectsUnusableClaims(t *testing.T) {
	c := &clock{t: t0}
	svc := newTestService(t, Config{Secret: "test-secret"}, c)
	exp := gojwt.NewNumericDate(t0.Add(time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{"non-numeric subject", sign(t, gojwt.SigningMethodHS256, []byte("test-secret"), gojwt.RegisteredClaims{Subject: "bob", ExpiresAt: exp})},
		{"zero subject", sign(t, gojwt.SigningMethodHS256, []byte("test-secret"), gojwt.RegisteredClaims{Subject: "0", ExpiresAt: exp})},
		{"missing expiry", sign(t, gojwt.SigningMethodHS256, []byte("test-secret"), gojwt.RegisteredClaims{Subject: "1"})},
		{"other algorithm", sign(t, gojwt.SigningMethodHS512, []byte("test-secret"), gojwt.RegisteredClaims{Subject: "1", ExpiresAt: exp})},
		{"alg none", sign(t, gojwt.SigningMethodNone, gojwt.UnsafeAllowNoneSignatureType, gojwt.RegisteredClaims{Subject: "1", ExpiresAt: exp})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.token); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}

func TestVerify_Issuer(t *testing.T) {
	c := &clock{t: t0}
	withIssuer := newTestService(t, Config{Secret: "s", Issuer: "authgate"}, c)
	without := newTestService(t, Config{Secret: "s"}, c)

	token, _ := without.Issue(3)
	if _, err := withIssuer.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected missing issuer to be rejected, got %v", err)
	}
	token, _ = withIssuer.Issue(3)
	if id, err := withIssuer.Verify(token); err != nil || id != 3 {
		t.Errorf("expected issuer round trip, got %d, %v", id, err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults with secret", Config{Secret: "s"}, false},
		{"missing secret", Config{}, true},
		{"rsa not supported", Config{Secret: "s", Method: "RS256"}, true},
		{"bad ttl", Config{Secret: "s", AccessTokenTTL: "forever"}, true},
		{"zero ttl", Config{Secret: "s", AccessTokenTTL: "0s"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ApplyDefaults()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_DefaultTTLIsOneDay(t *testing.T) {
	cfg := Config{Secret: "s"}
	cfg.ApplyDefaults()
	ttl, err := cfg.TTL()
	if err != nil {
		t.Fatal(err)
	}
	if ttl != 24*time.Hour {
		t.Errorf("expected 24h, got %v", ttl)
	}
}

func TestNewService_MissingSecretFails(t *testing.T) {
	if _, err := NewService(&Config{}); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}
