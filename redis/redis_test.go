package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/authgate/component"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/security"
)

func startMini(t *testing.T) (*miniredis.Miniredis, Config) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, Config{Enabled: true, Addr: mr.Addr()}
}

func newTestClient(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()
	mr, cfg := startMini(t)
	client, err := New(cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled", Config{}, false},
		{"defaults", Config{Enabled: true}, false},
		{"bad timeout", Config{Enabled: true, DialTimeout: "later"}, true},
		{"tls cert without key", Config{Enabled: true, TLS: security.TLSConfig{Enabled: true, CertFile: "c.pem"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ApplyDefaults()
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_Disabled(t *testing.T) {
	if _, err := New(Config{}, logger.Nop()); err == nil {
		t.Error("expected error for disabled redis")
	}
}

func TestClient_PingAndKey(t *testing.T) {
	_, client := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if got := client.Key("x"); got != "authgate:x" {
		t.Errorf("expected prefixed key, got %s", got)
	}
	if err := client.Close(); err != nil {
		t.Fatal(err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("expected second Close to be a no-op, got %v", err)
	}
}

func TestLimiter_FixedWindow(t *testing.T) {
	mr, client := newTestClient(t)
	l := NewLimiter(client, 2, time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 5, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "/auth/login|198.51.100.1")
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if ok != want {
			t.Fatalf("request %d: expected %v, got %v", i, want, ok)
		}
	}
	if ok, _ := l.Allow(ctx, "/auth/login|198.51.100.2"); !ok {
		t.Error("expected other keys to have their own counter")
	}

	keys := mr.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 counters, got %v", keys)
	}
	if ttl := mr.TTL(keys[0]); ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected counter to expire with the window, got ttl %v", ttl)
	}

	now = now.Add(time.Minute)
	if ok, _ := l.Allow(ctx, "/auth/login|198.51.100.1"); !ok {
		t.Error("expected a fresh window to admit the request")
	}
}

func TestLimiter_BackendDown(t *testing.T) {
	mr, client := newTestClient(t)
	mr.Close()
	if _, err := NewLimiter(client, 1, time.Minute).Allow(context.Background(), "k"); err == nil {
		t.Error("expected error when redis is unreachable")
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	mr, cfg := startMini(t)
	c := NewComponent(cfg, logger.Nop())
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}

	mr.SetError("LOADING")
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy on redis error, got %s", h.Status)
	}
	mr.SetError("")

	if err := c.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Client() != nil {
		t.Error("expected client cleared after stop")
	}
}

func TestComponent_StartFailsWhenUnreachable(t *testing.T) {
	mr, cfg := startMini(t)
	mr.Close()
	cfg.MaxRetries = 1
	cfg.DialTimeout = "200ms"
	if err := NewComponent(cfg, logger.Nop()).Start(context.Background()); err == nil {
		t.Error("expected start to fail")
	}
}
