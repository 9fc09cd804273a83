package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/authgate/auth"
	"github.com/kbukum/authgate/auth/jwt"
	"github.com/kbukum/authgate/auth/password"
	"github.com/kbukum/authgate/bootstrap"
	"github.com/kbukum/authgate/config"
	"github.com/kbukum/authgate/credential"
	"github.com/kbukum/authgate/database"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/redis"
	"github.com/kbukum/authgate/server"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		ServiceConfig: config.ServiceConfig{Version: "test"},
		Server:        server.Config{Host: "127.0.0.1", Port: freePort(t)},
		Auth: auth.Config{
			JWT:      &jwt.Config{Secret: "e2e-secret"},
			Password: &password.Config{Algorithm: password.AlgorithmBcrypt, BcryptCost: 4},
		},
	}
}

func build(t *testing.T, cfg *Config) *App {
	t.Helper()
	a, err := Build(cfg, bootstrap.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return a
}

// run starts a, runs fn against its base URL and shuts down.
func run(t *testing.T, a *App, fn func(base string)) {
	t.Helper()
	err := a.RunTask(context.Background(), func(context.Context) error {
		fn("http://" + a.Server.Addr())
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func get(t *testing.T, url, token string) (*http.Response, map[string]any) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, http.NoBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestEndToEnd_SQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database = database.Config{
		Enabled:     true,
		DSN:         filepath.Join(t.TempDir(), "authgate.db"),
		AutoMigrate: true,
		MaxRetries:  1,
		LogLevel:    "silent",
	}
	a := build(t, cfg)

	run(t, a, func(base string) {
		resp, body := post(t, base+"/auth/register", `{"username":"dana","email":"dana@example.com","password":"s3cret-pass"}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("register: expected 201, got %d %v", resp.StatusCode, body)
		}
		token, _ := body["accessToken"].(string)
		if token == "" {
			t.Fatalf("expected access token, got %v", body)
		}

		resp, body = post(t, base+"/auth/register", `{"username":"DANA","email":"other@example.com","password":"s3cret-pass"}`)
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("duplicate: expected 409, got %d %v", resp.StatusCode, body)
		}

		resp, body = post(t, base+"/auth/login", `{"usernameOrEmail":"Dana@Example.com","password":"s3cret-pass"}`)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("login: expected 200, got %d %v", resp.StatusCode, body)
		}

		resp, body = get(t, base+"/auth/me", token)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("me: expected 200, got %d %v", resp.StatusCode, body)
		}
		if user, _ := body["user"].(map[string]any); user["username"] != "dana" {
			t.Errorf("unexpected principal %v", body)
		}

		if resp, _ := get(t, base+"/auth/me", ""); resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("me without token: expected 401, got %d", resp.StatusCode)
		}
		if resp.Header.Get("X-Request-Id") == "" {
			t.Error("expected request id header")
		}

		resp, body = get(t, base+"/health", "")
		if resp.StatusCode != http.StatusOK || body["status"] != "up" {
			t.Errorf("health: expected 200/up, got %d %v", resp.StatusCode, body)
		}
	})

	if _, ok := a.Store.(*credential.GormStore); !ok {
		t.Errorf("expected the GORM store when the database is enabled, got %T", a.Store)
	}
}

func TestEndToEnd_MemoryStoreWithRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit = RateLimitConfig{Enabled: true, Requests: 2, Window: "1m"}
	a := build(t, cfg)

	run(t, a, func(base string) {
		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			resp, _ := post(t, base+"/auth/login", `{"usernameOrEmail":"nobody","password":"whatever1"}`)
			codes = append(codes, resp.StatusCode)
		}
		want := []int{http.StatusNotFound, http.StatusNotFound, http.StatusTooManyRequests}
		if fmt.Sprint(codes) != fmt.Sprint(want) {
			t.Errorf("expected %v, got %v", want, codes)
		}

		if resp, _ := get(t, base+"/healthz", ""); resp.StatusCode != http.StatusOK {
			t.Errorf("healthz must not be rate limited, got %d", resp.StatusCode)
		}
	})
}

func TestEndToEnd_RedisRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis = redis.Config{Enabled: true, Addr: mr.Addr()}
	cfg.RateLimit = RateLimitConfig{Enabled: true, Requests: 1, Window: "1m", Backend: BackendRedis}
	a := build(t, cfg)

	run(t, a, func(base string) {
		first, _ := post(t, base+"/auth/register", `{"username":"eve","email":"eve@example.com","password":"password1"}`)
		second, _ := post(t, base+"/auth/register", `{"username":"eve2","email":"eve2@example.com","password":"password1"}`)
		if first.StatusCode != http.StatusCreated || second.StatusCode != http.StatusTooManyRequests {
			t.Errorf("expected 201 then 429, got %d then %d", first.StatusCode, second.StatusCode)
		}
	})
	if len(mr.Keys()) == 0 {
		t.Error("expected rate limit counters in redis")
	}
}

func TestBuild_MissingSecretIsFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JWT = &jwt.Config{}
	_, err := Build(cfg, bootstrap.WithLogger(logger.Nop()))
	if !errors.Is(err, jwt.ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"redis backend without redis", func(c *Config) {
			c.RateLimit = RateLimitConfig{Enabled: true, Backend: BackendRedis}
		}, true},
		{"unknown backend", func(c *Config) {
			c.RateLimit = RateLimitConfig{Enabled: true, Backend: "etcd"}
		}, true},
		{"bad window", func(c *Config) {
			c.RateLimit = RateLimitConfig{Enabled: true, Window: "0s"}
		}, true},
		{"unknown hash algorithm", func(c *Config) { c.Auth.Password.Algorithm = "md5" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			cfg.ApplyDefaults()
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if cfg.Name != ServiceName {
		t.Errorf("expected default name %s, got %s", ServiceName, cfg.Name)
	}
	if cfg.Auth.JWT.AccessTokenTTL != "1d" {
		t.Errorf("expected 1d token ttl, got %s", cfg.Auth.JWT.AccessTokenTTL)
	}
	if cfg.RateLimit.Backend != BackendMemory {
		t.Errorf("expected memory backend, got %s", cfg.RateLimit.Backend)
	}
}
