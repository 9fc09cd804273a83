package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/authgate/logger"
)

// Client wraps a go-redis client with authgate logging.
type Client struct {
	rdb    goredis.UniversalClient
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// New creates a new Redis client. It does not dial; call Ping to verify.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if !cfg.Enabled {
		return nil, fmt.Errorf("redis is disabled")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}

	dialTimeout, _ := time.ParseDuration(cfg.DialTimeout)
	readTimeout, _ := time.ParseDuration(cfg.ReadTimeout)
	writeTimeout, _ := time.ParseDuration(cfg.WriteTimeout)
	poolTimeout, _ := time.ParseDuration(cfg.PoolTimeout)
	tlsConfig, err := cfg.TLS.Build()
	if err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		PoolTimeout:  poolTimeout,
		TLSConfig:    tlsConfig,
	})

	log.Info("Redis client created", logger.Fields(
		"addr", cfg.Addr,
		"db", cfg.DB,
		"pool_size", cfg.PoolSize,
		"tls", tlsConfig != nil,
	))
	return &Client{rdb: rdb, log: log, cfg: cfg}, nil
}

// Ping verifies the Redis connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	pong, err := c.rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if pong != "PONG" {
		return fmt.Errorf("unexpected redis ping response: %s", pong)
	}
	return nil
}

// Key prefixes k with the configured namespace.
func (c *Client) Key(k string) string {
	return c.cfg.KeyPrefix + k
}

// Close closes the Redis connection. Safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.log.Info("Closing Redis connection")
	c.closed = true
	return c.rdb.Close()
}

// Unwrap returns the underlying go-redis client.
func (c *Client) Unwrap() goredis.UniversalClient {
	return c.rdb
}
