package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authgate/auth"
	"github.com/kbukum/authgate/auth/guard"
	"github.com/kbukum/authgate/auth/jwt"
	"github.com/kbukum/authgate/auth/password"
	"github.com/kbukum/authgate/bootstrap"
	"github.com/kbukum/authgate/config"
	"github.com/kbukum/authgate/credential"
	"github.com/kbukum/authgate/database"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/observability"
	"github.com/kbukum/authgate/redis"
	"github.com/kbukum/authgate/server"
	"github.com/kbukum/authgate/server/endpoint"
	"github.com/kbukum/authgate/server/middleware"
)

// App is the assembled service.
type App struct {
	*bootstrap.App[*Config]

	Server *server.Server
	// Store is set once the server has started.
	Store credential.Store
}

// Build validates cfg and assembles the service. Configuration problems,
// including a missing signing secret or a hasher that fails its probe, are
// returned here and must stop the process.
func Build(cfg *Config, opts ...bootstrap.Option) (*App, error) {
	base, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}
	log := base.Logger

	tokens, err := jwt.NewService(cfg.Auth.JWT)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}
	hasher := password.NewHasher(*cfg.Auth.Password)
	if err := password.Probe(hasher); err != nil {
		return nil, err
	}

	meter := observability.Meter(cfg.Name)
	authMetrics, err := observability.NewAuthMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("auth metrics: %w", err)
	}
	httpMetrics, err := observability.NewHTTPMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	a := &App{App: base}
	info := observability.ServiceInfo{Name: cfg.Name, Version: cfg.Version, Environment: cfg.Environment}
	if err := a.RegisterComponent(observability.NewComponent(cfg.Observability, info, log)); err != nil {
		return nil, err
	}

	var dbComp *database.Component
	if cfg.Database.Enabled {
		dbComp = database.NewComponent(cfg.Database, log)
		if err := a.RegisterComponent(dbComp); err != nil {
			return nil, err
		}
	} else {
		log.Warn("Database disabled, credentials are kept in memory")
	}

	var redisComp *redis.Component
	if cfg.Redis.Enabled {
		redisComp = redis.NewComponent(cfg.Redis, log)
		if err := a.RegisterComponent(redisComp); err != nil {
			return nil, err
		}
	}

	a.Server = server.New(cfg.Server, log)
	a.Server.ApplyMiddleware()
	a.Server.BeforeStart(func(ctx context.Context) error {
		if dbComp != nil {
			a.Store = credential.NewGormStore(dbComp.DB())
		} else {
			a.Store = credential.NewMemoryStore()
		}

		svc := auth.NewService(a.Store, hasher, tokens,
			auth.WithLogger(log), auth.WithMetrics(authMetrics))
		g := guard.New(tokens, a.Store,
			guard.WithLogger(log), guard.WithMetrics(authMetrics))

		limit, err := credentialLimit(cfg.RateLimit, redisComp, log)
		if err != nil {
			return err
		}
		table, err := server.NewTable(endpoint.Routes(endpoint.Deps{
			Auth:            svc,
			Health:          a.Components.HealthAll,
			ServiceName:     cfg.Name,
			Version:         cfg.Version,
			CredentialLimit: limit,
		})...)
		if err != nil {
			return err
		}

		engine := a.Server.GinEngine()
		engine.Use(middleware.Telemetry(httpMetrics), middleware.Guard(g, table))
		table.Mount(engine)

		log.Info("Routes mounted", logger.Fields(
			"routes", len(table.Routes()),
			"auth", cfg.Auth.Describe(),
		))
		return nil
	})
	if err := a.RegisterComponent(server.NewComponent(a.Server)); err != nil {
		return nil, err
	}
	return a, nil
}

// credentialLimit builds the register/login rate limiter, or nil when disabled.
func credentialLimit(cfg RateLimitConfig, redisComp *redis.Component, log *logger.Logger) (gin.HandlerFunc, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	window, err := config.ParseDuration(cfg.Window)
	if err != nil {
		return nil, err
	}

	var limiter middleware.Limiter
	switch cfg.Backend {
	case BackendRedis:
		if redisComp == nil || redisComp.Client() == nil {
			return nil, fmt.Errorf("rate limit: redis is not running")
		}
		limiter = redis.NewLimiter(redisComp.Client(), cfg.Requests, window)
	default:
		limiter = middleware.NewMemoryLimiter(cfg.Requests, window)
	}
	return middleware.RateLimit(middleware.RateLimitConfig{Limiter: limiter, Log: log}), nil
}
