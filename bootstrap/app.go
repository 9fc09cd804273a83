package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/authgate/component"
	"github.com/kbukum/authgate/logger"
)

// App runs a service through a uniform lifecycle. C is the config type; any
// struct embedding config.ServiceConfig satisfies Config.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    return nil
//	})
//	app.Run(ctx)
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults, validates cfg and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	o := resolveOptions(opts)
	log := o.logger
	if log == nil {
		log = logger.Init(base.Logging, base.Name)
	}

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(log),
		Logger:          log,
		gracefulTimeout: o.gracefulTimeout,
	}, nil
}

// RegisterComponent adds a component to the registry. Components start in
// registration order and stop in reverse.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback for the configure phase, which runs after
// every component has started.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck fails if any registered component is unhealthy. Degraded
// components are reported by /health but do not block readiness.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusUnhealthy {
			continue
		}
		detail := h.Name
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(unhealthy, ", "))
	}
	return nil
}

// Run starts the service, blocks until SIGINT/SIGTERM or ctx is done, then
// shuts down gracefully.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}
	a.WaitForSignal(ctx)
	return a.stop()
}

// RunTask runs a finite task inside the same lifecycle. The task context is
// canceled on SIGINT/SIGTERM; components are stopped once it returns.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	taskErr := task(taskCtx)
	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		a.abort()
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	if err := a.configure(ctx); err != nil {
		a.abort()
		return fmt.Errorf("configuration failed: %w", err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		a.abort()
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Logger.Info("Application ready", logger.Fields(
		"startup_ms", time.Since(start).Milliseconds(),
	))
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// abort stops started components after a failed startup.
func (a *App[C]) abort() {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Cleanup after failed startup", logger.Fields(logger.FieldError, err.Error()))
	}
}

// WaitForSignal blocks until SIGINT/SIGTERM or ctx is done.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown stops the application. Use it when driving the lifecycle manually.
func (a *App[C]) Shutdown(_ context.Context) error {
	return a.stop()
}

func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
