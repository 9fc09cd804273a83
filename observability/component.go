package observability

import (
	"context"
	"errors"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/authgate/component"
	"github.com/kbukum/authgate/logger"
)

// Component installs the OTLP providers on start and flushes them on stop.
type Component struct {
	cfg  Config
	info ServiceInfo
	log  *logger.Logger

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// NewComponent creates the telemetry component.
func NewComponent(cfg Config, info ServiceInfo, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, info: info, log: log.WithComponent("observability")}
}

// Name implements component.Component.
func (c *Component) Name() string { return "observability" }

// Start implements component.Component.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Debug("Telemetry export disabled")
		return nil
	}
	tp, err := InitTracer(ctx, &c.cfg, c.info)
	if err != nil {
		return err
	}
	mp, err := InitMeter(ctx, &c.cfg, c.info)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}
	c.tp, c.mp = tp, mp
	c.log.Info("Telemetry export started", logger.Fields(
		"endpoint", c.cfg.Endpoint,
		"sample_rate", c.cfg.SampleRate,
		"interval", c.cfg.Interval,
	))
	return nil
}

// Stop implements component.Component.
func (c *Component) Stop(ctx context.Context) error {
	var errs []error
	if c.tp != nil {
		errs = append(errs, c.tp.Shutdown(ctx))
		c.tp = nil
	}
	if c.mp != nil {
		errs = append(errs, c.mp.Shutdown(ctx))
		c.mp = nil
	}
	return errors.Join(errs...)
}

// Health implements component.Component.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.cfg.Enabled {
		h.Message = "export disabled"
	}
	return h
}
