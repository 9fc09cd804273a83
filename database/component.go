package database

import (
	"context"
	"fmt"

	"github.com/kbukum/authgate/component"
	"github.com/kbukum/authgate/logger"
)

// Component wraps DB and implements component.Component for lifecycle management.
type Component struct {
	db  *DB
	cfg Config
	log *logger.Logger
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a database component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log,
	}
}

// DB returns the underlying *DB, or nil if not started.
func (c *Component) DB() *DB {
	return c.db
}

// Name returns the component name.
func (c *Component) Name() string { return "database" }

// Start connects to the database and applies migrations when enabled.
func (c *Component) Start(ctx context.Context) error {
	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	c.db = db

	if c.cfg.AutoMigrate {
		if err := c.db.MigrateUp(); err != nil {
			_ = c.db.Close()
			return fmt.Errorf("database migrate: %w", err)
		}
	}
	return nil
}

// Stop gracefully closes the database connection.
func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Health returns the current health status of the database.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "database not initialized",
		}
	}
	if err := c.db.PingContext(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}
	return component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
	}
}
