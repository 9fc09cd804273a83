package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/util"
)

// DB wraps a GORM database with authgate logging.
type DB struct {
	GormDB *gorm.DB
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// Open connects using the dialector for cfg.Driver.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	dialector, err := Dialector(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return NewWithContext(ctx, dialector, cfg, log)
}

// Dialector returns the GORM dialector for a driver name.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", driver)
	}
}

// NewWithContext creates a database connection with context-aware retry logic.
// Driver errors are translated, so unique violations surface as gorm.ErrDuplicatedKey.
func NewWithContext(ctx context.Context, dialector gorm.Dialector, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	log = log.WithComponent("database")

	slowThreshold, _ := time.ParseDuration(cfg.SlowQueryThreshold)
	gormCfg := &gorm.Config{
		Logger:         newGormLogger(log, slowThreshold, parseLogLevel(cfg.LogLevel)),
		TranslateError: true,
	}

	var err error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("database connection canceled: %w", ctx.Err())
		}

		var db *DB
		db, err = connect(ctx, dialector, gormCfg, cfg)
		if err == nil {
			db.log = log
			log.Info("Database connection established", logger.Fields(
				"driver", cfg.Driver,
				"dsn", util.MaskDSN(cfg.DSN),
				"attempt", attempt,
			))
			return db, nil
		}

		if attempt < cfg.MaxRetries {
			backoff := time.Duration(attempt) * time.Second
			log.Warn("Database connection attempt failed, retrying", logger.Fields(
				"attempt", attempt,
				logger.FieldError, err.Error(),
				"backoff", backoff.String(),
			))
			if waitErr := contextSleep(ctx, backoff); waitErr != nil {
				return nil, fmt.Errorf("database connection canceled during retry: %w", waitErr)
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.MaxRetries, err)
}

func connect(ctx context.Context, dialector gorm.Dialector, gormCfg *gorm.Config, cfg Config) (*DB, error) {
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		sqlDB.SetConnMaxLifetime(lifetime)
	}
	if idle, err := time.ParseDuration(cfg.ConnMaxIdleTime); err == nil {
		sqlDB.SetConnMaxIdleTime(idle)
	}
	return &DB{GormDB: db, cfg: cfg}, nil
}

// contextSleep waits for the given duration or until context is canceled.
func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Driver returns the configured driver name.
func (d *DB) Driver() string { return d.cfg.Driver }

// Close closes the underlying sql.DB connection pool. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.log.Info("Closing database connection")
	d.closed = true
	return sqlDB.Close()
}

// PingContext verifies the database connection is alive.
func (d *DB) PingContext(ctx context.Context) error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithContext returns a GORM session scoped to the given context.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// --- GORM logger adapter ---

// parseLogLevel converts a string log level to GORM's LogLevel.
func parseLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

type gormLoggerAdapter struct {
	log           *logger.Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(log *logger.Logger, slowThreshold time.Duration, logLevel gormlogger.LogLevel) gormlogger.Interface {
	return &gormLoggerAdapter{
		log:           log.WithComponent("gorm"),
		logLevel:      logLevel,
		slowThreshold: slowThreshold,
	}
}

func (l *gormLoggerAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLoggerAdapter{log: l.log, logLevel: level, slowThreshold: l.slowThreshold}
}

func (l *gormLoggerAdapter) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Info {
		l.log.WithContext(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLoggerAdapter) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Warn {
		l.log.WithContext(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLoggerAdapter) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Error {
		l.log.WithContext(ctx).Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs statements. Bound values stay out of the log: the SQL text
// for credential inserts carries password hashes.
func (l *gormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	_, rows := fc()
	fields := logger.Fields("duration", elapsed.String(), "rows", rows)
	log := l.log.WithContext(ctx)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey):
		fields[logger.FieldError] = err.Error()
		log.Error("Query error", fields)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		log.Warn("Slow query", fields)
	case l.logLevel >= gormlogger.Info:
		log.Debug("Query", fields)
	}
}
