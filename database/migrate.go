package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/kbukum/authgate/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// driverFunc creates a migrate database driver from sql.DB.
type driverFunc func(*sql.DB) (migratedb.Driver, error)

func migrationDriver(driver string) (driverFunc, error) {
	switch driver {
	case DriverSQLite:
		return func(db *sql.DB) (migratedb.Driver, error) {
			return migratesqlite.WithInstance(db, &migratesqlite.Config{})
		}, nil
	case DriverPostgres:
		return func(db *sql.DB) (migratedb.Driver, error) {
			return migratepg.WithInstance(db, &migratepg.Config{})
		}, nil
	default:
		return nil, fmt.Errorf("database: no migrations for driver %q", driver)
	}
}

// MigrateUp applies all pending migrations for the connection's driver.
func (d *DB) MigrateUp() error {
	m, err := d.newMigrator()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	version, dirty, _ := m.Version()
	d.log.Info("Migrations applied", logger.Fields("version", version, "dirty", dirty))
	return nil
}

// MigrateDown rolls back every migration.
func (d *DB) MigrateDown() error {
	m, err := d.newMigrator()
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// MigrateVersion returns the current migration version and dirty flag.
func (d *DB) MigrateVersion() (version uint, dirty bool, err error) {
	m, err := d.newMigrator()
	if err != nil {
		return 0, false, err
	}
	return m.Version()
}

// newMigrator builds a golang-migrate instance over the embedded SQL.
// The migrator must not be closed: that would close the shared sql.DB.
func (d *DB) newMigrator() (*migrate.Migrate, error) {
	newDriver, err := migrationDriver(d.cfg.Driver)
	if err != nil {
		return nil, err
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	driver, err := newDriver(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations/"+d.cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, d.cfg.Driver, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
