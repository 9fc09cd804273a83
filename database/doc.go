// Package database opens the credential database through GORM, applies the
// embedded schema migrations with golang-migrate, and exposes the connection
// as a lifecycle component.
//
// Two drivers are supported: "sqlite" (mattn/go-sqlite3) and "postgres"
// (pgx). Both create case-insensitive unique indexes on username and email,
// so uniqueness is enforced by the database itself.
//
//	database:
//	  enabled: true
//	  driver: postgres
//	  dsn: "host=localhost user=authgate dbname=authgate sslmode=disable"
//	  auto_migrate: true
package database
