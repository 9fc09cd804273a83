// Package component defines the lifecycle contract shared by authgate's
// infrastructure pieces (database, redis, HTTP server) and a registry that
// starts them in order and stops them in reverse.
package component
