// Package app assembles authgate from its configuration: components,
// credential store, token service, guard, route table and HTTP server.
package app
