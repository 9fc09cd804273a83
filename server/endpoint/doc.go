// Package endpoint holds the HTTP handlers and the route table entries that
// expose them.
package endpoint
