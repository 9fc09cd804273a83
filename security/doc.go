// Package security builds client TLS settings for outbound connections.
package security
