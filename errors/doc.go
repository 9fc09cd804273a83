// Package errors provides the structured error type shared by every layer of
// authgate. An AppError carries a machine code, a client-safe message, the
// HTTP status it maps to and optional details; the transport renders it as
// an RFC 7807 style body.
package errors
