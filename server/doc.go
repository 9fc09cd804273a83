// Package server is the HTTP transport: a gin engine behind transport
// middleware, served with HTTP/2 cleartext support.
//
// Routes come from a static Table built at startup. Each entry says whether
// the route is public; the guard middleware consults the table by matched
// route pattern, and unknown routes are treated as protected.
//
// Transport middleware (server/middleware), outermost first:
//
//   - Recovery: panic recovery with the standard error body
//   - RequestID: X-Request-Id generation and propagation
//   - CORS: cross-origin headers and preflight
//   - BodySizeLimit: request body cap
//   - RequestLogger: access log without headers
//
// Gin middleware: Telemetry, Guard, and per-route RateLimit.
//
// Endpoints live in server/endpoint.
package server
