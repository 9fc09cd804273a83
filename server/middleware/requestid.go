package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kbukum/authgate/logger"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

// maxRequestIDLen bounds ids accepted from clients.
const maxRequestIDLen = 128

// RequestID ensures every request has an id. A client-supplied id is kept
// when it is short enough; otherwise a UUID is generated. The id is echoed in
// the response and attached to the request context for logging.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.New().String()
				r.Header.Set(HeaderRequestID, id)
			}
			w.Header().Set(HeaderRequestID, id)
			next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), id)))
		})
	}
}
