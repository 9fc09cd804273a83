package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/authgate/logger"
)

// quietPaths are probe endpoints excluded from access logs.
var quietPaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
}

// RequestLogger logs every request with method, path, status and duration.
// Headers are never logged: Authorization carries bearer tokens.
func RequestLogger(log *logger.Logger) Middleware {
	log = log.WithComponent("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := newAccessRecorder(w)
			next.ServeHTTP(rec, r)
			duration := time.Since(start)
			status := rec.Status()

			fields := logger.Fields(
				logger.FieldMethod, r.Method,
				"path", r.URL.Path,
				logger.FieldStatus, status,
				"bytes", rec.bytes,
				logger.FieldDuration, duration.Milliseconds(),
				logger.FieldClientIP, clientIP(r),
			)
			logByStatus(log.WithContext(r.Context()), fields, status)
		})
	}
}

// logByStatus logs request fields at the appropriate level based on HTTP status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
