package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/kbukum/authgate/errors"
	"github.com/kbukum/authgate/logger"
)

// Recovery turns a panic into a 500 with the standard error body and logs
// the stack.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.WithContext(r.Context()).Error("Panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					logger.FieldMethod, r.Method,
					"path", r.URL.Path,
				))

				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(apperrors.Internal(nil).ToResponse())
			}()
			next.ServeHTTP(w, r)
		})
	}
}
