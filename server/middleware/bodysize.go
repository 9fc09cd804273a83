package middleware

import (
	"net/http"

	"github.com/kbukum/authgate/util"
)

const defaultMaxBodySize = 1 << 20 // 1MB

// BodySizeLimit restricts the request body to the given size string
// (e.g. "1MB", "64KB"). Reads past the limit fail, which the JSON binding in
// the handlers reports as invalid input.
func BodySizeLimit(maxSize string) Middleware {
	size := util.SizeOr(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > size {
				w.Header().Set("Connection", "close")
			}
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
