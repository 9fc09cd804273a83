package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/authgate/errors"
)

// Middleware wraps an http.Handler with additional behavior.
// Transport concerns (recovery, request ids, CORS, body limits, access logs)
// are Middleware applied around the whole engine. Concerns that need the
// matched route (guard, rate limits, telemetry) are gin.HandlerFunc.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middleware. The first in the list is the outermost
// (runs first on a request, last on a response).
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// abortWithError stops the gin chain with the AppError body for err.
func abortWithError(c *gin.Context, err error) {
	app := apperrors.Resolve(err)
	c.AbortWithStatusJSON(app.HTTPStatus, app.ToResponse())
}
