package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/authgate/auth/authctx"
	"github.com/kbukum/authgate/auth/guard"
	"github.com/kbukum/authgate/logger"
)

// PublicRoutes reports whether a matched route skips authentication.
// Implementations must treat unknown routes as non-public.
type PublicRoutes interface {
	IsPublic(method, fullPath string) bool
}

// Guard runs the route guard on every request. It looks up the matched route
// pattern (not the raw path) in routes. Rejected requests are aborted with
// the error body; admitted ones carry the principal via authctx.
func Guard(g *guard.Guard, routes PublicRoutes) gin.HandlerFunc {
	return func(c *gin.Context) {
		public := routes.IsPublic(c.Request.Method, c.FullPath())
		decision, err := g.Check(c.Request.Context(), public, c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		if decision.Principal != nil {
			ctx := logger.ContextWithPrincipalID(c.Request.Context(), decision.Principal.ID)
			c.Request = c.Request.WithContext(ctx)
			authctx.SetGin(c, *decision.Principal)
		}
		c.Next()
	}
}
