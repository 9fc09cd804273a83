// Package authctx carries the authenticated principal through a request.
//
// The route guard stores the principal after re-resolving it from the
// credential store; handlers read it back:
//
//	p, ok := authctx.PrincipalFrom(ctx)
//
// Gin handlers use SetGin and FromGin, which keep the gin context and the
// request context in sync.
package authctx

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authgate/credential"
)

// GinKey is the gin context key holding the principal.
const GinKey = "principal"

// contextKey is an unexported type to prevent collisions with other packages.
type contextKey struct{}

var principalKey = contextKey{}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p credential.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal stored in ctx.
func PrincipalFrom(ctx context.Context) (credential.Principal, bool) {
	p, ok := ctx.Value(principalKey).(credential.Principal)
	return p, ok
}

// SetGin attaches the principal to both the gin context and its request context.
func SetGin(c *gin.Context, p credential.Principal) {
	c.Set(GinKey, p)
	c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
}

// FromGin returns the principal attached by SetGin.
func FromGin(c *gin.Context) (credential.Principal, bool) {
	if v, ok := c.Get(GinKey); ok {
		if p, ok := v.(credential.Principal); ok {
			return p, true
		}
	}
	return PrincipalFrom(c.Request.Context())
}
