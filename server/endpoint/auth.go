package endpoint

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authgate/auth"
	"github.com/kbukum/authgate/auth/authctx"
	"github.com/kbukum/authgate/credential"
	apperrors "github.com/kbukum/authgate/errors"
	"github.com/kbukum/authgate/server"
)

// Authenticator is the part of auth.Service the handlers use.
type Authenticator interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Result, error)
	Login(ctx context.Context, in auth.LoginInput) (*auth.Result, error)
	Principal(ctx context.Context, id int64) (credential.Principal, error)
}

// Register handles POST /auth/register and answers 201 with the issued token.
func Register(svc Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in auth.RegisterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			server.RespondWithError(c, badBody(err))
			return
		}
		res, err := svc.Register(c.Request.Context(), in)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondCreated(c, res)
	}
}

// Login handles POST /auth/login and answers 200 with the issued token.
func Login(svc Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in auth.LoginInput
		if err := c.ShouldBindJSON(&in); err != nil {
			server.RespondWithError(c, badBody(err))
			return
		}
		res, err := svc.Login(c.Request.Context(), in)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondOK(c, res)
	}
}

// Me handles GET /auth/me. The record is read again so the answer reflects
// the store, not the snapshot the guard attached.
func Me(svc Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := authctx.FromGin(c)
		if !ok {
			server.RespondWithError(c, apperrors.Unauthenticated())
			return
		}
		current, err := svc.Principal(c.Request.Context(), p.ID)
		if err != nil {
			if apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
				err = apperrors.Unauthenticated()
			}
			server.RespondWithError(c, err)
			return
		}
		server.RespondOK(c, gin.H{"user": current})
	}
}

// badBody reports an unreadable or oversized JSON body.
func badBody(err error) *apperrors.AppError {
	return apperrors.Validation("Request body must be a JSON object").WithCause(err)
}

