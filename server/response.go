package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/authgate/errors"
)

// RespondWithError writes the status and body for err. Non-AppErrors become
// a generic 500 without leaking their text.
func RespondWithError(c *gin.Context, err error) {
	app := apperrors.Resolve(err)
	c.AbortWithStatusJSON(app.HTTPStatus, app.ToResponse())
}

// RespondOK sends a 200 response with data as the body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 response with data as the body.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}
