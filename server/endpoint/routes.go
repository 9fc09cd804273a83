package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authgate/server"
)

// Deps are the collaborators the service routes need.
type Deps struct {
	Auth        Authenticator
	Health      HealthChecker
	ServiceName string
	Version     string
	// CredentialLimit, when set, runs before register and login.
	CredentialLimit gin.HandlerFunc
}

// Routes returns the service route table entries. Only /auth/me needs a token.
func Routes(d Deps) []server.Route {
	var limited []gin.HandlerFunc
	if d.CredentialLimit != nil {
		limited = []gin.HandlerFunc{d.CredentialLimit}
	}
	return []server.Route{
		{Name: "auth.register", Method: http.MethodPost, Path: "/auth/register", Public: true, Handler: Register(d.Auth), Middleware: limited},
		{Name: "auth.login", Method: http.MethodPost, Path: "/auth/login", Public: true, Handler: Login(d.Auth), Middleware: limited},
		{Name: "auth.me", Method: http.MethodGet, Path: "/auth/me", Handler: Me(d.Auth)},
		{Name: "healthz", Method: http.MethodGet, Path: "/healthz", Public: true, Handler: Healthz()},
		{Name: "health", Method: http.MethodGet, Path: "/health", Public: true, Handler: Health(d.ServiceName, d.Version, d.Health)},
	}
}
