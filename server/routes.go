package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is one entry of the static route table.
type Route struct {
	// Name identifies the route in logs (e.g. "auth.login").
	Name string
	// Method is the HTTP method.
	Method string
	// Path is the gin route pattern.
	Path string
	// Public routes are served without authentication.
	Public bool
	// Handler serves the route.
	Handler gin.HandlerFunc
	// Middleware runs before Handler, after the global chain and the guard.
	Middleware []gin.HandlerFunc
}

// Table is the route table built once at startup. It is read-only after
// NewTable returns and safe for concurrent use.
type Table struct {
	routes []Route
	public map[string]bool
}

// NewTable validates routes and builds the lookup index. Empty fields and
// duplicate method+path pairs are rejected.
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{
		routes: make([]Route, 0, len(routes)),
		public: make(map[string]bool, len(routes)),
	}
	for _, r := range routes {
		if r.Method == "" || r.Path == "" || r.Handler == nil {
			return nil, fmt.Errorf("server: route %q needs a method, path and handler", r.Name)
		}
		key := routeKey(r.Method, r.Path)
		if _, dup := t.public[key]; dup {
			return nil, fmt.Errorf("server: duplicate route %s %s", r.Method, r.Path)
		}
		t.public[key] = r.Public
		t.routes = append(t.routes, r)
	}
	return t, nil
}

// IsPublic reports whether the route matched as method + fullPath is public.
// Unknown routes are not public.
func (t *Table) IsPublic(method, fullPath string) bool {
	if method == http.MethodHead {
		method = http.MethodGet
	}
	return t.public[routeKey(method, fullPath)]
}

// Routes returns a copy of the table entries.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Mount registers every route on r.
func (t *Table) Mount(r gin.IRoutes) {
	for _, route := range t.routes {
		handlers := append(append([]gin.HandlerFunc{}, route.Middleware...), route.Handler)
		r.Handle(route.Method, route.Path, handlers...)
	}
}

func routeKey(method, path string) string {
	return method + " " + path
}
