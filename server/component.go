package server

import (
	"context"

	"github.com/kbukum/authgate/component"
)

const componentName = "http-server"

var _ component.Component = (*Component)(nil)

// Component wraps Server to implement component.Component.
type Component struct {
	server *Server
}

// NewComponent returns a component.Component backed by the given Server.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name returns the component name used for registration.
func (sc *Component) Name() string { return componentName }

// Start starts the underlying HTTP server.
func (sc *Component) Start(ctx context.Context) error {
	return sc.server.Start(ctx)
}

// Stop gracefully shuts down the underlying HTTP server.
func (sc *Component) Stop(ctx context.Context) error {
	return sc.server.Stop(ctx)
}

// Health reports whether the server is accepting connections.
func (sc *Component) Health(ctx context.Context) component.Health {
	if sc.server.Running() {
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	}
	return component.Health{
		Name:    componentName,
		Status:  component.StatusUnhealthy,
		Message: "HTTP server not running",
	}
}
