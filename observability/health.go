package observability

import "github.com/kbukum/authgate/component"

// HealthStatus represents the health state of the service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// ServiceHealth describes the overall health of a service and its components.
type ServiceHealth struct {
	Service    string             `json:"service"`
	Status     HealthStatus       `json:"status"`
	Version    string             `json:"version,omitempty"`
	Components []component.Health `json:"components,omitempty"`
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent adds a component health result and degrades overall status if needed.
func (sh *ServiceHealth) AddComponent(h component.Health) {
	sh.Components = append(sh.Components, h)

	switch h.Status {
	case component.StatusUnhealthy:
		sh.Status = HealthStatusDown
	case component.StatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}

// Aggregate builds a ServiceHealth from component results.
func Aggregate(service, version string, components []component.Health) *ServiceHealth {
	sh := NewServiceHealth(service, version)
	for _, h := range components {
		sh.AddComponent(h)
	}
	return sh
}
