package observability

import (
	"context"

	"github.com/skillsenselab/murmur/component"
)

// HealthStatus is the service-level health state reported to clients.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// ServiceHealth is the roll-up of every registered component's health,
// suitable for a health endpoint payload. The journal store, the model
// manager, and the event hub each contribute one entry.
type ServiceHealth struct {
	Service    string             `json:"service"`
	Status     HealthStatus       `json:"status"`
	Version    string             `json:"version,omitempty"`
	Components []component.Health `json:"components,omitempty"`
}

// CollectHealth checks every component in the registry and rolls the
// results up: one unhealthy component takes the service down, one
// degraded component (and nothing worse) marks it degraded.
func CollectHealth(ctx context.Context, service, version string, reg *component.Registry) *ServiceHealth {
	sh := &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
	if reg == nil {
		return sh
	}
	for _, ch := range reg.HealthAll(ctx) {
		sh.add(ch)
	}
	return sh
}

func (sh *ServiceHealth) add(ch component.Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case component.StatusUnhealthy:
		sh.Status = HealthStatusDown
	case component.StatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}
