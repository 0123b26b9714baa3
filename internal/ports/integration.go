package ports

import (
	"context"
	"encoding/json"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/ids"
)

// DiscoveredDevice is what an Integration reports at setup: a Device and
// the Entities it owns. Entities are not yet persisted; the
// host assigns identity and writes them through the repositories.
type DiscoveredDevice struct {
	Device   domain.Device
	Entities []domain.Entity
}

// Integration is a pluggable external protocol binding (e.g. "virtual",
// "ble", "mqtt"). Integrations must not depend on each other and must
// not touch the event bus directly: state changes they make are
// published only after the host writes them through EntityRepo.
type Integration interface {
	// Name returns the integration's static identifier.
	Name() string
	// Setup is called once at startup and returns the devices and
	// entities this integration discovers.
	Setup(ctx context.Context) ([]DiscoveredDevice, error)
	// HandleServiceCall is invoked when a service call targets an
	// entity this integration owns, returning the entity's new state.
	HandleServiceCall(ctx context.Context, entityID ids.EntityID, service string, data json.RawMessage) (domain.Entity, error)
	// Teardown is called once on graceful shutdown.
	Teardown(ctx context.Context) error
}
