// Package integration implements the pluggable external protocol
// binding contract (internal/ports.Integration) and the host that
// owns the entity-to-integration routing table.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hearthhub/hub/internal/automation"
	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/hublog"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
)

// Host owns the set of registered Integrations, their discovered
// devices/entities, and the entity_id -> integration routing table
// used to dispatch service calls. Integrations never touch
// the bus directly: the host writes through EntityRepo and publishes
// on their behalf.
type Host struct {
	integrations []ports.Integration

	devices  ports.DeviceRepo
	entities ports.EntityRepo
	bus      ports.EventBus
	log      hublog.Logger

	mu      sync.RWMutex
	routing map[ids.EntityID]ports.Integration
}

// NewHost builds a Host over the given repositories and bus.
func NewHost(devices ports.DeviceRepo, entities ports.EntityRepo, bus ports.EventBus, log hublog.Logger) *Host {
	return &Host{
		devices:  devices,
		entities: entities,
		bus:      bus,
		log:      log.With("component", "integration-host"),
		routing:  make(map[ids.EntityID]ports.Integration),
	}
}

// Register adds an integration to the host. Must be called before
// Setup.
func (h *Host) Register(integ ports.Integration) {
	h.integrations = append(h.integrations, integ)
}

// Setup calls Setup on every registered integration, upserting the
// discovered devices and entities and populating the routing table.
// Devices upsert on (integration, unique_id); entities upsert on
// (device_id, entity_slug).
func (h *Host) Setup(ctx context.Context) error {
	for _, integ := range h.integrations {
		discovered, err := integ.Setup(ctx)
		if err != nil {
			return fmt.Errorf("setup integration %q: %w", integ.Name(), err)
		}
		for _, dd := range discovered {
			if err := h.upsert(ctx, integ, dd); err != nil {
				return fmt.Errorf("upsert discovery from %q: %w", integ.Name(), err)
			}
		}
		h.log.Info("integration setup complete", "integration", integ.Name(), "devices", len(discovered))
	}
	return nil
}

func (h *Host) upsert(ctx context.Context, integ ports.Integration, dd ports.DiscoveredDevice) error {
	device, exists, err := h.devices.FindByIntegrationUniqueID(ctx, dd.Device.Integration, dd.Device.UniqueID)
	if err != nil {
		return err
	}
	if exists {
		device.Name = dd.Device.Name
		device.Manufacturer = dd.Device.Manufacturer
		device.Model = dd.Device.Model
		device.AreaID = dd.Device.AreaID
		if err := h.devices.Update(ctx, device); err != nil {
			return err
		}
	} else {
		device = dd.Device
		if err := h.devices.Create(ctx, device); err != nil {
			return err
		}
	}

	for _, entity := range dd.Entities {
		entity.DeviceID = device.ID
		existing, exists, err := h.entities.FindByEntitySlug(ctx, entity.EntitySlug)
		if err != nil {
			return err
		}
		if exists && existing.DeviceID == device.ID {
			entity.ID = existing.ID
			if err := h.entities.Update(ctx, entity); err != nil {
				return err
			}
		} else if !exists {
			if err := h.entities.Create(ctx, entity); err != nil {
				return err
			}
		} else {
			continue // slug collision with a different device: leave routing untouched
		}

		h.mu.Lock()
		h.routing[entity.ID] = integ
		h.mu.Unlock()
	}
	return nil
}

// CallService dispatches a service call for entityID. If an integration
// owns the entity, the call is routed to it; otherwise the core's
// internal state-mapping is used. Either way, the resulting state is
// written through EntityRepo, and a StateChanged event is published on
// the bus only after that write succeeds and only if the state
// changed. An internal service name with no mapping writes nothing and
// returns the entity as stored.
func (h *Host) CallService(ctx context.Context, entityID ids.EntityID, service string, data json.RawMessage) (domain.Entity, error) {
	h.mu.RLock()
	owner, owned := h.routing[entityID]
	h.mu.RUnlock()

	if owned {
		return h.dispatchToIntegration(ctx, owner, entityID, service, data)
	}
	return h.dispatchInternally(ctx, entityID, service)
}

func (h *Host) dispatchToIntegration(ctx context.Context, integ ports.Integration, entityID ids.EntityID, service string, data json.RawMessage) (domain.Entity, error) {
	before, ok, err := h.entities.GetByID(ctx, entityID)
	if err != nil {
		return domain.Entity{}, err
	}
	if !ok {
		return domain.Entity{}, huberr.NotFoundf("entity", "entity %s not found", entityID.String())
	}

	result, err := integ.HandleServiceCall(ctx, entityID, service, data)
	if err != nil {
		return domain.Entity{}, err
	}

	// Only the mutable observation (state, attributes) comes from the
	// integration; identity and placement (device_id, entity_id slug,
	// friendly_name) remain whatever the repository already has on
	// record, so a service call can never clobber them even if an
	// integration's own view of those fields is stale.
	updated := before
	updated.Attributes = result.Attributes
	updated.UpdateState(result.State, result.LastUpdated)
	if err := h.entities.Update(ctx, updated); err != nil {
		return domain.Entity{}, err
	}
	h.publishIfChanged(before, updated)
	return updated, nil
}

func (h *Host) dispatchInternally(ctx context.Context, entityID ids.EntityID, service string) (domain.Entity, error) {
	entity, ok, err := h.entities.GetByID(ctx, entityID)
	if err != nil {
		return domain.Entity{}, err
	}
	if !ok {
		return domain.Entity{}, huberr.NotFoundf("entity", "entity %s not found", entityID.String())
	}

	target, mapped := automation.ServiceToState(service, entity.State)
	if !mapped {
		return entity, nil
	}

	before := entity
	entity.UpdateState(target, time.Now().UTC())
	if err := h.entities.Update(ctx, entity); err != nil {
		return domain.Entity{}, err
	}
	h.publishIfChanged(before, entity)
	return entity, nil
}

func (h *Host) publishIfChanged(before, after domain.Entity) {
	if before.State == after.State {
		return
	}
	h.bus.Publish(domain.NewEvent(domain.EventStateChanged, &after.ID, domain.StateChangeData{
		From: before.State.String(),
		To:   after.State.String(),
	}, after.LastUpdated))
}

// Teardown calls Teardown on every registered integration, logging but
// not aborting on the first failure so every integration gets a chance
// to release its resources.
func (h *Host) Teardown(ctx context.Context) {
	for _, integ := range h.integrations {
		if err := integ.Teardown(ctx); err != nil {
			h.log.Error("integration teardown failed", "integration", integ.Name(), "error", err)
		}
	}
}
