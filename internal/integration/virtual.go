package integration

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hearthhub/hub/internal/automation"
	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
)

// VirtualDeviceKind names the kind of a virtual entity.
type VirtualDeviceKind string

const (
	VirtualLight  VirtualDeviceKind = "light"
	VirtualSwitch VirtualDeviceKind = "switch"
	VirtualSensor VirtualDeviceKind = "sensor"
)

// VirtualSpec describes one device the Virtual integration should
// fabricate at setup, for local development (cmd/hubd) and the
// integration host tests.
type VirtualSpec struct {
	UniqueID     string
	Name         string
	Kind         VirtualDeviceKind
	EntitySlug   string
	FriendlyName string
	InitialState domain.EntityState
}

// Virtual is a sample Integration with no external dependency: every
// device and entity it reports lives in process memory. It models the
// shape the original adapter_virtual crate's light/switch/sensor
// devices take, adapted to this hub's Integration contract.
type Virtual struct {
	specs []VirtualSpec

	mu       sync.Mutex
	entities map[ids.EntityID]domain.Entity
}

var _ ports.Integration = (*Virtual)(nil)

// NewVirtual builds a Virtual integration that will report specs at
// Setup.
func NewVirtual(specs ...VirtualSpec) *Virtual {
	return &Virtual{
		specs:    specs,
		entities: make(map[ids.EntityID]domain.Entity),
	}
}

func (v *Virtual) Name() string { return "virtual" }

func (v *Virtual) Setup(_ context.Context) ([]ports.DiscoveredDevice, error) {
	discovered := make([]ports.DiscoveredDevice, 0, len(v.specs))
	for _, spec := range v.specs {
		device, err := domain.NewDeviceBuilder().
			WithName(spec.Name).
			WithIntegration(v.Name(), spec.UniqueID).
			Build()
		if err != nil {
			return nil, err
		}

		initial := spec.InitialState
		if initial == "" {
			initial = domain.StateUnknown
		}
		entity, err := domain.NewEntityBuilder().
			WithSlug(spec.EntitySlug).
			WithFriendlyName(spec.FriendlyName).
			WithState(initial).
			Build()
		if err != nil {
			return nil, err
		}

		v.mu.Lock()
		v.entities[entity.ID] = entity
		v.mu.Unlock()

		discovered = append(discovered, ports.DiscoveredDevice{
			Device:   device,
			Entities: []domain.Entity{entity},
		})
	}
	return discovered, nil
}

// HandleServiceCall applies the same service-to-state mapping the core
// engine uses (turn_on/turn_off/toggle), since a virtual light/switch
// has no real-world protocol round trip to perform. The returned
// Entity is the integration's own copy: its device_id is never set,
// and the host takes only its state and attributes, keeping the
// stored record's device_id, entity_id slug and friendly_name.
func (v *Virtual) HandleServiceCall(_ context.Context, entityID ids.EntityID, service string, _ json.RawMessage) (domain.Entity, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	entity, ok := v.entities[entityID]
	if !ok {
		return domain.Entity{}, huberr.NotFoundf("entity", "virtual entity %s not found", entityID.String())
	}
	target, mapped := automation.ServiceToState(service, entity.State)
	if mapped {
		entity.UpdateState(target, time.Now().UTC())
	}
	v.entities[entityID] = entity
	return entity, nil
}

func (v *Virtual) Teardown(_ context.Context) error { return nil }
