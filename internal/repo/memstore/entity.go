// Package memstore implements the hub's repository ports
// (internal/ports) as plain in-memory maps guarded by a sync.RWMutex.
package memstore

import (
	"context"
	"sync"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
)

// EntityRepo is an in-memory ports.EntityRepo. Writes enforce that an
// entity's device_id references an existing device.
type EntityRepo struct {
	devices ports.DeviceRepo

	mu     sync.RWMutex
	byID   map[ids.EntityID]domain.Entity
	bySlug map[string]ids.EntityID
}

// NewEntityRepo builds an empty EntityRepo whose writes validate
// device references against devices.
func NewEntityRepo(devices ports.DeviceRepo) *EntityRepo {
	return &EntityRepo{
		devices: devices,
		byID:    make(map[ids.EntityID]domain.Entity),
		bySlug:  make(map[string]ids.EntityID),
	}
}

var _ ports.EntityRepo = (*EntityRepo)(nil)

func (r *EntityRepo) deviceExists(ctx context.Context, id ids.DeviceID) error {
	_, ok, err := r.devices.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return huberr.Validationf("entity", "device %s does not exist", id.String())
	}
	return nil
}

func (r *EntityRepo) Create(ctx context.Context, entity domain.Entity) error {
	if err := r.deviceExists(ctx, entity.DeviceID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[entity.ID]; exists {
		return huberr.Validationf("entity", "entity %s already exists", entity.ID.String())
	}
	r.byID[entity.ID] = entity
	r.bySlug[entity.EntitySlug] = entity.ID
	return nil
}

func (r *EntityRepo) GetByID(_ context.Context, id ids.EntityID) (domain.Entity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e, ok, nil
}

func (r *EntityRepo) GetAll(_ context.Context) ([]domain.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Entity, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e)
	}
	return out, nil
}

func (r *EntityRepo) FindByDeviceID(_ context.Context, deviceID ids.DeviceID) ([]domain.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Entity
	for _, e := range r.byID {
		if e.DeviceID == deviceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *EntityRepo) FindByEntitySlug(_ context.Context, slug string) (domain.Entity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySlug[slug]
	if !ok {
		return domain.Entity{}, false, nil
	}
	e, ok := r.byID[id]
	return e, ok, nil
}

func (r *EntityRepo) Update(ctx context.Context, entity domain.Entity) error {
	if err := r.deviceExists(ctx, entity.DeviceID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[entity.ID]
	if !ok {
		return huberr.NotFoundf("entity", "entity %s not found", entity.ID.String())
	}
	if existing.EntitySlug != entity.EntitySlug {
		delete(r.bySlug, existing.EntitySlug)
		r.bySlug[entity.EntitySlug] = entity.ID
	}
	r.byID[entity.ID] = entity
	return nil
}

func (r *EntityRepo) Delete(_ context.Context, id ids.EntityID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return huberr.NotFoundf("entity", "entity %s not found", id.String())
	}
	delete(r.byID, id)
	delete(r.bySlug, e.EntitySlug)
	return nil
}
