package memstore

import (
	"context"
	"sync"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
)

type integrationKey struct {
	integration string
	uniqueID    string
}

// DeviceRepo is an in-memory ports.DeviceRepo.
type DeviceRepo struct {
	mu            sync.RWMutex
	byID          map[ids.DeviceID]domain.Device
	byIntegration map[integrationKey]ids.DeviceID
}

// NewDeviceRepo builds an empty DeviceRepo.
func NewDeviceRepo() *DeviceRepo {
	return &DeviceRepo{
		byID:          make(map[ids.DeviceID]domain.Device),
		byIntegration: make(map[integrationKey]ids.DeviceID),
	}
}

var _ ports.DeviceRepo = (*DeviceRepo)(nil)

func (r *DeviceRepo) Create(_ context.Context, device domain.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[device.ID]; exists {
		return huberr.Validationf("device", "device %s already exists", device.ID.String())
	}
	key := integrationKey{device.Integration, device.UniqueID}
	if device.Integration != "" || device.UniqueID != "" {
		if _, exists := r.byIntegration[key]; exists {
			return huberr.Validationf("device", "device with integration %q unique_id %q already exists", device.Integration, device.UniqueID)
		}
		r.byIntegration[key] = device.ID
	}
	r.byID[device.ID] = device
	return nil
}

func (r *DeviceRepo) GetByID(_ context.Context, id ids.DeviceID) (domain.Device, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	return d, ok, nil
}

func (r *DeviceRepo) GetAll(_ context.Context) ([]domain.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Device, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	return out, nil
}

func (r *DeviceRepo) FindByIntegrationUniqueID(_ context.Context, integration, uniqueID string) (domain.Device, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byIntegration[integrationKey{integration, uniqueID}]
	if !ok {
		return domain.Device{}, false, nil
	}
	d, ok := r.byID[id]
	return d, ok, nil
}

func (r *DeviceRepo) Update(_ context.Context, device domain.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[device.ID]
	if !ok {
		return huberr.NotFoundf("device", "device %s not found", device.ID.String())
	}
	oldKey := integrationKey{existing.Integration, existing.UniqueID}
	newKey := integrationKey{device.Integration, device.UniqueID}
	if oldKey != newKey {
		delete(r.byIntegration, oldKey)
		if device.Integration != "" || device.UniqueID != "" {
			r.byIntegration[newKey] = device.ID
		}
	}
	r.byID[device.ID] = device
	return nil
}

func (r *DeviceRepo) Delete(_ context.Context, id ids.DeviceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return huberr.NotFoundf("device", "device %s not found", id.String())
	}
	delete(r.byID, id)
	delete(r.byIntegration, integrationKey{d.Integration, d.UniqueID})
	return nil
}
