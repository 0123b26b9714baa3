package service

import (
	"context"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
)

// DeviceService implements validated CRUD over devices.
type DeviceService struct {
	repo ports.DeviceRepo
}

// NewDeviceService builds a DeviceService over repo.
func NewDeviceService(repo ports.DeviceRepo) *DeviceService {
	return &DeviceService{repo: repo}
}

func (s *DeviceService) Create(ctx context.Context, device domain.Device) error {
	if err := device.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, device)
}

func (s *DeviceService) Get(ctx context.Context, id ids.DeviceID) (domain.Device, error) {
	device, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Device{}, err
	}
	if !ok {
		return domain.Device{}, huberr.NotFoundf("device", "device %s not found", id.String())
	}
	return device, nil
}

func (s *DeviceService) List(ctx context.Context) ([]domain.Device, error) {
	return s.repo.GetAll(ctx)
}

func (s *DeviceService) Update(ctx context.Context, device domain.Device) error {
	if err := device.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, device)
}

func (s *DeviceService) Delete(ctx context.Context, id ids.DeviceID) error {
	return s.repo.Delete(ctx, id)
}
