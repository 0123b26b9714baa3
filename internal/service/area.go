package service

import (
	"context"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
)

// AreaService implements validated CRUD over areas.
type AreaService struct {
	repo ports.AreaRepo
}

// NewAreaService builds an AreaService over repo.
func NewAreaService(repo ports.AreaRepo) *AreaService {
	return &AreaService{repo: repo}
}

func (s *AreaService) Create(ctx context.Context, area domain.Area) error {
	if err := area.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, area)
}

func (s *AreaService) Get(ctx context.Context, id ids.AreaID) (domain.Area, error) {
	area, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Area{}, err
	}
	if !ok {
		return domain.Area{}, huberr.NotFoundf("area", "area %s not found", id.String())
	}
	return area, nil
}

func (s *AreaService) List(ctx context.Context) ([]domain.Area, error) {
	return s.repo.GetAll(ctx)
}

func (s *AreaService) Update(ctx context.Context, area domain.Area) error {
	if err := area.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, area)
}

func (s *AreaService) Delete(ctx context.Context, id ids.AreaID) error {
	return s.repo.Delete(ctx, id)
}
