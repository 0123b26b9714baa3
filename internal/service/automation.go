package service

import (
	"context"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
)

// AutomationService implements validated CRUD over automations.
type AutomationService struct {
	repo ports.AutomationRepo
}

// NewAutomationService builds an AutomationService over repo.
func NewAutomationService(repo ports.AutomationRepo) *AutomationService {
	return &AutomationService{repo: repo}
}

func (s *AutomationService) Create(ctx context.Context, automation domain.Automation) error {
	if err := automation.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, automation)
}

func (s *AutomationService) Get(ctx context.Context, id ids.AutomationID) (domain.Automation, error) {
	automation, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Automation{}, err
	}
	if !ok {
		return domain.Automation{}, huberr.NotFoundf("automation", "automation %s not found", id.String())
	}
	return automation, nil
}

func (s *AutomationService) List(ctx context.Context) ([]domain.Automation, error) {
	return s.repo.GetAll(ctx)
}

func (s *AutomationService) Update(ctx context.Context, automation domain.Automation) error {
	if err := automation.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, automation)
}

func (s *AutomationService) Delete(ctx context.Context, id ids.AutomationID) error {
	return s.repo.Delete(ctx, id)
}
