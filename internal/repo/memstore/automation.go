package memstore

import (
	"context"
	"sync"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
)

// AutomationRepo is an in-memory ports.AutomationRepo.
type AutomationRepo struct {
	mu   sync.RWMutex
	byID map[ids.AutomationID]domain.Automation
}

// NewAutomationRepo builds an empty AutomationRepo.
func NewAutomationRepo() *AutomationRepo {
	return &AutomationRepo{byID: make(map[ids.AutomationID]domain.Automation)}
}

var _ ports.AutomationRepo = (*AutomationRepo)(nil)

func (r *AutomationRepo) Create(_ context.Context, automation domain.Automation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[automation.ID]; exists {
		return huberr.Validationf("automation", "automation %s already exists", automation.ID.String())
	}
	r.byID[automation.ID] = automation
	return nil
}

func (r *AutomationRepo) GetByID(_ context.Context, id ids.AutomationID) (domain.Automation, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok, nil
}

func (r *AutomationRepo) GetAll(_ context.Context) ([]domain.Automation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Automation, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

func (r *AutomationRepo) GetEnabled(_ context.Context) ([]domain.Automation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Automation
	for _, a := range r.byID {
		if a.Enabled {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *AutomationRepo) Update(_ context.Context, automation domain.Automation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[automation.ID]; !ok {
		return huberr.NotFoundf("automation", "automation %s not found", automation.ID.String())
	}
	r.byID[automation.ID] = automation
	return nil
}

func (r *AutomationRepo) Delete(_ context.Context, id ids.AutomationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return huberr.NotFoundf("automation", "automation %s not found", id.String())
	}
	delete(r.byID, id)
	return nil
}
