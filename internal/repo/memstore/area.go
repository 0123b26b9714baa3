package memstore

import (
	"context"
	"sync"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
)

// AreaRepo is an in-memory ports.AreaRepo.
type AreaRepo struct {
	mu   sync.RWMutex
	byID map[ids.AreaID]domain.Area
}

// NewAreaRepo builds an empty AreaRepo.
func NewAreaRepo() *AreaRepo {
	return &AreaRepo{byID: make(map[ids.AreaID]domain.Area)}
}

var _ ports.AreaRepo = (*AreaRepo)(nil)

func (r *AreaRepo) Create(_ context.Context, area domain.Area) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[area.ID]; exists {
		return huberr.Validationf("area", "area %s already exists", area.ID.String())
	}
	r.byID[area.ID] = area
	return nil
}

func (r *AreaRepo) GetByID(_ context.Context, id ids.AreaID) (domain.Area, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok, nil
}

func (r *AreaRepo) GetAll(_ context.Context) ([]domain.Area, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Area, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

func (r *AreaRepo) Update(_ context.Context, area domain.Area) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[area.ID]; !ok {
		return huberr.NotFoundf("area", "area %s not found", area.ID.String())
	}
	r.byID[area.ID] = area
	return nil
}

func (r *AreaRepo) Delete(_ context.Context, id ids.AreaID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return huberr.NotFoundf("area", "area %s not found", id.String())
	}
	delete(r.byID, id)
	return nil
}
