package memstore

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
)

// EntityHistoryRepo is an in-memory ports.EntityHistoryRepo.
type EntityHistoryRepo struct {
	mu      sync.RWMutex
	records []domain.EntityHistory
}

// NewEntityHistoryRepo builds an empty EntityHistoryRepo.
func NewEntityHistoryRepo() *EntityHistoryRepo {
	return &EntityHistoryRepo{}
}

var _ ports.EntityHistoryRepo = (*EntityHistoryRepo)(nil)

func (r *EntityHistoryRepo) Record(_ context.Context, history domain.EntityHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, history)
	return nil
}

// FindByEntityInRange returns up to limit records for entityID with
// RecordedAt in [from, to] inclusive, strictly ascending by timestamp
// with ties broken by id. limit<=0 means no cap.
func (r *EntityHistoryRepo) FindByEntityInRange(_ context.Context, entityID ids.EntityID, from, to time.Time, limit int) ([]domain.EntityHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matching []domain.EntityHistory
	for _, h := range r.records {
		if h.EntityID.UUID != entityID.UUID {
			continue
		}
		if h.RecordedAt.Before(from) || h.RecordedAt.After(to) {
			continue
		}
		matching = append(matching, h)
	}
	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].RecordedAt.Equal(matching[j].RecordedAt) {
			return matching[i].RecordedAt.Before(matching[j].RecordedAt)
		}
		return bytes.Compare(matching[i].ID.UUID[:], matching[j].ID.UUID[:]) < 0
	})
	if limit > 0 && len(matching) > limit {
		matching = matching[:limit]
	}
	return matching, nil
}

// PurgeBefore deletes every record with RecordedAt strictly before ts
// and returns how many were removed.
func (r *EntityHistoryRepo) PurgeBefore(_ context.Context, ts time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0:0]
	purged := 0
	for _, h := range r.records {
		if h.RecordedAt.Before(ts) {
			purged++
			continue
		}
		kept = append(kept, h)
	}
	r.records = kept
	return purged, nil
}
