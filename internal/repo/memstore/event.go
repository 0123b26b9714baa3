package memstore

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
)

// EventStore is an in-memory ports.EventStore.
type EventStore struct {
	mu     sync.RWMutex
	byID   map[ids.EventID]domain.Event
	events []domain.Event
}

// NewEventStore builds an empty EventStore.
func NewEventStore() *EventStore {
	return &EventStore{byID: make(map[ids.EventID]domain.Event)}
}

var _ ports.EventStore = (*EventStore)(nil)

func (s *EventStore) Store(_ context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[event.ID] = event
	s.events = append(s.events, event)
	return nil
}

func (s *EventStore) GetByID(_ context.Context, id ids.EventID) (domain.Event, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	return e, ok, nil
}

// GetRecent returns up to limit events, strictly descending by
// timestamp with ties broken by id. limit<=0 means no cap.
func (s *EventStore) GetRecent(_ context.Context, limit int) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortDescAndLimit(s.events, limit), nil
}

// FindByEntity returns up to limit events referencing entityID, in the
// same descending order as GetRecent.
func (s *EventStore) FindByEntity(_ context.Context, entityID ids.EntityID, limit int) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matching []domain.Event
	for _, e := range s.events {
		if e.EntityID != nil && e.EntityID.UUID == entityID.UUID {
			matching = append(matching, e)
		}
	}
	return sortDescAndLimit(matching, limit), nil
}

func sortDescAndLimit(events []domain.Event, limit int) []domain.Event {
	out := make([]domain.Event, len(events))
	copy(out, events)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return bytes.Compare(out[i].ID.UUID[:], out[j].ID.UUID[:]) > 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
