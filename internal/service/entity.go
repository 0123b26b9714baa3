// Package service implements the hub's validated CRUD use cases on top
// of internal/ports: each Service wraps one repository (EntityService
// also wraps the event publisher) and runs domain validation before any
// repository call.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
)

// clock is overridable in tests to pin timestamps.
var clock = func() time.Time { return time.Now().UTC() }

// EntityService implements validated CRUD over entities plus the
// state-transition use case, publishing domain events best-effort.
// State updates through the service are serialized: concurrent callers
// see their read-modify-write cycles totally ordered.
type EntityService struct {
	repo ports.EntityRepo
	bus  ports.EventBus

	updateMu sync.Mutex
}

// NewEntityService builds an EntityService over repo, publishing
// through bus.
func NewEntityService(repo ports.EntityRepo, bus ports.EventBus) *EntityService {
	return &EntityService{repo: repo, bus: bus}
}

// Create validates and persists entity, then publishes EntityCreated.
func (s *EntityService) Create(ctx context.Context, entity domain.Entity) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, entity); err != nil {
		return err
	}
	s.publish(domain.EventEntityCreated, &entity.ID, struct{}{})
	return nil
}

// Get returns the entity with id, or a NotFound error.
func (s *EntityService) Get(ctx context.Context, id ids.EntityID) (domain.Entity, error) {
	entity, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Entity{}, err
	}
	if !ok {
		return domain.Entity{}, huberr.NotFoundf("entity", "entity %s not found", id.String())
	}
	return entity, nil
}

// List returns every entity, or an empty slice if there are none.
func (s *EntityService) List(ctx context.Context) ([]domain.Entity, error) {
	return s.repo.GetAll(ctx)
}

// UpdateState loads the entity, applies newState (and, when attrs is
// non-nil, the given attribute values), persists, and publishes the
// appropriate event:
//   - state actually changed: StateChanged{from, to}.
//   - state unchanged but an attribute value differs: AttributeChanged.
//   - neither: no publish — a true no-op.
//
// last_updated is bumped unconditionally by the persisted write either
// way; only the published event is conditional.
func (s *EntityService) UpdateState(ctx context.Context, id ids.EntityID, newState domain.EntityState, attrs map[string]domain.AttributeValue) (domain.Entity, error) {
	if !newState.Valid() {
		return domain.Entity{}, huberr.Validationf("entity", "invalid state %q", newState)
	}

	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	entity, err := s.Get(ctx, id)
	if err != nil {
		return domain.Entity{}, err
	}

	prevState := entity.State
	// attrs is merged into the existing map, so only the given keys
	// can differ.
	attrsDiffer := false
	for k, v := range attrs {
		if cur, ok := entity.Attributes[k]; !ok || !cur.Equal(v) {
			attrsDiffer = true
			break
		}
	}

	now := clock()
	stateChanged := entity.UpdateState(newState, now)
	if attrs != nil {
		for k, v := range attrs {
			entity.SetAttribute(k, v, now)
		}
	}

	if err := s.repo.Update(ctx, entity); err != nil {
		return domain.Entity{}, err
	}

	switch {
	case stateChanged:
		s.publish(domain.EventStateChanged, &entity.ID, domain.StateChangeData{
			From: prevState.String(),
			To:   newState.String(),
		})
	case attrsDiffer:
		s.publish(domain.EventAttributeChanged, &entity.ID, struct{}{})
	}

	return entity, nil
}

// Delete removes the entity and publishes EntityDeleted.
func (s *EntityService) Delete(ctx context.Context, id ids.EntityID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(domain.EventEntityDeleted, &id, struct{}{})
	return nil
}

// publish is best-effort: the bus never reports a failure back (spec
// §4.3 — a publish failure must never roll back the preceding write).
func (s *EntityService) publish(eventType domain.EventType, entityID *ids.EntityID, data any) {
	s.bus.Publish(domain.NewEvent(eventType, entityID, data, clock()))
}
