// Package ports declares the hub's repository, event bus, and
// integration contracts. Nothing in this package depends on a
// concrete storage or transport technology; internal/repo/memstore,
// internal/eventbus, and internal/integration provide implementations.
package ports

import (
	"context"
	"time"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/ids"
)

// EntityRepo persists Entity rows.
type EntityRepo interface {
	Create(ctx context.Context, entity domain.Entity) error
	GetByID(ctx context.Context, id ids.EntityID) (domain.Entity, bool, error)
	GetAll(ctx context.Context) ([]domain.Entity, error)
	FindByDeviceID(ctx context.Context, deviceID ids.DeviceID) ([]domain.Entity, error)
	FindByEntitySlug(ctx context.Context, slug string) (domain.Entity, bool, error)
	Update(ctx context.Context, entity domain.Entity) error
	Delete(ctx context.Context, id ids.EntityID) error
}

// DeviceRepo persists Device rows.
type DeviceRepo interface {
	Create(ctx context.Context, device domain.Device) error
	GetByID(ctx context.Context, id ids.DeviceID) (domain.Device, bool, error)
	GetAll(ctx context.Context) ([]domain.Device, error)
	FindByIntegrationUniqueID(ctx context.Context, integration, uniqueID string) (domain.Device, bool, error)
	Update(ctx context.Context, device domain.Device) error
	Delete(ctx context.Context, id ids.DeviceID) error
}

// AreaRepo persists Area rows.
type AreaRepo interface {
	Create(ctx context.Context, area domain.Area) error
	GetByID(ctx context.Context, id ids.AreaID) (domain.Area, bool, error)
	GetAll(ctx context.Context) ([]domain.Area, error)
	Update(ctx context.Context, area domain.Area) error
	Delete(ctx context.Context, id ids.AreaID) error
}

// AutomationRepo persists Automation rows.
type AutomationRepo interface {
	Create(ctx context.Context, automation domain.Automation) error
	GetByID(ctx context.Context, id ids.AutomationID) (domain.Automation, bool, error)
	GetAll(ctx context.Context) ([]domain.Automation, error)
	GetEnabled(ctx context.Context) ([]domain.Automation, error)
	Update(ctx context.Context, automation domain.Automation) error
	Delete(ctx context.Context, id ids.AutomationID) error
}

// EventStore persists a durable log of domain Events.
//
// GetRecent and FindByEntity return results strictly descending by
// timestamp, ties broken by id. Ranges and limits behave as documented
// on each method.
type EventStore interface {
	Store(ctx context.Context, event domain.Event) error
	GetByID(ctx context.Context, id ids.EventID) (domain.Event, bool, error)
	GetRecent(ctx context.Context, limit int) ([]domain.Event, error)
	FindByEntity(ctx context.Context, entityID ids.EntityID, limit int) ([]domain.Event, error)
}

// EntityHistoryRepo persists time-series EntityHistory snapshots.
//
// FindByEntityInRange returns results strictly ascending by timestamp,
// ties broken by id, with both ends of [from, to] inclusive.
type EntityHistoryRepo interface {
	Record(ctx context.Context, history domain.EntityHistory) error
	FindByEntityInRange(ctx context.Context, entityID ids.EntityID, from, to time.Time, limit int) ([]domain.EntityHistory, error)
	PurgeBefore(ctx context.Context, ts time.Time) (int, error)
}
