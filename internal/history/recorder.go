// Package history implements the entity history recorder and its
// retention scheduler: the recorder subscribes to the bus
// and snapshots state on every StateChanged/AttributeChanged event,
// while a robfig/cron job periodically purges snapshots older than a
// configured retention window.
package history

import (
	"context"
	"time"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/hublog"
	"github.com/hearthhub/hub/internal/ports"
)

// Recorder subscribes to the event bus and writes an EntityHistory
// snapshot for every StateChanged or AttributeChanged event. Other
// event types are ignored.
type Recorder struct {
	entities ports.EntityRepo
	history  ports.EntityHistoryRepo
	bus      ports.EventBus
	log      hublog.Logger
}

// NewRecorder builds a Recorder wired to its repositories and bus.
func NewRecorder(entities ports.EntityRepo, history ports.EntityHistoryRepo, bus ports.EventBus, log hublog.Logger) *Recorder {
	return &Recorder{entities: entities, history: history, bus: bus, log: log.With("component", "history-recorder")}
}

// Run subscribes to the bus and records snapshots until ctx is
// cancelled. It blocks; call it from its own goroutine.
func (r *Recorder) Run(ctx context.Context) {
	sub := r.bus.Subscribe()
	defer sub.Close()

	for {
		env, err := sub.Recv(ctx)
		if err != nil {
			return
		}
		if env.Lagged > 0 {
			r.log.Warn("recorder subscriber lagged", "lagged", env.Lagged)
		}
		r.record(ctx, env.Event)
	}
}

func (r *Recorder) record(ctx context.Context, event domain.Event) {
	switch event.Type {
	case domain.EventStateChanged, domain.EventAttributeChanged:
	default:
		return
	}
	if event.EntityID == nil {
		return
	}

	entity, ok, err := r.entities.GetByID(ctx, *event.EntityID)
	if err != nil {
		r.log.Error("load entity for history snapshot", "entity_id", event.EntityID.String(), "error", err)
		return
	}
	if !ok {
		// The entity may have been deleted between the event and this
		// read; the recorder logs and drops.
		r.log.Warn("entity missing for history snapshot", "entity_id", event.EntityID.String())
		return
	}

	snapshot := domain.NewEntityHistory(entity.ID, entity.State, entity.Attributes, event.Timestamp)
	if err := r.history.Record(ctx, snapshot); err != nil {
		r.log.Error("record history snapshot", "entity_id", entity.ID.String(), "error", err)
	}
}

func purgeOnce(ctx context.Context, history ports.EntityHistoryRepo, window time.Duration, now time.Time, log hublog.Logger) {
	cutoff := now.Add(-window)
	purged, err := history.PurgeBefore(ctx, cutoff)
	if err != nil {
		log.Error("purge history", "cutoff", cutoff, "error", err)
		return
	}
	if purged > 0 {
		log.Info("purged expired history", "count", purged, "cutoff", cutoff)
	}
}
