package automation

import (
	"context"
	"time"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/hublog"
	"github.com/hearthhub/hub/internal/ports"
)

// clock is overridable in tests to pin "now" for condition evaluation
// and last_triggered stamping.
var clock = func() time.Time { return time.Now().UTC() }

// Engine subscribes to the event bus and evaluates every enabled
// automation against each received event. Matching
// automations run independently: one automation's action failure is
// caught and logged, never propagated, and never stops another
// automation from running against the same event.
type Engine struct {
	automations ports.AutomationRepo
	entities    ports.EntityRepo
	bus         ports.EventBus
	log         hublog.Logger
}

// NewEngine builds an Engine wired to its repositories and bus.
func NewEngine(automations ports.AutomationRepo, entities ports.EntityRepo, bus ports.EventBus, log hublog.Logger) *Engine {
	return &Engine{automations: automations, entities: entities, bus: bus, log: log.With("component", "automation-engine")}
}

// Run subscribes to the bus and processes events until ctx is
// cancelled. It blocks; call it from its own goroutine.
func (e *Engine) Run(ctx context.Context) {
	sub := e.bus.Subscribe()
	defer sub.Close()

	for {
		env, err := sub.Recv(ctx)
		if err != nil {
			return
		}
		if env.Lagged > 0 {
			e.log.Warn("engine subscriber lagged", "lagged", env.Lagged)
		}
		e.processEvent(ctx, env.Event)
	}
}

func (e *Engine) processEvent(ctx context.Context, event domain.Event) {
	automations, err := e.automations.GetEnabled(ctx)
	if err != nil {
		e.log.Error("list enabled automations", "error", err)
		return
	}

	for _, a := range automations {
		if !a.Trigger.Matches(event) {
			continue
		}
		if !conditionsHold(ctx, e.entities, a.Conditions, clock()) {
			continue
		}
		e.fire(ctx, a)
	}
}

func (e *Engine) fire(ctx context.Context, a domain.Automation) {
	for _, action := range a.Actions {
		if err := e.execute(ctx, action); err != nil {
			e.log.Error("automation action failed", "automation", a.Name, "error", err)
			return
		}
	}

	e.bus.Publish(domain.NewEvent(domain.EventAutomationTriggered, nil, map[string]string{
		"automation_id":   a.ID.String(),
		"automation_name": a.Name,
	}, clock()))

	a.LastTriggered = timePtr(clock())
	if err := e.automations.Update(ctx, a); err != nil {
		// last_triggered is best-effort.
		e.log.Warn("best-effort last_triggered update failed", "automation", a.Name, "error", err)
	}
}

func (e *Engine) execute(ctx context.Context, action domain.Action) error {
	switch action.Kind {
	case domain.ActionCallService:
		return e.callService(ctx, action)
	case domain.ActionDelay:
		return e.delay(ctx, action.Duration())
	default:
		return nil
	}
}

// callService maps the action's service name to a target state and, if
// one exists, writes it through EntityRepo directly — bypassing
// EntityService so engine-driven updates never re-enter the bus. A
// service name with no mapping is a no-op, not an error.
func (e *Engine) callService(ctx context.Context, action domain.Action) error {
	entity, ok, err := e.entities.GetByID(ctx, action.EntityID)
	if err != nil {
		return err
	}
	target, mapped := ServiceToState(action.Service, entityStateOrUnknown(entity, ok))
	if !mapped {
		return nil
	}
	if !ok {
		return huberr.NotFoundf("entity", "entity %s not found", action.EntityID.String())
	}
	entity.UpdateState(target, clock())
	return e.entities.Update(ctx, entity)
}

func entityStateOrUnknown(entity domain.Entity, ok bool) domain.EntityState {
	if !ok {
		return domain.StateUnknown
	}
	return entity.State
}

// delay suspends for d, returning early if ctx is cancelled so engine
// shutdown cancels in-flight delays promptly.
func (e *Engine) delay(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func timePtr(t time.Time) *time.Time { return &t }
