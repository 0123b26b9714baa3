package automation_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthhub/hub/internal/automation"
	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/eventbus"
	"github.com/hearthhub/hub/internal/hublog"
	"github.com/hearthhub/hub/internal/repo/memstore"
)

func TestServiceToStateToggleSemantics(t *testing.T) {
	state, ok := automation.ServiceToState("toggle", domain.StateOn)
	require.True(t, ok)
	assert.Equal(t, domain.StateOff, state)

	state, ok = automation.ServiceToState("toggle", domain.StateOff)
	require.True(t, ok)
	assert.Equal(t, domain.StateOn, state)

	state, ok = automation.ServiceToState("toggle", domain.StateUnknown)
	require.True(t, ok)
	assert.Equal(t, domain.StateOn, state)
}

func TestServiceToStateKnownAndUnknownServices(t *testing.T) {
	state, ok := automation.ServiceToState("turn_on", domain.StateOff)
	require.True(t, ok)
	assert.Equal(t, domain.StateOn, state)

	state, ok = automation.ServiceToState("turn_off", domain.StateOn)
	require.True(t, ok)
	assert.Equal(t, domain.StateOff, state)

	_, ok = automation.ServiceToState("set_brightness", domain.StateOn)
	assert.False(t, ok, "unrecognized service names have no mapping")
}

func testLogger() hublog.Logger { return hublog.NewSlog(slog.LevelError) }

type engineFixture struct {
	engine      *automation.Engine
	automations *memstore.AutomationRepo
	devices     *memstore.DeviceRepo
	entities    *memstore.EntityRepo
	bus         *eventbus.Bus
	device      domain.Device
}

func setupEngine(t *testing.T) *engineFixture {
	t.Helper()
	automations := memstore.NewAutomationRepo()
	devices := memstore.NewDeviceRepo()
	entities := memstore.NewEntityRepo(devices)
	bus := eventbus.New(16)
	engine := automation.NewEngine(automations, entities, bus, testLogger())

	device, err := domain.NewDeviceBuilder().WithName("Test Hub").WithIntegration("test", "hub-1").Build()
	require.NoError(t, err)
	require.NoError(t, devices.Create(context.Background(), device))

	return &engineFixture{
		engine:      engine,
		automations: automations,
		devices:     devices,
		entities:    entities,
		bus:         bus,
		device:      device,
	}
}

func (f *engineFixture) mustCreateEntity(t *testing.T, slug string, state domain.EntityState) domain.Entity {
	t.Helper()
	e, err := domain.NewEntityBuilder().
		WithDevice(f.device.ID).
		WithSlug(slug).
		WithFriendlyName(slug).
		WithState(state).
		Build()
	require.NoError(t, err)
	require.NoError(t, f.entities.Create(context.Background(), e))
	return e
}

// TestAutomationFiresAndControlsAnotherEntity: a StateChanged trigger on
// E1 runs a CallService action turning on E2, and an AutomationTriggered
// event is published afterwards.
func TestAutomationFiresAndControlsAnotherEntity(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()

	e1 := f.mustCreateEntity(t, "light.e1", domain.StateOff)
	e2 := f.mustCreateEntity(t, "light.e2", domain.StateOff)

	a, err := domain.NewAutomationBuilder().
		WithName("turn on e2 when e1 changes").
		WithTrigger(domain.NewStateChangedTrigger(e1.ID, nil, nil)).
		WithActions(domain.NewCallServiceAction(e2.ID, "turn_on", nil)).
		Build()
	require.NoError(t, err)
	require.NoError(t, f.automations.Create(ctx, a))

	sub := f.bus.Subscribe()
	defer sub.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go f.engine.Run(runCtx)
	time.Sleep(10 * time.Millisecond) // let the engine subscribe before we publish

	f.bus.Publish(domain.NewEvent(domain.EventStateChanged, &e1.ID, domain.StateChangeData{From: "off", To: "on"}, time.Now()))

	recvCtx, recvCancel := context.WithTimeout(ctx, 2*time.Second)
	defer recvCancel()
	for {
		env, err := sub.Recv(recvCtx)
		require.NoError(t, err, "timed out waiting for AutomationTriggered")
		if env.Event.Type == domain.EventAutomationTriggered {
			break
		}
	}

	updated, ok, err := f.entities.GetByID(ctx, e2.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StateOn, updated.State)
}

// TestAutomationBlockedByConditionDoesNotFire: a StateIs condition on an
// off entity blocks the action list.
func TestAutomationBlockedByConditionDoesNotFire(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()

	e1 := f.mustCreateEntity(t, "light.e1", domain.StateOff)
	e2 := f.mustCreateEntity(t, "light.e2", domain.StateOff)
	e3 := f.mustCreateEntity(t, "light.e3", domain.StateOff)

	a, err := domain.NewAutomationBuilder().
		WithName("blocked by condition").
		WithTrigger(domain.NewStateChangedTrigger(e1.ID, nil, nil)).
		WithConditions(domain.NewStateIsCondition(e3.ID, "on")).
		WithActions(domain.NewCallServiceAction(e2.ID, "turn_on", nil)).
		Build()
	require.NoError(t, err)
	require.NoError(t, f.automations.Create(ctx, a))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go f.engine.Run(runCtx)
	time.Sleep(10 * time.Millisecond)

	f.bus.Publish(domain.NewEvent(domain.EventStateChanged, &e1.ID, domain.StateChangeData{From: "off", To: "on"}, time.Now()))
	time.Sleep(50 * time.Millisecond)

	updated, ok, err := f.entities.GetByID(ctx, e2.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StateOff, updated.State, "condition unmet must block the action")
}

func TestManualTriggerNeverMatchesBroadcastEvents(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()

	e1 := f.mustCreateEntity(t, "light.e1", domain.StateOff)

	a, err := domain.NewAutomationBuilder().
		WithName("manual only").
		WithTrigger(domain.NewManualTrigger()).
		WithActions(domain.NewCallServiceAction(e1.ID, "turn_on", nil)).
		Build()
	require.NoError(t, err)
	require.NoError(t, f.automations.Create(ctx, a))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go f.engine.Run(runCtx)
	time.Sleep(10 * time.Millisecond)

	f.bus.Publish(domain.NewEvent(domain.EventStateChanged, &e1.ID, domain.StateChangeData{From: "off", To: "on"}, time.Now()))
	time.Sleep(50 * time.Millisecond)

	updated, _, err := f.entities.GetByID(ctx, e1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateOff, updated.State, "a Manual trigger must never match a broadcast event")
}
