// Package features holds executable Gherkin scenarios covering
// end-to-end hub behavior: entity state transitions, automation
// firing and condition gating, history range queries and retention,
// and event bus lag signaling. godog.TestSuite drives the scenarios
// against a per-scenario context struct.
package features

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/require"

	"github.com/hearthhub/hub/internal/automation"
	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/eventbus"
	"github.com/hearthhub/hub/internal/hublog"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/ports"
	"github.com/hearthhub/hub/internal/repo/memstore"
	"github.com/hearthhub/hub/internal/service"
)

type hubBDDContext struct {
	bus            *eventbus.Bus
	entityRepo     *memstore.EntityRepo
	deviceRepo     *memstore.DeviceRepo
	automationRepo *memstore.AutomationRepo
	historyRepo    *memstore.EntityHistoryRepo

	entitySvc *service.EntityService

	engine    *automation.Engine
	engineCtx context.Context
	cancel    context.CancelFunc

	deviceID ids.DeviceID
	entities map[string]ids.EntityID

	automationSub ports.Subscription
	createdAt     time.Time

	purged int

	// lag scenario state
	lagBus       *eventbus.Bus
	lagSub       ports.Subscription
	lagPublished []ids.EventID
	lagReceived  []ids.EventID
}

func (c *hubBDDContext) reset() {
	c.bus = eventbus.New(256)
	c.deviceRepo = memstore.NewDeviceRepo()
	c.entityRepo = memstore.NewEntityRepo(c.deviceRepo)
	c.automationRepo = memstore.NewAutomationRepo()
	c.historyRepo = memstore.NewEntityHistoryRepo()
	c.entitySvc = service.NewEntityService(c.entityRepo, c.bus)
	c.entities = make(map[string]ids.EntityID)

	log := hublog.NewSlog(slog.LevelError + 4)
	c.engine = automation.NewEngine(c.automationRepo, c.entityRepo, c.bus, log)
	c.engineCtx, c.cancel = context.WithCancel(context.Background())
	go c.engine.Run(c.engineCtx)
	time.Sleep(10 * time.Millisecond) // let the engine subscribe before any step publishes

	c.automationSub = c.bus.Subscribe()
}

func (c *hubBDDContext) aDeviceNamed(name string) error {
	device, err := domain.NewDeviceBuilder().WithName(name).WithIntegration("test", name).Build()
	if err != nil {
		return err
	}
	if err := c.deviceRepo.Create(context.Background(), device); err != nil {
		return err
	}
	c.deviceID = device.ID
	return nil
}

func (c *hubBDDContext) anEntityNamedOnThatDevice(slug, friendly string) error {
	entity, err := domain.NewEntityBuilder().
		WithDevice(c.deviceID).
		WithSlug(slug).
		WithFriendlyName(friendly).
		Build()
	if err != nil {
		return err
	}
	if err := c.entitySvc.Create(context.Background(), entity); err != nil {
		return err
	}
	c.entities[slug] = entity.ID
	c.createdAt = entity.LastChanged
	return nil
}

func (c *hubBDDContext) theEntityStateIs(state string) error {
	return c.theNamedEntityStateIs("light.desk", state)
}

func (c *hubBDDContext) theNamedEntityStateIs(slug, state string) error {
	entity, err := c.entitySvc.Get(context.Background(), c.entities[slug])
	if err != nil {
		return err
	}
	if entity.State.String() != state {
		return fmt.Errorf("entity %s state = %q, want %q", slug, entity.State, state)
	}
	return nil
}

func (c *hubBDDContext) iUpdateTheEntityStateTo(state string) error {
	return c.iUpdateTheNamedEntityStateTo("light.desk", state)
}

func (c *hubBDDContext) iUpdateTheNamedEntityStateTo(slug, state string) error {
	_, err := c.entitySvc.UpdateState(context.Background(), c.entities[slug], domain.EntityState(state), nil)
	return err
}

func (c *hubBDDContext) theEntitysLastChangedIsAfterItsCreationTime() error {
	entity, err := c.entitySvc.Get(context.Background(), c.entities["light.desk"])
	if err != nil {
		return err
	}
	if !entity.LastChanged.After(c.createdAt) {
		return fmt.Errorf("last_changed %v is not after creation time %v", entity.LastChanged, c.createdAt)
	}
	return nil
}

func (c *hubBDDContext) bothEntitiesAreInState(state string) error {
	return c.allEntitiesAreInState(state)
}

func (c *hubBDDContext) allEntitiesAreInState(state string) error {
	for slug, id := range c.entities {
		if _, err := c.entitySvc.UpdateState(context.Background(), id, domain.EntityState(state), nil); err != nil {
			return fmt.Errorf("setting %s: %w", slug, err)
		}
	}
	return nil
}

var lastAutomationName string

func (c *hubBDDContext) anAutomationTriggeredByStateChangesOnThatCallsServiceOn(name, sourceSlug, serviceName, targetSlug string) error {
	lastAutomationName = name
	rule, err := domain.NewAutomationBuilder().
		WithName(name).
		WithTrigger(domain.NewStateChangedTrigger(c.entities[sourceSlug], nil, nil)).
		WithActions(domain.NewCallServiceAction(c.entities[targetSlug], serviceName, nil)).
		Build()
	if err != nil {
		return err
	}
	return c.automationRepo.Create(context.Background(), rule)
}

func (c *hubBDDContext) theAutomationAdditionallyRequiresToBeInState(slug, state string) error {
	automations, err := c.automationRepo.GetAll(context.Background())
	if err != nil {
		return err
	}
	for _, a := range automations {
		if a.Name != lastAutomationName {
			continue
		}
		a.Conditions = append(a.Conditions, domain.NewStateIsCondition(c.entities[slug], state))
		return c.automationRepo.Update(context.Background(), a)
	}
	return fmt.Errorf("automation %q not found", lastAutomationName)
}

func (c *hubBDDContext) withinABoundedDelayTheNamedEntityStateIs(slug, state string) error {
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		entity, err := c.entitySvc.Get(context.Background(), c.entities[slug])
		if err != nil {
			return err
		}
		if entity.State.String() == state {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return c.theNamedEntityStateIs(slug, state)
}

func (c *hubBDDContext) anAutomationTriggeredEventForHasBeenPublished(name string) error {
	published, err := c.waitForAutomationTriggered(name, 500*time.Millisecond)
	if err != nil {
		return err
	}
	if !published {
		return fmt.Errorf("no AutomationTriggered event observed for %q", name)
	}
	return nil
}

func (c *hubBDDContext) noAutomationTriggeredEventForHasBeenPublished(name string) error {
	published, err := c.waitForAutomationTriggered(name, 200*time.Millisecond)
	if err != nil {
		return err
	}
	if published {
		return fmt.Errorf("unexpected AutomationTriggered event observed for %q", name)
	}
	return nil
}

func (c *hubBDDContext) waitForAutomationTriggered(name string, within time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), within)
	defer cancel()
	for {
		env, err := c.automationSub.Recv(ctx)
		if err != nil {
			return false, nil // deadline or closed: no matching event observed
		}
		if env.Event.Type != domain.EventAutomationTriggered {
			continue
		}
		var data map[string]string
		if err := json.Unmarshal(env.Event.Data, &data); err != nil {
			return false, err
		}
		if data["automation_name"] == name {
			return true, nil
		}
	}
}

func (c *hubBDDContext) iRecordHistorySnapshotsAtOffsetsRelativeToNowWithState(offsets, state string) error {
	now := time.Now().UTC()
	entityID := c.entities["sensor.temp"]
	for _, raw := range strings.Split(offsets, ",") {
		d, err := parseOffset(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		snapshot := domain.NewEntityHistory(entityID, domain.EntityState(state), nil, now.Add(d))
		if err := c.historyRepo.Record(context.Background(), snapshot); err != nil {
			return err
		}
	}
	return nil
}

// parseOffset parses a duration offset relative to "now", additionally
// accepting a "d" (day) suffix that time.ParseDuration does not support.
func parseOffset(s string) (time.Duration, error) {
	sign := time.Duration(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	}
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("parse offset %q: %w", s, err)
		}
		return sign * time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse offset %q: %w", s, err)
	}
	return sign * d, nil
}

func (c *hubBDDContext) aRangeQueryFromToReturnsRecordsInAscendingOrder(fromRaw, toRaw string, count int) error {
	now := time.Now().UTC()
	from, err := parseOffset(fromRaw)
	if err != nil {
		return err
	}
	to, err := parseOffset(toRaw)
	if err != nil {
		return err
	}
	records, err := c.historyRepo.FindByEntityInRange(context.Background(), c.entities["sensor.temp"], now.Add(from), now.Add(to), 0)
	if err != nil {
		return err
	}
	if len(records) != count {
		return fmt.Errorf("got %d records, want %d", len(records), count)
	}
	for i := 1; i < len(records); i++ {
		if records[i].RecordedAt.Before(records[i-1].RecordedAt) {
			return fmt.Errorf("records not ascending at index %d", i)
		}
	}
	return nil
}

func (c *hubBDDContext) aRangeQueryFromToWithLimitReturnsRecords(fromRaw, toRaw string, limit, count int) error {
	now := time.Now().UTC()
	from, err := parseOffset(fromRaw)
	if err != nil {
		return err
	}
	to, err := parseOffset(toRaw)
	if err != nil {
		return err
	}
	records, err := c.historyRepo.FindByEntityInRange(context.Background(), c.entities["sensor.temp"], now.Add(from), now.Add(to), limit)
	if err != nil {
		return err
	}
	if len(records) != count {
		return fmt.Errorf("got %d records, want %d", len(records), count)
	}
	return nil
}

func (c *hubBDDContext) iPurgeHistoryBeforeDaysAgo(days int) error {
	purged, err := c.historyRepo.PurgeBefore(context.Background(), time.Now().UTC().Add(-time.Duration(days)*24*time.Hour))
	if err != nil {
		return err
	}
	c.purged = purged
	return nil
}

func (c *hubBDDContext) thePurgeReportsRecordsRemoved(count int) error {
	if c.purged != count {
		return fmt.Errorf("purged %d records, want %d", c.purged, count)
	}
	return nil
}

func (c *hubBDDContext) aBusWithRingCapacity(capacity int) error {
	c.lagBus = eventbus.New(capacity)
	return nil
}

func (c *hubBDDContext) aPausedSubscriber() error {
	c.lagSub = c.lagBus.Subscribe()
	return nil
}

func (c *hubBDDContext) eventsArePublished(n int) error {
	entityID := ids.NewEntityID()
	for i := 0; i < n; i++ {
		event := domain.NewEvent(domain.EventStateChanged, &entityID, domain.StateChangeData{From: "off", To: "on"}, time.Now().UTC())
		c.lagPublished = append(c.lagPublished, event.ID)
		c.lagBus.Publish(event)
	}
	return nil
}

func (c *hubBDDContext) theSubscriberResumes() error { return nil }

func (c *hubBDDContext) theSubscriberObservesALagSignalOf(n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	env, err := c.lagSub.Recv(ctx)
	if err != nil {
		return fmt.Errorf("waiting for first delivery: %w", err)
	}
	if env.Lagged != n {
		return fmt.Errorf("lagged = %d, want %d", env.Lagged, n)
	}
	c.lagReceived = append(c.lagReceived, env.Event.ID)
	return nil
}

func (c *hubBDDContext) theSubscriberThenReceivesEventsInOrder(n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if n > len(c.lagPublished) {
		return fmt.Errorf("want %d events but only %d were published", n, len(c.lagPublished))
	}
	// lagReceived already holds the one consumed in the lag-check step.
	for len(c.lagReceived) < n {
		env, err := c.lagSub.Recv(ctx)
		if err != nil {
			return fmt.Errorf("after %d of %d events: %w", len(c.lagReceived), n, err)
		}
		c.lagReceived = append(c.lagReceived, env.Event.ID)
	}
	want := c.lagPublished[len(c.lagPublished)-n:]
	for i, id := range c.lagReceived {
		if id != want[i] {
			return fmt.Errorf("event %d out of order: got %s, want %s", i, id, want[i])
		}
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	c := &hubBDDContext{}
	ctx.Before(func(goCtx context.Context, sc *godog.Scenario) (context.Context, error) {
		c.reset()
		return goCtx, nil
	})
	ctx.After(func(goCtx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		c.cancel()
		c.automationSub.Close()
		return goCtx, err
	})

	ctx.Given(`^a device named "([^"]*)"$`, c.aDeviceNamed)
	ctx.Given(`^an entity "([^"]*)" named "([^"]*)" on that device$`, c.anEntityNamedOnThatDevice)
	ctx.Then(`^the entity state is "([^"]*)"$`, c.theEntityStateIs)
	ctx.When(`^I update the entity state to "([^"]*)"$`, c.iUpdateTheEntityStateTo)
	ctx.Then(`^the entity's last_changed is after its creation time$`, c.theEntitysLastChangedIsAfterItsCreationTime)

	ctx.Given(`^both entities are in state "([^"]*)"$`, c.bothEntitiesAreInState)
	ctx.Given(`^all entities are in state "([^"]*)"$`, c.allEntitiesAreInState)
	ctx.Given(`^an automation "([^"]*)" triggered by state changes on "([^"]*)" that calls service "([^"]*)" on "([^"]*)"$`, c.anAutomationTriggeredByStateChangesOnThatCallsServiceOn)
	ctx.Given(`^the automation additionally requires "([^"]*)" to be in state "([^"]*)"$`, c.theAutomationAdditionallyRequiresToBeInState)
	ctx.When(`^I update the "([^"]*)" entity state to "([^"]*)"$`, c.iUpdateTheNamedEntityStateTo)
	ctx.Then(`^within a bounded delay the "([^"]*)" entity state is "([^"]*)"$`, c.withinABoundedDelayTheNamedEntityStateIs)
	ctx.Then(`^an AutomationTriggered event for "([^"]*)" has been published$`, c.anAutomationTriggeredEventForHasBeenPublished)
	ctx.Then(`^no AutomationTriggered event for "([^"]*)" has been published$`, c.noAutomationTriggeredEventForHasBeenPublished)

	ctx.When(`^I record history snapshots at offsets ([^ ]*) relative to now with state "([^"]*)"$`, c.iRecordHistorySnapshotsAtOffsetsRelativeToNowWithState)
	ctx.Then(`^a range query from ([^ ]*) to ([^ ]*) returns (\d+) records in ascending order$`, c.aRangeQueryFromToReturnsRecordsInAscendingOrder)
	ctx.Then(`^a range query from ([^ ]*) to ([^ ]*) with limit (\d+) returns (\d+) records$`, c.aRangeQueryFromToWithLimitReturnsRecords)
	ctx.When(`^I purge history before (\d+) days ago$`, c.iPurgeHistoryBeforeDaysAgo)
	ctx.Then(`^the purge reports (\d+) records removed$`, c.thePurgeReportsRecordsRemoved)

	ctx.Given(`^a bus with ring capacity (\d+)$`, c.aBusWithRingCapacity)
	ctx.Given(`^a paused subscriber$`, c.aPausedSubscriber)
	ctx.When(`^(\d+) events are published$`, c.eventsArePublished)
	ctx.When(`^the subscriber resumes$`, c.theSubscriberResumes)
	ctx.Then(`^the subscriber observes a lag signal of (\d+)$`, c.theSubscriberObservesALagSignalOf)
	ctx.Then(`^the subscriber then receives (\d+) events in order$`, c.theSubscriberThenReceivesEventsInOrder)
}

func TestHubScenarios(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "progress",
			Paths:    []string{"features/hub_scenarios.feature"},
			TestingT: t,
			Strict:   true,
		},
	}
	require.Equal(t, 0, suite.Run(), "non-zero status from godog suite")
}
