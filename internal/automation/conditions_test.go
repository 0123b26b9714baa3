package automation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/repo/memstore"
)

func TestTimeInRangeSameDayWindow(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, timeInRange("08:00", "22:00", base.Add(12*time.Hour)))
	assert.False(t, timeInRange("08:00", "22:00", base.Add(23*time.Hour)))
}

func TestTimeInRangeOvernightWindow(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, timeInRange("22:00", "06:00", base.Add(23*time.Hour+30*time.Minute)))
	assert.True(t, timeInRange("22:00", "06:00", base.Add(3*time.Hour+30*time.Minute)))
	assert.False(t, timeInRange("22:00", "06:00", base.Add(12*time.Hour)))
}

func newEntityRepoWithDevice(t *testing.T) (*memstore.EntityRepo, domain.Device) {
	t.Helper()
	devices := memstore.NewDeviceRepo()
	device, err := domain.NewDeviceBuilder().WithName("Test Hub").WithIntegration("test", "hub-1").Build()
	require.NoError(t, err)
	require.NoError(t, devices.Create(context.Background(), device))
	return memstore.NewEntityRepo(devices), device
}

func TestConditionsHoldEmptyListAlwaysHolds(t *testing.T) {
	ctx := context.Background()
	entities, _ := newEntityRepoWithDevice(t)
	assert.True(t, conditionsHold(ctx, entities, nil, time.Now()))
}

func TestConditionsHoldRequiresAllConditions(t *testing.T) {
	ctx := context.Background()
	entities, device := newEntityRepoWithDevice(t)

	e, err := domain.NewEntityBuilder().
		WithDevice(device.ID).
		WithSlug("light.e").
		WithFriendlyName("E").
		WithState(domain.StateOn).
		Build()
	require.NoError(t, err)
	require.NoError(t, entities.Create(ctx, e))

	okCond := domain.NewStateIsCondition(e.ID, "on")
	failCond := domain.NewTimeRangeCondition("08:00", "08:01")

	assert.True(t, conditionsHold(ctx, entities, []domain.Condition{okCond}, time.Now()))
	assert.False(t, conditionsHold(ctx, entities, []domain.Condition{okCond, failCond}, time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func TestConditionStateIsMissingEntityYieldsFalseNotError(t *testing.T) {
	ctx := context.Background()
	entities, _ := newEntityRepoWithDevice(t)
	cond := domain.NewStateIsCondition(ids.NewEntityID(), "on")
	assert.False(t, conditionHolds(ctx, entities, cond, time.Now()))
}
