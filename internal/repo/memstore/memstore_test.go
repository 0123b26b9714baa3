package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
	"github.com/hearthhub/hub/internal/repo/memstore"
)

func TestEntityRepoCRUDAndSlugLookup(t *testing.T) {
	ctx := context.Background()
	devices := memstore.NewDeviceRepo()
	repo := memstore.NewEntityRepo(devices)

	device, err := domain.NewDeviceBuilder().WithName("Hub").WithIntegration("test", "hub-1").Build()
	require.NoError(t, err)
	require.NoError(t, devices.Create(ctx, device))

	e, err := domain.NewEntityBuilder().WithDevice(device.ID).WithSlug("light.desk").WithFriendlyName("Desk").Build()
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, e))

	_, _, err = repo.GetByID(ctx, ids.NewEntityID())
	require.NoError(t, err)

	got, ok, err := repo.FindByEntitySlug(ctx, "light.desk")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e.ID, got.ID)

	e.FriendlyName = "Desk Lamp"
	require.NoError(t, repo.Update(ctx, e))
	got, _, _ = repo.GetByID(ctx, e.ID)
	assert.Equal(t, "Desk Lamp", got.FriendlyName)

	require.NoError(t, repo.Delete(ctx, e.ID))
	_, ok, _ = repo.GetByID(ctx, e.ID)
	assert.False(t, ok)

	err = repo.Delete(ctx, e.ID)
	require.Error(t, err)
	assert.True(t, huberr.Is(err, huberr.KindNotFound))
}

func TestEntityRepoRejectsUnknownDevice(t *testing.T) {
	ctx := context.Background()
	repo := memstore.NewEntityRepo(memstore.NewDeviceRepo())

	e, err := domain.NewEntityBuilder().
		WithDevice(ids.NewDeviceID()).
		WithSlug("light.orphan").
		WithFriendlyName("Orphan").
		Build()
	require.NoError(t, err)

	err = repo.Create(ctx, e)
	require.Error(t, err)
	assert.True(t, huberr.Is(err, huberr.KindValidation), "device reference is enforced at repository write")
}

func TestDeviceRepoIntegrationUniqueIDLookup(t *testing.T) {
	ctx := context.Background()
	repo := memstore.NewDeviceRepo()

	d, err := domain.NewDeviceBuilder().WithName("Hub Light").WithIntegration("virtual", "light-1").Build()
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, d))

	got, ok, err := repo.FindByIntegrationUniqueID(ctx, "virtual", "light-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, d.ID, got.ID)

	_, ok, err = repo.FindByIntegrationUniqueID(ctx, "virtual", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEventStoreOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewEventStore()

	entityID := ids.NewEntityID()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var last domain.Event
	for i := 0; i < 3; i++ {
		ev := domain.NewEvent(domain.EventStateChanged, &entityID, domain.StateChangeData{From: "off", To: "on"}, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Store(ctx, ev))
		last = ev
	}

	recent, err := store.GetRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, last.ID, recent[0].ID, "newest first")

	limited, err := store.GetRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, last.ID, limited[0].ID)

	byEntity, err := store.FindByEntity(ctx, entityID, 0)
	require.NoError(t, err)
	assert.Len(t, byEntity, 3)
}

func TestEntityHistoryRepoRangeOrderingAndPurge(t *testing.T) {
	ctx := context.Background()
	repo := memstore.NewEntityHistoryRepo()

	entityID := ids.NewEntityID()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		h := domain.NewEntityHistory(entityID, domain.StateOn, nil, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.Record(ctx, h))
	}

	from := base.Add(time.Hour)
	to := base.Add(3 * time.Hour)
	records, err := repo.FindByEntityInRange(ctx, entityID, from, to, 0)
	require.NoError(t, err)
	require.Len(t, records, 3, "inclusive range should include both endpoints")
	assert.True(t, records[0].RecordedAt.Before(records[1].RecordedAt), "ascending order")

	purged, err := repo.PurgeBefore(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, purged)

	purged, err = repo.PurgeBefore(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, purged, "purging the same cutoff twice removes nothing the second time")

	remaining, err := repo.FindByEntityInRange(ctx, entityID, base, base.Add(24*time.Hour), 0)
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
}
