package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airscout/internal/domain/entity"
	domainerrors "airscout/internal/domain/errors"
)

func testHazard(sourceID string, severity int, ttl time.Duration, now time.Time) *entity.Hazard {
	return &entity.Hazard{
		ID:          uuid.New(),
		Kind:        entity.HazardKindPermit,
		Severity:    severity,
		Location:    orb.Point{-87.63, 41.88},
		Description: "test hazard",
		SourceID:    sourceID,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

func TestHazardStore_UpsertPreservesCreatedAt(t *testing.T) {
	store := NewHazardStore()
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	original := testHazard("100123", 3, time.Hour, now)
	require.NoError(t, store.Upsert(ctx, original))

	later := now.Add(10 * time.Minute)
	replacement := testHazard("100123", 4, time.Hour, later)
	require.NoError(t, store.Upsert(ctx, replacement))

	got, err := store.FindBySourceID(ctx, "100123")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Severity, "last write wins")
	assert.Equal(t, now, got.CreatedAt, "creation time survives the upsert")
	assert.Equal(t, later, got.UpdatedAt)
}

func TestHazardStore_FindMissing(t *testing.T) {
	store := NewHazardStore()
	_, err := store.FindBySourceID(context.Background(), "nope")
	assert.ErrorIs(t, err, domainerrors.ErrHazardNotFound)
}

func TestHazardStore_ActiveSnapshotExcludesExpired(t *testing.T) {
	store := NewHazardStore()
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Upsert(ctx, testHazard("live", 3, time.Hour, now)))
	require.NoError(t, store.Upsert(ctx, testHazard("dead", 5, -time.Minute, now)))
	// expiry boundary: active iff now < expires_at
	require.NoError(t, store.Upsert(ctx, testHazard("edge", 4, 0, now)))

	snapshot, err := store.ActiveSnapshot(ctx, now)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "live", snapshot[0].SourceID)
}

func TestHazardStore_PruneExpired(t *testing.T) {
	store := NewHazardStore()
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Upsert(ctx, testHazard("live", 3, time.Hour, now)))
	require.NoError(t, store.Upsert(ctx, testHazard("dead-1", 5, -time.Minute, now)))
	require.NoError(t, store.Upsert(ctx, testHazard("dead-2", 5, -time.Hour, now)))

	pruned, err := store.PruneExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, pruned)

	_, err = store.FindBySourceID(ctx, "dead-1")
	assert.ErrorIs(t, err, domainerrors.ErrHazardNotFound)
	_, err = store.FindBySourceID(ctx, "live")
	assert.NoError(t, err)
}

func TestHazardStore_ConcurrentUpserts(t *testing.T) {
	store := NewHazardStore()
	ctx := context.Background()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sourceID := []string{"a", "b", "c"}[i%3]
			h := testHazard(sourceID, 1+i%5, time.Hour, now)
			assert.NoError(t, store.Upsert(ctx, h))
		}(i)
	}
	wg.Wait()

	snapshot, err := store.ActiveSnapshot(ctx, now)
	require.NoError(t, err)
	assert.Len(t, snapshot, 3, "one hazard per source id")
}

func TestAlertRepository_TryReserve(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	cooldown := 4 * time.Hour

	ok, err := repo.TryReserve(ctx, "user-1", "100123", now, cooldown)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TryReserve(ctx, "user-1", "100123", now.Add(time.Hour), cooldown)
	require.NoError(t, err)
	assert.False(t, ok, "within the cooldown")

	ok, err = repo.TryReserve(ctx, "user-1", "100123", now.Add(cooldown+time.Second), cooldown)
	require.NoError(t, err)
	assert.True(t, ok, "after the cooldown")

	ok, err = repo.TryReserve(ctx, "user-2", "100123", now, cooldown)
	require.NoError(t, err)
	assert.True(t, ok, "other users are independent")
}

func TestAlertRepository_ConcurrentReserve(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()
	now := time.Now()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.TryReserve(ctx, "user-1", "100123", now, 4*time.Hour)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins, "exactly one concurrent claim succeeds")
}

func TestSubscriptionRepository_CRUD(t *testing.T) {
	repo := NewSubscriptionRepository()
	ctx := context.Background()

	sub := &entity.RouteSubscription{
		ID:                uuid.New(),
		UserID:            "user-1",
		RouteName:         "commute",
		Route:             orb.LineString{{-87.63, 41.88}, {-87.62, 41.88}},
		SeverityThreshold: 3,
		AlertEnabled:      true,
	}
	require.NoError(t, repo.Create(ctx, sub))

	t.Run("duplicate user and route name rejected", func(t *testing.T) {
		dup := *sub
		dup.ID = uuid.New()
		assert.ErrorIs(t, repo.Create(ctx, &dup), domainerrors.ErrDuplicateSubscription)
	})

	t.Run("find and update", func(t *testing.T) {
		got, err := repo.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "commute", got.RouteName)

		got.SeverityThreshold = 5
		require.NoError(t, repo.Update(ctx, got))
		updated, err := repo.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, updated.SeverityThreshold)
	})

	t.Run("list alert enabled", func(t *testing.T) {
		muted := &entity.RouteSubscription{
			ID:           uuid.New(),
			UserID:       "user-2",
			RouteName:    "school run",
			Route:        orb.LineString{{-87.63, 41.88}, {-87.62, 41.88}},
			AlertEnabled: false,
		}
		require.NoError(t, repo.Create(ctx, muted))

		enabled, err := repo.ListAlertEnabled(ctx)
		require.NoError(t, err)
		require.Len(t, enabled, 1)
		assert.Equal(t, sub.ID, enabled[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, sub.ID))
		_, err := repo.FindByID(ctx, sub.ID)
		assert.ErrorIs(t, err, domainerrors.ErrSubscriptionNotFound)
	})
}
