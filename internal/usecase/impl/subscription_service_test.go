package impl

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "airscout/internal/domain/errors"
	"airscout/internal/store/memory"
	"airscout/internal/usecase"
)

func newSubscriptionService(t *testing.T) (usecase.SubscriptionUsecase, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))

	return NewSubscriptionService(memory.NewSubscriptionRepository(), clock), clock
}

func TestCreateSubscription_AppliesDefaults(t *testing.T) {
	svc, clock := newSubscriptionService(t)

	sub, err := svc.CreateSubscription(context.Background(), &usecase.CreateSubscriptionInput{
		UserID:      "user-1",
		RouteName:   "commute",
		Coordinates: routeCoords,
	})
	require.NoError(t, err)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", sub.ID.String())
	assert.Equal(t, 3, sub.SeverityThreshold, "defaults to threshold 3")
	assert.True(t, sub.AlertEnabled, "alerts default on")
	assert.Equal(t, clock.Now(), sub.CreatedAt)
	assert.Len(t, sub.Route, 2)
}

func TestCreateSubscription_Validation(t *testing.T) {
	svc, _ := newSubscriptionService(t)
	ctx := context.Background()

	_, err := svc.CreateSubscription(ctx, &usecase.CreateSubscriptionInput{
		UserID:      "user-1",
		RouteName:   "short",
		Coordinates: [][2]float64{{-87.63, 41.88}},
	})
	assert.ErrorIs(t, err, domainerrors.ErrRouteTooShort)

	_, err = svc.CreateSubscription(ctx, &usecase.CreateSubscriptionInput{
		UserID:      "user-1",
		RouteName:   "bad point",
		Coordinates: [][2]float64{{-87.63, 41.88}, {-87.62, 95}},
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCoordinate)

	_, err = svc.CreateSubscription(ctx, &usecase.CreateSubscriptionInput{
		UserID:            "user-1",
		RouteName:         "bad threshold",
		Coordinates:       routeCoords,
		SeverityThreshold: 7,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSeverity)
}

func TestCreateSubscription_RejectsDuplicateRouteName(t *testing.T) {
	svc, _ := newSubscriptionService(t)
	ctx := context.Background()

	input := &usecase.CreateSubscriptionInput{
		UserID:      "user-1",
		RouteName:   "commute",
		Coordinates: routeCoords,
	}
	_, err := svc.CreateSubscription(ctx, input)
	require.NoError(t, err)

	_, err = svc.CreateSubscription(ctx, input)
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateSubscription)
}

func TestUpdateSubscription_PartialUpdate(t *testing.T) {
	svc, clock := newSubscriptionService(t)
	ctx := context.Background()

	sub, err := svc.CreateSubscription(ctx, &usecase.CreateSubscriptionInput{
		UserID:      "user-1",
		RouteName:   "commute",
		Coordinates: routeCoords,
	})
	require.NoError(t, err)
	created := sub.UpdatedAt

	clock.Advance(time.Minute)
	threshold := 5
	disabled := false
	updated, err := svc.UpdateSubscription(ctx, sub.ID, &usecase.UpdateSubscriptionInput{
		SeverityThreshold: &threshold,
		AlertEnabled:      &disabled,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.SeverityThreshold)
	assert.False(t, updated.AlertEnabled)
	assert.Equal(t, "commute", updated.RouteName, "unset fields are untouched")
	assert.True(t, updated.UpdatedAt.After(created))

	got, err := svc.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.SeverityThreshold)
}

func TestDeleteSubscription(t *testing.T) {
	svc, _ := newSubscriptionService(t)
	ctx := context.Background()

	sub, err := svc.CreateSubscription(ctx, &usecase.CreateSubscriptionInput{
		UserID:      "user-1",
		RouteName:   "commute",
		Coordinates: routeCoords,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSubscription(ctx, sub.ID))
	_, err = svc.GetSubscription(ctx, sub.ID)
	assert.ErrorIs(t, err, domainerrors.ErrSubscriptionNotFound)
}
