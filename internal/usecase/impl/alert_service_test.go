package impl

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airscout/internal/domain/entity"
	"airscout/internal/store/memory"
	"airscout/internal/usecase"
)

type alertFixture struct {
	svc      usecase.AlertUsecase
	subs     *memory.SubscriptionRepository
	hazards  *memory.HazardStore
	alerts   *memory.AlertRepository
	notifier *fakeNotifier
	events   *fakePublisher
	clock    *clockwork.FakeClock
}

func newAlertFixture(t *testing.T, dryRun bool) *alertFixture {
	t.Helper()
	cfg := testConfig()
	cfg.Alerts.DryRun = dryRun

	f := &alertFixture{
		subs:     memory.NewSubscriptionRepository(),
		hazards:  memory.NewHazardStore(),
		alerts:   memory.NewAlertRepository(),
		notifier: &fakeNotifier{},
		events:   &fakePublisher{},
		clock:    clockwork.NewFakeClockAt(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)),
	}
	f.svc = NewAlertService(cfg, f.subs, f.hazards, f.alerts, f.notifier, f.events, f.clock, testLogger(), testMetrics())

	return f
}

func (f *alertFixture) addSubscription(t *testing.T, userID string, threshold int) *entity.RouteSubscription {
	t.Helper()
	svc := NewSubscriptionService(f.subs, f.clock)
	sub, err := svc.CreateSubscription(context.Background(), &usecase.CreateSubscriptionInput{
		UserID:            userID,
		RouteName:         "commute",
		Coordinates:       routeCoords,
		SeverityThreshold: threshold,
		PushToken:         "token-" + userID,
	})
	require.NoError(t, err)

	return sub
}

func (f *alertFixture) addHazard(t *testing.T, severity int, sourceID string, ttl time.Duration) {
	t.Helper()
	now := f.clock.Now()
	h := entity.Hazard{
		Kind:        entity.HazardKindPermit,
		Severity:    severity,
		Location:    orb.Point{-87.625, 41.88},
		Description: "demolition",
		SourceID:    sourceID,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	require.NoError(t, f.hazards.Upsert(context.Background(), &h))
}

func TestRunAlertPass_SendsAndRecords(t *testing.T) {
	f := newAlertFixture(t, false)
	f.addSubscription(t, "user-1", 3)
	f.addHazard(t, 4, "100123", 12*time.Hour)

	summary, err := f.svc.RunAlertPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Subscriptions)
	assert.Equal(t, 1, summary.Intents)
	assert.Equal(t, 1, summary.Sent)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, 1, f.notifier.sentCount())

	history := f.alerts.History()
	require.Len(t, history, 1)
	assert.Equal(t, "user-1", history[0].UserID)
	assert.Equal(t, "100123", history[0].HazardSourceID)
	assert.Equal(t, entity.AlertStatusSent, history[0].Status)
	assert.Len(t, f.events.alertEvents, 1)
}

func TestRunAlertPass_CooldownAcrossPasses(t *testing.T) {
	f := newAlertFixture(t, false)
	f.addSubscription(t, "user-1", 3)
	f.addHazard(t, 4, "100123", 12*time.Hour)
	ctx := context.Background()

	first, err := f.svc.RunAlertPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sent)

	f.clock.Advance(time.Hour)
	second, err := f.svc.RunAlertPass(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Sent, "second pass inside the cooldown sends nothing")
	assert.Equal(t, 1, second.Suppressed)

	f.clock.Advance(4 * time.Hour)
	third, err := f.svc.RunAlertPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Sent, "pass after the cooldown alerts again")
}

func TestRunAlertPass_FailedDeliveryStillBurnsCooldown(t *testing.T) {
	f := newAlertFixture(t, false)
	f.addSubscription(t, "user-1", 3)
	f.addHazard(t, 4, "100123", 12*time.Hour)
	f.notifier.sendFn = func(string) error { return errors.New("fcm unavailable") }
	ctx := context.Background()

	first, err := f.svc.RunAlertPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Failed)
	assert.Zero(t, first.Sent)

	history := f.alerts.History()
	require.Len(t, history, 1)
	assert.Equal(t, entity.AlertStatusFailed, history[0].Status)
	assert.Contains(t, history[0].ErrorMessage, "fcm unavailable")

	// transport recovers, but the failed attempt already consumed the slot
	f.notifier.sendFn = nil
	f.clock.Advance(time.Hour)
	second, err := f.svc.RunAlertPass(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Sent)
	assert.Equal(t, 1, second.Suppressed)
}

func TestRunAlertPass_ThresholdFiltersHazards(t *testing.T) {
	f := newAlertFixture(t, false)
	f.addSubscription(t, "user-1", 5)
	f.addHazard(t, 4, "100123", 12*time.Hour)

	summary, err := f.svc.RunAlertPass(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Intents, "hazard below the subscription threshold")
	assert.Zero(t, f.notifier.sentCount())
}

func TestRunAlertPass_DryRunDoesNotBurnCooldown(t *testing.T) {
	f := newAlertFixture(t, true)
	f.addSubscription(t, "user-1", 3)
	f.addHazard(t, 4, "100123", 12*time.Hour)
	ctx := context.Background()

	summary, err := f.svc.RunAlertPass(ctx)
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.Intents)
	assert.Zero(t, summary.Sent)
	assert.Zero(t, f.notifier.sentCount())
	assert.Empty(t, f.alerts.History())

	// dry run left the ledger untouched
	ok, err := f.alerts.TryReserve(ctx, "user-1", "100123", f.clock.Now(), 4*time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}
