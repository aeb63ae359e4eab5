package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"airscout/config"
	"airscout/internal/domain/entity"
	"airscout/internal/domain/service"
	"airscout/internal/observability"
)

func testConfig() *config.Config {
	return &config.Config{
		PermitValidation: config.PermitValidationConfig{
			CorroborationRadiusMeters: 200,
			Lookback:                  48 * time.Hour,
			HazardTTL:                 168 * time.Hour,
			ComplaintTypes:            []string{"SVR", "NOI"},
		},
		SchoolZone: config.SchoolZoneConfig{ZoneRadiusMeters: 150},
		Traffic: config.TrafficConfig{
			AssumedSpeedLimitMph: 30,
			MinSeverity:          3,
			HazardTTL:            30 * time.Minute,
			OverrideRadiusMeters: 200,
		},
		Risk: config.RiskConfig{
			BufferMeters:      25,
			ContributionScale: 25,
			HighThreshold:     70,
			ModerateThreshold: 40,
		},
		Alerts: config.AlertsConfig{
			Cooldown:    4 * time.Hour,
			MinSeverity: 3,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *observability.Metrics {
	return observability.NewMetrics(prometheus.NewRegistry())
}

// fakeDataSource serves canned batches.
type fakeDataSource struct {
	permits    []entity.Permit
	complaints []entity.Complaint
	schools    []entity.School
	traffic    []entity.TrafficSegment
	err        error
}

func (f *fakeDataSource) FetchPermits(_ context.Context, _ time.Time) ([]entity.Permit, service.FetchStats, error) {
	return f.permits, service.FetchStats{Fetched: len(f.permits)}, f.err
}

func (f *fakeDataSource) FetchComplaints(_ context.Context, _ time.Time) ([]entity.Complaint, service.FetchStats, error) {
	return f.complaints, service.FetchStats{Fetched: len(f.complaints)}, f.err
}

func (f *fakeDataSource) FetchSchools(_ context.Context) ([]entity.School, service.FetchStats, error) {
	return f.schools, service.FetchStats{Fetched: len(f.schools)}, f.err
}

func (f *fakeDataSource) FetchTraffic(_ context.Context) ([]entity.TrafficSegment, service.FetchStats, error) {
	return f.traffic, service.FetchStats{Fetched: len(f.traffic)}, f.err
}

// fakeNotifier records sends and can be told to fail.
type fakeNotifier struct {
	mu     sync.Mutex
	sent   []string // push tokens, in send order
	sendFn func(token string) error
}

func (f *fakeNotifier) SendSingleNotification(_ context.Context, token, _, _ string, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendFn != nil {
		if err := f.sendFn(token); err != nil {
			return err
		}
	}
	f.sent = append(f.sent, token)

	return nil
}

func (f *fakeNotifier) SendBatchNotification(ctx context.Context, tokens []string, title, body string, data map[string]string) (*service.BatchResult, error) {
	result := &service.BatchResult{}
	for _, token := range tokens {
		if err := f.SendSingleNotification(ctx, token, title, body, data); err != nil {
			result.FailureCount++
			result.FailedTokens = append(result.FailedTokens, token)

			continue
		}
		result.SuccessCount++
	}

	return result, nil
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.sent)
}

// fakePublisher collects published events.
type fakePublisher struct {
	mu           sync.Mutex
	hazardEvents []service.HazardEvent
	alertEvents  []service.AlertEvent
}

func (f *fakePublisher) PublishHazardEvent(_ context.Context, event *service.HazardEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hazardEvents = append(f.hazardEvents, *event)

	return nil
}

func (f *fakePublisher) PublishAlertEvent(_ context.Context, event *service.AlertEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alertEvents = append(f.alertEvents, *event)

	return nil
}

func (f *fakePublisher) Close() error { return nil }
