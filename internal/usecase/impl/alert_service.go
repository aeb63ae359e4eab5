package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"airscout/config"
	"airscout/internal/domain/entity"
	"airscout/internal/domain/repository"
	"airscout/internal/domain/service"
	"airscout/internal/engine/alertdedup"
	"airscout/internal/engine/matcher"
	"airscout/internal/observability"
	"airscout/internal/usecase"
)

// alertService implements the AlertUsecase interface. One pass matches
// every alert-enabled subscription against the current hazard snapshot
// and notifies on hazards the user has not been alerted about recently.
type alertService struct {
	cfg           *config.Config
	subscriptions repository.SubscriptionRepository
	hazards       repository.HazardRepository
	alerts        repository.AlertRepository
	deduplicator  *alertdedup.Deduplicator
	notifier      service.NotificationService
	publisher     service.EventPublisher
	clock         clockwork.Clock
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewAlertService creates a new alert pass service instance
func NewAlertService(
	cfg *config.Config,
	subscriptions repository.SubscriptionRepository,
	hazards repository.HazardRepository,
	alerts repository.AlertRepository,
	notifier service.NotificationService,
	publisher service.EventPublisher,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) usecase.AlertUsecase {
	return &alertService{
		cfg:           cfg,
		subscriptions: subscriptions,
		hazards:       hazards,
		alerts:        alerts,
		deduplicator:  alertdedup.NewDeduplicator(alertdedup.Params{Cooldown: cfg.Alerts.Cooldown}, alerts),
		notifier:      notifier,
		publisher:     publisher,
		clock:         clock,
		logger:        logger,
		metrics:       metrics,
	}
}

// RunAlertPass evaluates every alert-enabled subscription.
func (s *alertService) RunAlertPass(ctx context.Context) (*usecase.AlertPassSummary, error) {
	started := s.clock.Now()

	subs, err := s.subscriptions.ListAlertEnabled(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.hazards.ActiveSnapshot(ctx, started)
	if err != nil {
		return nil, err
	}

	summary := &usecase.AlertPassSummary{
		Subscriptions: len(subs),
		DryRun:        s.cfg.Alerts.DryRun,
	}

	params := matcher.Params{
		BufferMeters:      s.cfg.Risk.BufferMeters,
		MinSeverity:       s.cfg.Alerts.MinSeverity,
		ContributionScale: s.cfg.Risk.ContributionScale,
		HighThreshold:     s.cfg.Risk.HighThreshold,
		ModerateThreshold: s.cfg.Risk.ModerateThreshold,
	}

	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.evaluateSubscription(ctx, sub, params, snapshot, summary); err != nil {
			// one broken subscription must not sink the pass
			s.logger.ErrorContext(ctx, "failed to evaluate subscription",
				slog.String("subscriptionId", sub.ID.String()),
				slog.Any("error", err),
			)
		}
	}

	summary.Duration = s.clock.Since(started)
	s.metrics.PassDuration.WithLabelValues("alerts").Observe(summary.Duration.Seconds())
	s.logger.Info("alert pass complete",
		slog.Int("subscriptions", summary.Subscriptions),
		slog.Int("intents", summary.Intents),
		slog.Int("sent", summary.Sent),
		slog.Int("failed", summary.Failed),
		slog.Int("suppressed", summary.Suppressed),
		slog.Bool("dryRun", summary.DryRun),
		slog.Duration("duration", summary.Duration),
	)

	return summary, nil
}

func (s *alertService) evaluateSubscription(
	ctx context.Context,
	sub entity.RouteSubscription,
	params matcher.Params,
	snapshot []entity.Hazard,
	summary *usecase.AlertPassSummary,
) error {
	now := s.clock.Now()

	assessment, err := matcher.Assess(sub.Route, params, snapshot, now)
	if err != nil {
		return err
	}
	if assessment.HazardCount == 0 {
		return nil
	}

	// dry-run reports what would alert without burning cooldowns
	if s.cfg.Alerts.DryRun {
		for _, m := range assessment.Hazards {
			if m.Hazard.Severity < sub.SeverityThreshold {
				continue
			}
			summary.Intents++
			s.logger.InfoContext(ctx, "dry-run alert intent",
				slog.String("userId", sub.UserID),
				slog.String("sourceId", m.Hazard.SourceID),
				slog.Int("severity", m.Hazard.Severity),
			)
		}

		return nil
	}

	result, err := s.deduplicator.Filter(ctx, sub, assessment.Hazards, now)
	if err != nil {
		return err
	}
	summary.Suppressed += result.Suppressed
	s.metrics.AlertsSuppressed.Add(float64(result.Suppressed))

	for _, intent := range result.Intents {
		summary.Intents++
		s.deliver(ctx, intent, assessment, summary)
	}

	return nil
}

// deliver sends one notification and records the attempt. A delivery
// failure is recorded but the cooldown reservation stands, so a flaky
// transport cannot cause a notification storm.
func (s *alertService) deliver(ctx context.Context, intent alertdedup.Intent, assessment *matcher.Assessment, summary *usecase.AlertPassSummary) {
	sub := intent.Subscription
	hazard := intent.Hazard.Hazard

	title := fmt.Sprintf("%s risk on %s", assessment.Level, sub.RouteName)
	body := assessment.Message
	data := map[string]string{
		"source_id":       hazard.SourceID,
		"type":            string(hazard.Kind),
		"severity":        strconv.Itoa(hazard.Severity),
		"risk_score":      strconv.Itoa(assessment.Score),
		"risk_level":      assessment.Level,
		"distance_meters": strconv.FormatFloat(intent.Hazard.DistanceMeters, 'f', 1, 64),
	}

	record := &entity.AlertRecord{
		ID:             uuid.New(),
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		HazardSourceID: hazard.SourceID,
		RiskScore:      assessment.Score,
		RiskLevel:      assessment.Level,
		Status:         entity.AlertStatusSent,
		SentAt:         s.clock.Now(),
	}

	if err := s.notifier.SendSingleNotification(ctx, sub.PushToken, title, body, data); err != nil {
		record.Status = entity.AlertStatusFailed
		record.ErrorMessage = err.Error()
		summary.Failed++
		s.metrics.AlertsFailed.Inc()
		s.logger.WarnContext(ctx, "notification delivery failed",
			slog.String("userId", sub.UserID),
			slog.String("sourceId", hazard.SourceID),
			slog.Any("error", err),
		)
	} else {
		summary.Sent++
		s.metrics.AlertsSent.Inc()
	}

	if err := s.alerts.RecordDelivery(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to record alert delivery",
			slog.String("userId", sub.UserID),
			slog.String("sourceId", hazard.SourceID),
			slog.Any("error", err),
		)
	}

	event := &service.AlertEvent{
		UserID:         sub.UserID,
		SubscriptionID: sub.ID.String(),
		HazardSourceID: hazard.SourceID,
		RiskScore:      assessment.Score,
		RiskLevel:      assessment.Level,
		Status:         string(record.Status),
		Timestamp:      record.SentAt,
	}
	if err := s.publisher.PublishAlertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish alert event",
			slog.String("sourceId", hazard.SourceID),
			slog.Any("error", err),
		)
	}
}
