package impl

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"airscout/config"
	"airscout/internal/domain/entity"
	"airscout/internal/domain/repository"
	"airscout/internal/domain/service"
	"airscout/internal/engine/permit"
	"airscout/internal/engine/schoolzone"
	"airscout/internal/engine/traffic"
	"airscout/internal/observability"
	"airscout/internal/usecase"
)

// ingestService implements the IngestUsecase interface. It glues the
// data portal fetches to the hazard generators and the hazard store.
type ingestService struct {
	dataSource service.CityDataSource
	hazards    repository.HazardRepository
	publisher  service.EventPublisher
	validator  *permit.Validator
	schools    *schoolzone.Generator
	traffic    *traffic.Generator
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics

	// last fetched school roster, shared with the traffic pass for the
	// peak-window override
	rosterMu sync.RWMutex
	roster   []entity.School
}

// NewIngestService creates a new ingestion service instance
func NewIngestService(
	cfg *config.Config,
	dataSource service.CityDataSource,
	hazards repository.HazardRepository,
	publisher service.EventPublisher,
	schedule *schoolzone.Schedule,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) usecase.IngestUsecase {
	validator := permit.NewValidator(permit.Params{
		LookbackWindow:        cfg.PermitValidation.Lookback,
		CorroborationRadius:   cfg.PermitValidation.CorroborationRadiusMeters,
		AllowedComplaintTypes: cfg.PermitValidation.ComplaintTypes,
		HazardTTL:             cfg.PermitValidation.HazardTTL,
	})
	trafficGen := traffic.NewGenerator(traffic.Params{
		FreeFlowSpeedMPH:     cfg.Traffic.AssumedSpeedLimitMph,
		MinSeverity:          cfg.Traffic.MinSeverity,
		HazardTTL:            cfg.Traffic.HazardTTL,
		SchoolOverrideRadius: cfg.Traffic.OverrideRadiusMeters,
	}, schedule)

	return &ingestService{
		dataSource: dataSource,
		hazards:    hazards,
		publisher:  publisher,
		validator:  validator,
		schools:    schoolzone.NewGenerator(schedule),
		traffic:    trafficGen,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// RunPermitPass validates freshly issued permits against complaint
// evidence and upserts the surviving hazards.
func (s *ingestService) RunPermitPass(ctx context.Context) (*usecase.PassSummary, error) {
	started := s.clock.Now()
	now := started

	permits, permitStats, err := s.dataSource.FetchPermits(ctx, now.Add(-s.validator.HazardTTL()))
	if err != nil {
		return nil, err
	}
	s.countFetch("permits", permitStats)

	complaints, complaintStats, err := s.dataSource.FetchComplaints(ctx, now.Add(-s.validator.LookbackWindow()))
	if err != nil {
		return nil, err
	}
	s.countFetch("complaints", complaintStats)

	result := s.validator.Validate(permits, complaints, now)
	s.metrics.PermitsSuppressed.Add(float64(result.Suppressed))

	upserted, err := s.upsertAll(ctx, result.Hazards)
	if err != nil {
		return nil, err
	}

	summary := &usecase.PassSummary{
		Pass:            "permits",
		Fetched:         permitStats.Fetched + complaintStats.Fetched,
		Dropped:         permitStats.Dropped + complaintStats.Dropped + result.DroppedBad + result.ComplaintBad,
		HazardsUpserted: upserted,
		Suppressed:      result.Suppressed,
		Duration:        s.clock.Since(started),
	}
	s.observePass(summary)

	return summary, nil
}

// RunSchoolPass refreshes the school roster and emits school-zone
// hazards for the current peak window, if any.
func (s *ingestService) RunSchoolPass(ctx context.Context) (*usecase.PassSummary, error) {
	started := s.clock.Now()

	schools, stats, err := s.dataSource.FetchSchools(ctx)
	if err != nil {
		return nil, err
	}
	s.countFetch("schools", stats)

	s.rosterMu.Lock()
	s.roster = schools
	s.rosterMu.Unlock()

	result := s.schools.Generate(schools, started)

	upserted, err := s.upsertAll(ctx, result.Hazards)
	if err != nil {
		return nil, err
	}

	summary := &usecase.PassSummary{
		Pass:            "schools",
		Fetched:         stats.Fetched,
		Dropped:         stats.Dropped + result.DroppedBad,
		HazardsUpserted: upserted,
		Duration:        s.clock.Since(started),
	}
	s.observePass(summary)

	return summary, nil
}

// RunTrafficPass upserts short-lived congestion hazards.
func (s *ingestService) RunTrafficPass(ctx context.Context) (*usecase.PassSummary, error) {
	started := s.clock.Now()

	segments, stats, err := s.dataSource.FetchTraffic(ctx)
	if err != nil {
		return nil, err
	}
	s.countFetch("traffic", stats)

	s.rosterMu.RLock()
	roster := s.roster
	s.rosterMu.RUnlock()

	result := s.traffic.Generate(segments, roster, started)

	upserted, err := s.upsertAll(ctx, result.Hazards)
	if err != nil {
		return nil, err
	}

	summary := &usecase.PassSummary{
		Pass:            "traffic",
		Fetched:         stats.Fetched,
		Dropped:         stats.Dropped + result.DroppedBad,
		HazardsUpserted: upserted,
		Suppressed:      result.Overridden,
		Duration:        s.clock.Since(started),
	}
	s.observePass(summary)

	return summary, nil
}

// RunPrunePass removes expired hazards from the store.
func (s *ingestService) RunPrunePass(ctx context.Context) (*usecase.PassSummary, error) {
	started := s.clock.Now()

	pruned, err := s.hazards.PruneExpired(ctx, started)
	if err != nil {
		return nil, err
	}
	s.metrics.HazardsPruned.Add(float64(pruned))

	summary := &usecase.PassSummary{
		Pass:     "prune",
		Dropped:  int(pruned),
		Duration: s.clock.Since(started),
	}
	s.observePass(summary)

	return summary, nil
}

// upsertAll writes one batch of hazards, publishing an event per upsert.
// A failed upsert stops the batch; the pass retries on its next tick.
func (s *ingestService) upsertAll(ctx context.Context, hazards []entity.Hazard) (int, error) {
	for i := range hazards {
		hazard := hazards[i]
		if err := s.hazards.Upsert(ctx, &hazard); err != nil {
			return i, err
		}
		s.metrics.HazardsUpserted.WithLabelValues(string(hazard.Kind)).Inc()

		event := &service.HazardEvent{
			SourceID:  hazard.SourceID,
			Kind:      string(hazard.Kind),
			Severity:  hazard.Severity,
			Longitude: hazard.Longitude(),
			Latitude:  hazard.Latitude(),
			ExpiresAt: hazard.ExpiresAt,
			Timestamp: s.clock.Now(),
		}
		if err := s.publisher.PublishHazardEvent(ctx, event); err != nil {
			// event delivery is best effort; the hazard is already stored
			s.logger.WarnContext(ctx, "failed to publish hazard event",
				slog.String("sourceId", hazard.SourceID),
				slog.Any("error", err),
			)
		}
	}

	return len(hazards), nil
}

func (s *ingestService) countFetch(dataset string, stats service.FetchStats) {
	s.metrics.RecordsFetched.WithLabelValues(dataset).Add(float64(stats.Fetched))
	s.metrics.RecordsDropped.WithLabelValues(dataset).Add(float64(stats.Dropped))
}

func (s *ingestService) observePass(summary *usecase.PassSummary) {
	s.metrics.PassDuration.WithLabelValues(summary.Pass).Observe(summary.Duration.Seconds())
	s.logger.Info("pass complete",
		slog.String("pass", summary.Pass),
		slog.Int("fetched", summary.Fetched),
		slog.Int("dropped", summary.Dropped),
		slog.Int("hazardsUpserted", summary.HazardsUpserted),
		slog.Int("suppressed", summary.Suppressed),
		slog.Duration("duration", summary.Duration),
	)
}
