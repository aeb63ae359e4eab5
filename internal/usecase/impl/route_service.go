package impl

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"airscout/config"
	"airscout/internal/domain/entity"
	domainerrors "airscout/internal/domain/errors"
	"airscout/internal/domain/repository"
	"airscout/internal/engine/matcher"
	"airscout/internal/errors"
	"airscout/internal/geo"
	"airscout/internal/observability"
	"airscout/internal/usecase"
)

// routeService implements the RouteCheckUsecase and HazardUsecase
// interfaces.
type routeService struct {
	cfg     *config.Config
	hazards repository.HazardRepository
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewRouteService creates a new route check service instance
func NewRouteService(
	cfg *config.Config,
	hazards repository.HazardRepository,
	clock clockwork.Clock,
	metrics *observability.Metrics,
) usecase.RouteCheckUsecase {
	return &routeService{
		cfg:     cfg,
		hazards: hazards,
		clock:   clock,
		metrics: metrics,
	}
}

// CheckRoute assesses one route against the active hazard snapshot.
func (s *routeService) CheckRoute(ctx context.Context, input *usecase.RouteCheckInput) (*usecase.RouteCheckResult, error) {
	route, err := validateRoute(input.Coordinates)
	if err != nil {
		return nil, err
	}

	params := s.matchParams(input.BufferMeters, input.MinSeverity)
	if input.MinSeverity != 0 && !entity.ValidSeverity(input.MinSeverity) {
		return nil, domainerrors.ErrInvalidSeverity
	}

	now := s.clock.Now()
	snapshot, err := s.hazards.ActiveSnapshot(ctx, now)
	if err != nil {
		return nil, err
	}

	assessment, err := matcher.Assess(route, params, snapshot, now)
	if err != nil {
		return nil, toRouteCheckError(err)
	}

	s.metrics.RouteChecks.WithLabelValues(assessment.Level).Inc()

	return toRouteCheckResult(assessment, params.BufferMeters, now), nil
}

func (s *routeService) matchParams(bufferOverride float64, minSeverityOverride int) matcher.Params {
	params := matcher.Params{
		BufferMeters:      s.cfg.Risk.BufferMeters,
		MinSeverity:       entity.SeverityMin,
		ContributionScale: s.cfg.Risk.ContributionScale,
		HighThreshold:     s.cfg.Risk.HighThreshold,
		ModerateThreshold: s.cfg.Risk.ModerateThreshold,
	}
	if bufferOverride > 0 {
		params.BufferMeters = bufferOverride
	}
	if minSeverityOverride > 0 {
		params.MinSeverity = minSeverityOverride
	}

	return params
}

func toRouteCheckError(err error) error {
	switch {
	case errors.Is(err, geo.ErrRouteTooShort):
		return domainerrors.ErrRouteTooShort
	case errors.Is(err, geo.ErrInvalidCoordinate):
		return domainerrors.ErrInvalidCoordinate
	case errors.Is(err, geo.ErrInvalidBuffer):
		return domainerrors.ErrInvalidBuffer
	default:
		return err
	}
}

func toRouteCheckResult(assessment *matcher.Assessment, bufferMeters float64, now time.Time) *usecase.RouteCheckResult {
	hazards := make([]usecase.MatchedHazardResult, 0, len(assessment.Hazards))
	for _, m := range assessment.Hazards {
		hazards = append(hazards, usecase.MatchedHazardResult{
			Type:           string(m.Hazard.Kind),
			Severity:       m.Hazard.Severity,
			Description:    m.Hazard.Description,
			SourceID:       m.Hazard.SourceID,
			Longitude:      m.Hazard.Longitude(),
			Latitude:       m.Hazard.Latitude(),
			DistanceMeters: m.DistanceMeters,
			ExpiresAt:      m.Hazard.ExpiresAt,
		})
	}

	return &usecase.RouteCheckResult{
		Score:           assessment.Score,
		Level:           assessment.Level,
		Message:         assessment.Message,
		HazardCount:     assessment.HazardCount,
		HighestSeverity: assessment.HighestSeverity,
		Hazards:         hazards,
		BufferMeters:    bufferMeters,
		CheckedAt:       now,
	}
}
