package impl

import (
	"context"
	"sort"

	"github.com/jonboulle/clockwork"

	"airscout/internal/domain/entity"
	"airscout/internal/domain/repository"
	"airscout/internal/usecase"
)

// hazardService implements the HazardUsecase interface.
type hazardService struct {
	hazards repository.HazardRepository
	clock   clockwork.Clock
}

// NewHazardService creates a new hazard query service instance
func NewHazardService(hazards repository.HazardRepository, clock clockwork.Clock) usecase.HazardUsecase {
	return &hazardService{hazards: hazards, clock: clock}
}

// ActiveHazards returns the active snapshot, highest severity first.
func (s *hazardService) ActiveHazards(ctx context.Context) ([]entity.Hazard, error) {
	snapshot, err := s.hazards.ActiveSnapshot(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}

	sort.SliceStable(snapshot, func(i, j int) bool {
		if snapshot[i].Severity != snapshot[j].Severity {
			return snapshot[i].Severity > snapshot[j].Severity
		}

		return snapshot[i].SourceID < snapshot[j].SourceID
	})

	return snapshot, nil
}
