package repository

import (
	"context"
	"time"

	"airscout/internal/domain/entity"
)

// HazardRepository persists hazards keyed by their source identifier.
type HazardRepository interface {
	// Upsert inserts the hazard or replaces the existing hazard with the
	// same source ID. On replacement the original creation time is kept.
	Upsert(ctx context.Context, hazard *entity.Hazard) error

	// FindBySourceID returns the hazard with the given source ID, expired
	// or not. Returns domainerrors.ErrHazardNotFound when absent.
	FindBySourceID(ctx context.Context, sourceID string) (*entity.Hazard, error)

	// ActiveSnapshot returns all hazards whose expiry is strictly after now.
	ActiveSnapshot(ctx context.Context, now time.Time) ([]entity.Hazard, error)

	// PruneExpired removes hazards whose expiry is at or before now and
	// reports how many were removed.
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}
