// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"airscout/internal/domain/entity"
	domainerrors "airscout/internal/domain/errors"
	"airscout/internal/domain/repository"
	"airscout/internal/infra/persistence/model"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// hazardRepository implements the repository.HazardRepository interface.
type hazardRepository struct {
	db *gorm.DB
}

// NewHazardRepository is the constructor for hazardRepository.
func NewHazardRepository(db *gorm.DB) repository.HazardRepository {
	return &hazardRepository{
		db: db,
	}
}

// Upsert inserts the hazard or replaces the row with the same source_id.
// The conflict clause leaves created_at untouched so the original
// creation time survives refreshes.
func (repo *hazardRepository) Upsert(ctx context.Context, hazard *entity.Hazard) error {
	hazardM := fromHazardDomain(hazard)

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "source_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"kind", "severity", "longitude", "latitude",
				"description", "metadata", "updated_at", "expires_at",
			}),
		}).
		Create(hazardM).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert hazard")
	}

	return nil
}

// FindBySourceID retrieves a hazard by its external source identifier.
func (repo *hazardRepository) FindBySourceID(ctx context.Context, sourceID string) (*entity.Hazard, error) {
	var hazardM model.HazardModel

	if err := repo.db.WithContext(ctx).
		Where("source_id = ?", sourceID).
		First(&hazardM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrHazardNotFound
		}

		return nil, errors.Wrap(err, "failed to find hazard by source ID")
	}

	return toHazardDomain(&hazardM), nil
}

// ActiveSnapshot returns all hazards that have not expired as of now.
func (repo *hazardRepository) ActiveSnapshot(ctx context.Context, now time.Time) ([]entity.Hazard, error) {
	var hazardMs []model.HazardModel

	if err := repo.db.WithContext(ctx).
		Where("expires_at > ?", now).
		Find(&hazardMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load active hazards")
	}

	hazards := make([]entity.Hazard, 0, len(hazardMs))
	for i := range hazardMs {
		hazards = append(hazards, *toHazardDomain(&hazardMs[i]))
	}

	return hazards, nil
}

// PruneExpired deletes hazards whose expiry has passed.
func (repo *hazardRepository) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.HazardModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to prune expired hazards")
	}

	return result.RowsAffected, nil
}

// fromHazardDomain converts a domain entity to its GORM model.
func fromHazardDomain(hazard *entity.Hazard) *model.HazardModel {
	return &model.HazardModel{
		ID:          hazard.ID,
		Kind:        string(hazard.Kind),
		Severity:    hazard.Severity,
		Longitude:   hazard.Longitude(),
		Latitude:    hazard.Latitude(),
		Description: hazard.Description,
		SourceID:    hazard.SourceID,
		Metadata:    hazard.Metadata,
		CreatedAt:   hazard.CreatedAt,
		UpdatedAt:   hazard.UpdatedAt,
		ExpiresAt:   hazard.ExpiresAt,
	}
}

// toHazardDomain converts a GORM model back to the domain entity.
func toHazardDomain(hazardM *model.HazardModel) *entity.Hazard {
	return &entity.Hazard{
		ID:          hazardM.ID,
		Kind:        entity.HazardKind(hazardM.Kind),
		Severity:    hazardM.Severity,
		Location:    orb.Point{hazardM.Longitude, hazardM.Latitude},
		Description: hazardM.Description,
		SourceID:    hazardM.SourceID,
		Metadata:    hazardM.Metadata,
		CreatedAt:   hazardM.CreatedAt,
		UpdatedAt:   hazardM.UpdatedAt,
		ExpiresAt:   hazardM.ExpiresAt,
	}
}
