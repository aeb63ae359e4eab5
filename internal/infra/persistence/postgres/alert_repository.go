package postgres

import (
	"context"
	"time"

	"airscout/internal/domain/entity"
	domainerrors "airscout/internal/domain/errors"
	"airscout/internal/domain/repository"
	"airscout/internal/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// alertRepository implements the repository.AlertRepository interface.
type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository is the constructor for alertRepository.
func NewAlertRepository(db *gorm.DB) repository.AlertRepository {
	return &alertRepository{
		db: db,
	}
}

// TryReserve claims the (user, hazard source) pair for alerting via a
// single conditional upsert. The composite primary key rejects the
// insert when a row exists; the WHERE on the update arm only refreshes
// rows whose cooldown has lapsed. RowsAffected tells us which side won,
// so two concurrent passes can never both reserve.
func (repo *alertRepository) TryReserve(ctx context.Context, userID, hazardSourceID string, now time.Time, cooldown time.Duration) (bool, error) {
	cutoff := now.Add(-cooldown)

	result := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "hazard_source_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"last_sent_at": now,
			}),
			Where: clause.Where{
				Exprs: []clause.Expression{
					clause.Lte{Column: clause.Column{Table: "alert_cooldowns", Name: "last_sent_at"}, Value: cutoff},
				},
			},
		}).
		Create(&model.AlertCooldownModel{
			UserID:         userID,
			HazardSourceID: hazardSourceID,
			LastSentAt:     now,
		})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to reserve alert slot")
	}

	return result.RowsAffected > 0, nil
}

// RecordDelivery appends one delivery attempt to the alert history.
func (repo *alertRepository) RecordDelivery(ctx context.Context, record *entity.AlertRecord) error {
	recordM := &model.AlertHistoryModel{
		ID:             record.ID,
		UserID:         record.UserID,
		SubscriptionID: record.SubscriptionID,
		HazardSourceID: record.HazardSourceID,
		RiskScore:      record.RiskScore,
		RiskLevel:      record.RiskLevel,
		Status:         string(record.Status),
		ErrorMessage:   record.ErrorMessage,
		SentAt:         record.SentAt,
	}

	if err := repo.db.WithContext(ctx).Create(recordM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to record alert delivery")
	}

	record.ID = recordM.ID

	return nil
}
