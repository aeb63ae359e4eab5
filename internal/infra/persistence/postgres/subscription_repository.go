package postgres

import (
	"context"
	"encoding/json"

	"airscout/internal/domain/entity"
	domainerrors "airscout/internal/domain/errors"
	"airscout/internal/domain/repository"
	"airscout/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// subscriptionRepository implements the repository.SubscriptionRepository interface.
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository is the constructor for subscriptionRepository.
func NewSubscriptionRepository(db *gorm.DB) repository.SubscriptionRepository {
	return &subscriptionRepository{
		db: db,
	}
}

// Create persists a new route subscription.
func (repo *subscriptionRepository) Create(ctx context.Context, subscription *entity.RouteSubscription) error {
	subscriptionM, err := fromSubscriptionDomain(subscription)
	if err != nil {
		return err
	}

	if err := repo.db.WithContext(ctx).Create(subscriptionM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrDuplicateSubscription
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrSubscriptionCreationFailed.WrapMessage("missing required subscription information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create subscription")
	}

	// Update the entity with generated values
	subscription.ID = subscriptionM.ID
	subscription.CreatedAt = subscriptionM.CreatedAt
	subscription.UpdatedAt = subscriptionM.UpdatedAt

	return nil
}

// FindByID retrieves a subscription by its unique ID.
func (repo *subscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RouteSubscription, error) {
	var subscriptionM model.RouteSubscriptionModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&subscriptionM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrSubscriptionNotFound
		}

		return nil, errors.Wrap(err, "failed to find subscription by ID")
	}

	return toSubscriptionDomain(&subscriptionM)
}

// FindByUserID retrieves all subscriptions belonging to a user.
func (repo *subscriptionRepository) FindByUserID(ctx context.Context, userID string) ([]entity.RouteSubscription, error) {
	var subscriptionMs []model.RouteSubscriptionModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&subscriptionMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find subscriptions by user ID")
	}

	return toSubscriptionDomains(subscriptionMs)
}

// ListAlertEnabled retrieves every subscription with alerting enabled.
func (repo *subscriptionRepository) ListAlertEnabled(ctx context.Context) ([]entity.RouteSubscription, error) {
	var subscriptionMs []model.RouteSubscriptionModel

	if err := repo.db.WithContext(ctx).
		Where("alert_enabled = ?", true).
		Find(&subscriptionMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list alert-enabled subscriptions")
	}

	return toSubscriptionDomains(subscriptionMs)
}

// Update persists changes to an existing subscription.
func (repo *subscriptionRepository) Update(ctx context.Context, subscription *entity.RouteSubscription) error {
	subscriptionM, err := fromSubscriptionDomain(subscription)
	if err != nil {
		return err
	}

	result := repo.db.WithContext(ctx).
		Model(&model.RouteSubscriptionModel{}).
		Where("id = ?", subscription.ID).
		Updates(map[string]any{
			"route_name":         subscriptionM.RouteName,
			"route":              subscriptionM.Route,
			"severity_threshold": subscriptionM.SeverityThreshold,
			"alert_enabled":      subscriptionM.AlertEnabled,
			"push_token":         subscriptionM.PushToken,
		})
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.ErrDuplicateSubscription
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update subscription")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSubscriptionNotFound
	}

	return nil
}

// Delete soft-deletes a subscription.
func (repo *subscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.RouteSubscriptionModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete subscription")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSubscriptionNotFound
	}

	return nil
}

// fromSubscriptionDomain converts a domain entity to its GORM model.
// The route is stored as a JSONB array of [longitude, latitude] pairs.
func fromSubscriptionDomain(subscription *entity.RouteSubscription) (*model.RouteSubscriptionModel, error) {
	routeJSON, err := json.Marshal(subscription.Route)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode route geometry")
	}

	return &model.RouteSubscriptionModel{
		ID:                subscription.ID,
		UserID:            subscription.UserID,
		RouteName:         subscription.RouteName,
		Route:             routeJSON,
		SeverityThreshold: subscription.SeverityThreshold,
		AlertEnabled:      subscription.AlertEnabled,
		PushToken:         subscription.PushToken,
		CreatedAt:         subscription.CreatedAt,
		UpdatedAt:         subscription.UpdatedAt,
	}, nil
}

// toSubscriptionDomain converts a GORM model back to the domain entity.
func toSubscriptionDomain(subscriptionM *model.RouteSubscriptionModel) (*entity.RouteSubscription, error) {
	var route orb.LineString
	if err := json.Unmarshal(subscriptionM.Route, &route); err != nil {
		return nil, errors.Wrap(err, "failed to decode route geometry")
	}

	return &entity.RouteSubscription{
		ID:                subscriptionM.ID,
		UserID:            subscriptionM.UserID,
		RouteName:         subscriptionM.RouteName,
		Route:             route,
		SeverityThreshold: subscriptionM.SeverityThreshold,
		AlertEnabled:      subscriptionM.AlertEnabled,
		PushToken:         subscriptionM.PushToken,
		CreatedAt:         subscriptionM.CreatedAt,
		UpdatedAt:         subscriptionM.UpdatedAt,
	}, nil
}

func toSubscriptionDomains(subscriptionMs []model.RouteSubscriptionModel) ([]entity.RouteSubscription, error) {
	subscriptions := make([]entity.RouteSubscription, 0, len(subscriptionMs))
	for i := range subscriptionMs {
		subscription, err := toSubscriptionDomain(&subscriptionMs[i])
		if err != nil {
			return nil, err
		}
		subscriptions = append(subscriptions, *subscription)
	}

	return subscriptions, nil
}
