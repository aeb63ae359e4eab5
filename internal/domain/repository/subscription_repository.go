package repository

import (
	"context"

	"github.com/google/uuid"

	"airscout/internal/domain/entity"
)

// SubscriptionRepository persists route subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *entity.RouteSubscription) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RouteSubscription, error)
	FindByUserID(ctx context.Context, userID string) ([]entity.RouteSubscription, error)

	// ListAlertEnabled returns every subscription with alerting turned on,
	// across all users. Used by the periodic alert pass.
	ListAlertEnabled(ctx context.Context) ([]entity.RouteSubscription, error)

	Update(ctx context.Context, subscription *entity.RouteSubscription) error
	Delete(ctx context.Context, id uuid.UUID) error
}
