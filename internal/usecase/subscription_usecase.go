package usecase

import (
	"context"

	"github.com/google/uuid"

	"airscout/internal/domain/entity"
)

// CreateSubscriptionInput carries a new route subscription request.
type CreateSubscriptionInput struct {
	UserID            string       `json:"user_id" validate:"required"`
	RouteName         string       `json:"route_name" validate:"required"`
	Coordinates       [][2]float64 `json:"coordinates" validate:"required,min=2"`
	SeverityThreshold int          `json:"severity_threshold" validate:"omitempty,min=1,max=5"`
	AlertEnabled      *bool        `json:"alert_enabled"`
	PushToken         string       `json:"push_token"`
}

// UpdateSubscriptionInput carries a partial subscription update. Nil
// fields are left unchanged.
type UpdateSubscriptionInput struct {
	RouteName         *string      `json:"route_name"`
	Coordinates       [][2]float64 `json:"coordinates" validate:"omitempty,min=2"`
	SeverityThreshold *int         `json:"severity_threshold" validate:"omitempty,min=1,max=5"`
	AlertEnabled      *bool        `json:"alert_enabled"`
	PushToken         *string      `json:"push_token"`
}

// SubscriptionUsecase defines the interface for route subscription management
type SubscriptionUsecase interface {
	// CreateSubscription registers a route for periodic risk checks.
	CreateSubscription(ctx context.Context, input *CreateSubscriptionInput) (*entity.RouteSubscription, error)

	// GetSubscription retrieves one subscription by ID.
	GetSubscription(ctx context.Context, id uuid.UUID) (*entity.RouteSubscription, error)

	// ListUserSubscriptions retrieves all subscriptions for a user.
	ListUserSubscriptions(ctx context.Context, userID string) ([]entity.RouteSubscription, error)

	// UpdateSubscription applies a partial update.
	UpdateSubscription(ctx context.Context, id uuid.UUID, input *UpdateSubscriptionInput) (*entity.RouteSubscription, error)

	// DeleteSubscription removes a subscription.
	DeleteSubscription(ctx context.Context, id uuid.UUID) error
}
