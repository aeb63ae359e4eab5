package impl

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"

	"airscout/internal/domain/entity"
	domainerrors "airscout/internal/domain/errors"
	"airscout/internal/domain/repository"
	"airscout/internal/geo"
	"airscout/internal/usecase"
)

// subscriptionService implements the SubscriptionUsecase interface.
type subscriptionService struct {
	subscriptions repository.SubscriptionRepository
	clock         clockwork.Clock
}

// NewSubscriptionService creates a new subscription service instance
func NewSubscriptionService(subscriptions repository.SubscriptionRepository, clock clockwork.Clock) usecase.SubscriptionUsecase {
	return &subscriptionService{
		subscriptions: subscriptions,
		clock:         clock,
	}
}

// CreateSubscription registers a route for periodic risk checks.
func (s *subscriptionService) CreateSubscription(ctx context.Context, input *usecase.CreateSubscriptionInput) (*entity.RouteSubscription, error) {
	route, err := validateRoute(input.Coordinates)
	if err != nil {
		return nil, err
	}

	threshold := input.SeverityThreshold
	if threshold == 0 {
		threshold = entity.DefaultSeverityThreshold
	}
	if !entity.ValidSeverity(threshold) {
		return nil, domainerrors.ErrInvalidSeverity
	}

	alertEnabled := true
	if input.AlertEnabled != nil {
		alertEnabled = *input.AlertEnabled
	}

	now := s.clock.Now()
	subscription := &entity.RouteSubscription{
		ID:                uuid.New(),
		UserID:            input.UserID,
		RouteName:         input.RouteName,
		Route:             route,
		SeverityThreshold: threshold,
		AlertEnabled:      alertEnabled,
		PushToken:         input.PushToken,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.subscriptions.Create(ctx, subscription); err != nil {
		return nil, err
	}

	return subscription, nil
}

// GetSubscription retrieves one subscription by ID.
func (s *subscriptionService) GetSubscription(ctx context.Context, id uuid.UUID) (*entity.RouteSubscription, error) {
	return s.subscriptions.FindByID(ctx, id)
}

// ListUserSubscriptions retrieves all subscriptions for a user.
func (s *subscriptionService) ListUserSubscriptions(ctx context.Context, userID string) ([]entity.RouteSubscription, error) {
	return s.subscriptions.FindByUserID(ctx, userID)
}

// UpdateSubscription applies a partial update.
func (s *subscriptionService) UpdateSubscription(ctx context.Context, id uuid.UUID, input *usecase.UpdateSubscriptionInput) (*entity.RouteSubscription, error) {
	subscription, err := s.subscriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.RouteName != nil {
		subscription.RouteName = *input.RouteName
	}
	if input.Coordinates != nil {
		route, err := validateRoute(input.Coordinates)
		if err != nil {
			return nil, err
		}
		subscription.Route = route
	}
	if input.SeverityThreshold != nil {
		if !entity.ValidSeverity(*input.SeverityThreshold) {
			return nil, domainerrors.ErrInvalidSeverity
		}
		subscription.SeverityThreshold = *input.SeverityThreshold
	}
	if input.AlertEnabled != nil {
		subscription.AlertEnabled = *input.AlertEnabled
	}
	if input.PushToken != nil {
		subscription.PushToken = *input.PushToken
	}
	subscription.UpdatedAt = s.clock.Now()

	if err := s.subscriptions.Update(ctx, subscription); err != nil {
		return nil, err
	}

	return subscription, nil
}

// DeleteSubscription removes a subscription.
func (s *subscriptionService) DeleteSubscription(ctx context.Context, id uuid.UUID) error {
	return s.subscriptions.Delete(ctx, id)
}

func validateRoute(coordinates [][2]float64) (orb.LineString, error) {
	if len(coordinates) < 2 {
		return nil, domainerrors.ErrRouteTooShort
	}
	route := make(orb.LineString, 0, len(coordinates))
	for _, pair := range coordinates {
		pt := orb.Point{pair[0], pair[1]}
		if err := geo.ValidatePoint(pt); err != nil {
			return nil, domainerrors.ErrInvalidCoordinate
		}
		route = append(route, pt)
	}

	return route, nil
}
