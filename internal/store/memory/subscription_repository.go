package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"airscout/internal/domain/entity"
	domainerrors "airscout/internal/domain/errors"
)

// SubscriptionRepository keeps route subscriptions in memory.
type SubscriptionRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]entity.RouteSubscription
}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{byID: make(map[uuid.UUID]entity.RouteSubscription)}
}

func (r *SubscriptionRepository) Create(_ context.Context, subscription *entity.RouteSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.UserID == subscription.UserID && existing.RouteName == subscription.RouteName {
			return domainerrors.ErrDuplicateSubscription
		}
	}
	r.byID[subscription.ID] = *subscription
	return nil
}

func (r *SubscriptionRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.RouteSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.byID[id]
	if !ok {
		return nil, domainerrors.ErrSubscriptionNotFound
	}
	return &sub, nil
}

func (r *SubscriptionRepository) FindByUserID(_ context.Context, userID string) ([]entity.RouteSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.RouteSubscription
	for _, sub := range r.byID {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *SubscriptionRepository) ListAlertEnabled(_ context.Context) ([]entity.RouteSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.RouteSubscription
	for _, sub := range r.byID {
		if sub.AlertEnabled {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *SubscriptionRepository) Update(_ context.Context, subscription *entity.RouteSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[subscription.ID]; !ok {
		return domainerrors.ErrSubscriptionNotFound
	}
	r.byID[subscription.ID] = *subscription
	return nil
}

func (r *SubscriptionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domainerrors.ErrSubscriptionNotFound
	}
	delete(r.byID, id)
	return nil
}
