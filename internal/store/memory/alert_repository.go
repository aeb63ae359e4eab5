package memory

import (
	"context"
	"sync"
	"time"

	"airscout/internal/domain/entity"
)

// AlertRepository keeps the cooldown ledger and delivery history in
// memory. TryReserve is the atomic check-and-claim the deduplicator
// depends on.
type AlertRepository struct {
	mu       sync.Mutex
	reserved map[cooldownKey]time.Time
	history  []entity.AlertRecord
}

type cooldownKey struct {
	userID         string
	hazardSourceID string
}

func NewAlertRepository() *AlertRepository {
	return &AlertRepository{reserved: make(map[cooldownKey]time.Time)}
}

func (r *AlertRepository) TryReserve(_ context.Context, userID, hazardSourceID string, now time.Time, cooldown time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cooldownKey{userID: userID, hazardSourceID: hazardSourceID}
	if last, ok := r.reserved[key]; ok && last.After(now.Add(-cooldown)) {
		return false, nil
	}
	r.reserved[key] = now
	return true, nil
}

func (r *AlertRepository) RecordDelivery(_ context.Context, record *entity.AlertRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, *record)
	return nil
}

// History returns a copy of the delivery history, oldest first.
func (r *AlertRepository) History() []entity.AlertRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.AlertRecord, len(r.history))
	copy(out, r.history)
	return out
}
