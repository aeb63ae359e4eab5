package repository

import (
	"context"
	"time"

	"airscout/internal/domain/entity"
)

// AlertRepository tracks alert cooldowns and delivery history.
type AlertRepository interface {
	// TryReserve atomically claims the (userID, hazardSourceID) pair for
	// alerting. It returns true when no alert for the pair has been
	// reserved within the cooldown window ending at now; a successful
	// reservation starts a new window. Concurrent callers for the same
	// pair see at most one true.
	TryReserve(ctx context.Context, userID, hazardSourceID string, now time.Time, cooldown time.Duration) (bool, error)

	// RecordDelivery appends a delivery attempt to the alert history.
	// Failed deliveries are recorded too; their reservation stands so the
	// pair is not retried until the cooldown lapses.
	RecordDelivery(ctx context.Context, record *entity.AlertRecord) error
}
