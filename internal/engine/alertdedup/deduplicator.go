// Package alertdedup decides which matched hazards may notify a user.
// The cooldown check-and-claim is a single atomic operation on the
// alert repository, so concurrent passes never double-send.
package alertdedup

import (
	"context"
	"time"

	"airscout/internal/domain/entity"
	"airscout/internal/domain/repository"
	"airscout/internal/engine/matcher"
)

// Params configures suppression.
type Params struct {
	// Cooldown is the minimum interval before the same user may be
	// re-alerted about the same hazard.
	Cooldown time.Duration
}

// Intent is a hazard cleared for notification. The caller owns delivery;
// a failed delivery still burns the cooldown.
type Intent struct {
	Subscription entity.RouteSubscription
	Hazard       matcher.MatchedHazard
}

// Result reports one deduplication pass for one subscription.
type Result struct {
	Intents        []Intent
	Suppressed     int // within cooldown
	BelowThreshold int
}

// Deduplicator filters matched hazards through the cooldown ledger.
type Deduplicator struct {
	params Params
	alerts repository.AlertRepository
}

func NewDeduplicator(params Params, alerts repository.AlertRepository) *Deduplicator {
	return &Deduplicator{params: params, alerts: alerts}
}

// Filter returns the notification intents for one subscription. Hazards
// below the subscription's severity threshold never alert. Disabled
// subscriptions produce nothing.
func (d *Deduplicator) Filter(ctx context.Context, sub entity.RouteSubscription, matched []matcher.MatchedHazard, now time.Time) (Result, error) {
	var result Result
	if !sub.AlertEnabled {
		return result, nil
	}

	for _, m := range matched {
		if m.Hazard.Severity < sub.SeverityThreshold {
			result.BelowThreshold++
			continue
		}
		reserved, err := d.alerts.TryReserve(ctx, sub.UserID, m.Hazard.SourceID, now, d.params.Cooldown)
		if err != nil {
			return result, err
		}
		if !reserved {
			result.Suppressed++
			continue
		}
		result.Intents = append(result.Intents, Intent{Subscription: sub, Hazard: m})
	}
	return result, nil
}
