package entity

import (
	"time"

	"github.com/google/uuid"
)

// AlertStatus is the delivery outcome recorded on an alert record.
type AlertStatus string

const (
	// AlertStatusSent marks a notification the transport accepted.
	AlertStatusSent AlertStatus = "sent"
	// AlertStatusFailed marks a delivery failure. Failed alerts still
	// count for cooldown so a flaky transport cannot cause a storm.
	AlertStatusFailed AlertStatus = "failed"
)

// AlertRecord is one (user, hazard) notification attempt. The existence
// of a record inside the cooldown window suppresses re-notification.
type AlertRecord struct {
	ID             uuid.UUID   `json:"id"`
	UserID         string      `json:"user_id"`
	SubscriptionID uuid.UUID   `json:"subscription_id"`
	HazardSourceID string      `json:"hazard_source_id"`
	RiskScore      int         `json:"risk_score"`
	RiskLevel      string      `json:"risk_level"`
	Status         AlertStatus `json:"status"`
	ErrorMessage   string      `json:"error_message,omitempty"`
	SentAt         time.Time   `json:"sent_at"`
}
