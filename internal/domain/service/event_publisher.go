package service

import (
	"context"
	"time"
)

// HazardEvent is published whenever an ingest pass creates or refreshes
// a hazard.
type HazardEvent struct {
	SourceID  string    `json:"source_id"`
	Kind      string    `json:"kind"`
	Severity  int       `json:"severity"`
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`
	ExpiresAt time.Time `json:"expires_at"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertEvent is published for every alert delivery attempt.
type AlertEvent struct {
	UserID         string    `json:"user_id"`
	SubscriptionID string    `json:"subscription_id"`
	HazardSourceID string    `json:"hazard_source_id"`
	RiskScore      int       `json:"risk_score"`
	RiskLevel      string    `json:"risk_level"`
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
}

// EventPublisher defines the interface for publishing engine events
type EventPublisher interface {
	PublishHazardEvent(ctx context.Context, event *HazardEvent) error
	PublishAlertEvent(ctx context.Context, event *AlertEvent) error
	Close() error
}
