package usecase

import (
	"context"
	"time"
)

// RouteCheckInput is one on-demand route risk request. Coordinates are
// [longitude, latitude] pairs, at least two.
type RouteCheckInput struct {
	Coordinates [][2]float64 `json:"coordinates" validate:"required,min=2"`
	// BufferMeters overrides the configured corridor width when > 0.
	BufferMeters float64 `json:"buffer_meters" validate:"omitempty,gt=0"`
	// MinSeverity overrides the configured severity filter when > 0.
	MinSeverity int `json:"min_severity" validate:"omitempty,min=1,max=5"`
}

// MatchedHazardResult is one hazard inside the route corridor, as
// exposed to callers.
type MatchedHazardResult struct {
	Type           string    `json:"type"`
	Severity       int       `json:"severity"`
	Description    string    `json:"description"`
	SourceID       string    `json:"source_id"`
	Longitude      float64   `json:"longitude"`
	Latitude       float64   `json:"latitude"`
	DistanceMeters float64   `json:"distance_meters"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// RouteCheckResult is the externally observable risk assessment.
// Score is an integer 0-100; Level is LOW, MODERATE or HIGH.
type RouteCheckResult struct {
	Score           int                   `json:"score"`
	Level           string                `json:"level"`
	Message         string                `json:"message"`
	HazardCount     int                   `json:"hazard_count"`
	HighestSeverity int                   `json:"highest_severity,omitempty"`
	Hazards         []MatchedHazardResult `json:"hazards"`
	BufferMeters    float64               `json:"buffer_meters"`
	CheckedAt       time.Time             `json:"checked_at"`
}

// RouteCheckUsecase defines the interface for on-demand route risk checks
type RouteCheckUsecase interface {
	// CheckRoute assesses one route against the active hazard snapshot.
	CheckRoute(ctx context.Context, input *RouteCheckInput) (*RouteCheckResult, error)
}
