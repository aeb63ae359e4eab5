package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// RouteSubscription binds a user to a saved walking route for hazard
// alerts. Unique per (UserID, RouteName).
type RouteSubscription struct {
	ID                uuid.UUID      `json:"id"`                 // The Global Unique Identifier (GUID) for the subscription.
	UserID            string         `json:"user_id"`            // Caller-supplied external user identifier.
	RouteName         string         `json:"route_name"`         // User-facing route label, e.g. "Commute".
	Route             orb.LineString `json:"-"`                  // Ordered lon/lat path, at least 2 points.
	SeverityThreshold int            `json:"severity_threshold"` // Minimum hazard severity that triggers an alert (1-5).
	AlertEnabled      bool           `json:"alert_enabled"`      // Indicates if this subscription receives notifications.
	PushToken         string         `json:"-"`                  // Opaque notification target for the transport.
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// DefaultSeverityThreshold applies when a subscription does not set one.
const DefaultSeverityThreshold = 3
