// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// HazardKind identifies the hazard source family. Each kind owns a
// disjoint source-id namespace so producers can run in parallel.
type HazardKind string

const (
	// HazardKindPermit marks hazards synthesized from validated demolition permits.
	HazardKindPermit HazardKind = "PERMIT"
	// HazardKindTraffic marks hazards synthesized from congestion segments.
	HazardKindTraffic HazardKind = "TRAFFIC"
	// HazardKindSchool marks hazards synthesized from school zones during peak windows.
	HazardKindSchool HazardKind = "SCHOOL"
)

// Severity bounds. Severity 1 is low, 5 is critical.
const (
	SeverityMin = 1
	SeverityMax = 5
)

// Hazard represents a time-bounded, severity-rated, point-located
// pollution risk. Exactly one hazard exists per SourceID at any time;
// producers upsert and the store resolves conflicts last-write-wins.
type Hazard struct {
	ID          uuid.UUID      `json:"id"`          // Store-assigned identifier.
	Kind        HazardKind     `json:"type"`        // PERMIT, TRAFFIC or SCHOOL.
	Severity    int            `json:"severity"`    // 1 (low) to 5 (critical).
	Location    orb.Point      `json:"-"`           // Geographic lon/lat of the hazard.
	Description string         `json:"description"` // Human-readable summary.
	SourceID    string         `json:"source_id"`   // External reference; upsert and dedup key.
	Metadata    map[string]any `json:"metadata"`    // Provenance bag (validating complaint, congestion level, ...).
	CreatedAt   time.Time      `json:"created_at"`  // First time this source id was seen.
	UpdatedAt   time.Time      `json:"updated_at"`  // Last upsert time.
	ExpiresAt   time.Time      `json:"expires_at"`  // Hazard is active strictly before this instant.
}

// Active reports whether the hazard has not yet expired at the given time.
func (h *Hazard) Active(now time.Time) bool {
	return now.Before(h.ExpiresAt)
}

// Longitude returns the geographic longitude of the hazard location.
func (h *Hazard) Longitude() float64 { return h.Location.Lon() }

// Latitude returns the geographic latitude of the hazard location.
func (h *Hazard) Latitude() float64 { return h.Location.Lat() }

// ValidSeverity reports whether s is inside the 1..5 severity scale.
func ValidSeverity(s int) bool {
	return s >= SeverityMin && s <= SeverityMax
}
