package entity

import (
	"time"

	"github.com/paulmach/orb"
)

// Permit is a raw demolition/wrecking permit record from the city data
// portal. A permit alone is never a hazard; it must be corroborated by a
// nearby recent complaint first.
type Permit struct {
	PermitNumber string    `json:"permit_number"` // Stable external identifier.
	PermitType   string    `json:"permit_type"`
	Address      string    `json:"address"`
	Location     orb.Point `json:"-"`
	IssueDate    time.Time `json:"issue_date"`
}

// Complaint is a raw 311 service request. Only a subset of complaint
// types count as corroborating evidence for permits.
type Complaint struct {
	ServiceRequestID string    `json:"service_request_id"`
	ComplaintType    string    `json:"complaint_type"` // Short code, e.g. SVR or NOI.
	Description      string    `json:"description"`
	Location         orb.Point `json:"-"`
	CreatedDate      time.Time `json:"created_date"`
}

// DefaultSchoolZoneRadiusMeters applies when the roster does not carry a
// zone radius.
const DefaultSchoolZoneRadiusMeters = 150.0

// School is static reference data for the school-zone rule, refreshed on
// its own cadence by the ingestion side.
type School struct {
	SchoolID         string    `json:"school_id"`
	Name             string    `json:"name"`
	SchoolType       string    `json:"school_type"`
	Address          string    `json:"address"`
	Location         orb.Point `json:"-"`
	ZoneRadiusMeters float64   `json:"zone_radius_meters"`
	IsActive         bool      `json:"is_active"`
}

// TrafficSegment is a raw congestion observation for one street segment.
type TrafficSegment struct {
	SegmentID    string    `json:"segment_id"`
	Street       string    `json:"street"`
	Direction    string    `json:"direction"`
	FromStreet   string    `json:"from_street"`
	ToStreet     string    `json:"to_street"`
	CurrentSpeed float64   `json:"current_speed"` // Miles per hour; <= 0 means unknown.
	Location     orb.Point `json:"-"`
	ObservedAt   time.Time `json:"observed_at"`
}
