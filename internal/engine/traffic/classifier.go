// Package traffic turns congestion segment estimates into short-lived
// hazards. Severity comes from the observed speed relative to an
// assumed free-flow speed; slow segments near a school during peak
// windows are dropped since the school-zone hazard already covers them.
package traffic

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"airscout/internal/domain/entity"
	"airscout/internal/engine/schoolzone"
	"airscout/internal/geo"
)

// CongestionLevel labels a segment's flow state.
type CongestionLevel string

const (
	CongestionSevere   CongestionLevel = "severe"
	CongestionHeavy    CongestionLevel = "heavy"
	CongestionModerate CongestionLevel = "moderate"
	CongestionLight    CongestionLevel = "light"
	CongestionFreeFlow CongestionLevel = "free_flow"
)

// Params configures classification and emission.
type Params struct {
	// FreeFlowSpeedMPH is the assumed uncongested speed.
	FreeFlowSpeedMPH float64
	// MinSeverity filters which congestion levels become hazards.
	MinSeverity int
	// HazardTTL keeps traffic hazards short-lived; stale congestion is
	// worse than none.
	HazardTTL time.Duration
	// SchoolOverrideRadius drops segments this close to an active school
	// during peak windows.
	SchoolOverrideRadius float64
}

// Classify maps a speed ratio to a congestion level and severity.
func Classify(currentSpeed, freeFlowSpeed float64) (CongestionLevel, int) {
	if freeFlowSpeed <= 0 {
		return CongestionFreeFlow, 1
	}
	ratio := currentSpeed / freeFlowSpeed
	switch {
	case ratio < 0.25:
		return CongestionSevere, 5
	case ratio < 0.5:
		return CongestionHeavy, 4
	case ratio < 0.75:
		return CongestionModerate, 3
	case ratio < 0.9:
		return CongestionLight, 2
	default:
		return CongestionFreeFlow, 1
	}
}

// Result reports one ingest pass.
type Result struct {
	Hazards    []entity.Hazard
	BelowMin   int
	Overridden int
	DroppedBad int
}

// Generator produces traffic hazards.
type Generator struct {
	params   Params
	schedule *schoolzone.Schedule
}

func NewGenerator(params Params, schedule *schoolzone.Schedule) *Generator {
	return &Generator{params: params, schedule: schedule}
}

// Generate classifies every segment and emits hazards for those at or
// above the minimum severity. Schools only matter during peak windows.
func (g *Generator) Generate(segments []entity.TrafficSegment, schools []entity.School, now time.Time) Result {
	var result Result

	_, peak := g.schedule.ActiveWindow(now)

	for _, seg := range segments {
		if err := geo.ValidatePoint(seg.Location); err != nil {
			result.DroppedBad++
			continue
		}
		if seg.CurrentSpeed < 0 {
			result.DroppedBad++
			continue
		}

		level, severity := Classify(seg.CurrentSpeed, g.params.FreeFlowSpeedMPH)
		if severity < g.params.MinSeverity {
			result.BelowMin++
			continue
		}
		if peak && g.nearActiveSchool(seg, schools) {
			result.Overridden++
			continue
		}

		result.Hazards = append(result.Hazards, entity.Hazard{
			ID:          uuid.New(),
			Kind:        entity.HazardKindTraffic,
			Severity:    severity,
			Location:    seg.Location,
			Description: describe(seg, level),
			SourceID:    SourceID(seg.SegmentID),
			Metadata: map[string]any{
				"street":            seg.Street,
				"direction":         seg.Direction,
				"from_street":       seg.FromStreet,
				"to_street":         seg.ToStreet,
				"current_speed_mph": seg.CurrentSpeed,
				"congestion_level":  string(level),
			},
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(g.params.HazardTTL),
		})
	}
	return result
}

func (g *Generator) nearActiveSchool(seg entity.TrafficSegment, schools []entity.School) bool {
	for _, school := range schools {
		if !school.IsActive {
			continue
		}
		if geo.ValidatePoint(school.Location) != nil {
			continue
		}
		if geo.WithinRadius(seg.Location, school.Location, g.params.SchoolOverrideRadius) {
			return true
		}
	}
	return false
}

func describe(seg entity.TrafficSegment, level CongestionLevel) string {
	street := seg.Street
	if seg.Direction != "" {
		street = seg.Street + " " + seg.Direction
	}
	return fmt.Sprintf("%s congestion on %s (%.0f mph)", level, street, seg.CurrentSpeed)
}

// SourceID builds the stable upsert key for a traffic hazard.
func SourceID(segmentID string) string {
	return "traffic:" + segmentID
}
