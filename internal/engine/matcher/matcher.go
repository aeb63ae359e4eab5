// Package matcher scores a route against the active hazard snapshot.
// Matching is a pure function of its inputs: the same route, parameters
// and snapshot always produce the same assessment.
package matcher

import (
	"math"
	"sort"
	"time"

	"github.com/paulmach/orb"

	"airscout/internal/domain/entity"
	"airscout/internal/geo"
)

// Risk levels.
const (
	LevelLow      = "LOW"
	LevelModerate = "MODERATE"
	LevelHigh     = "HIGH"
)

// Advisory messages, one per outcome.
const (
	MessageHigh      = "High pollution risk - consider alternate route"
	MessageModerate  = "Moderate pollution risk - be aware of hazards"
	MessageLow       = "Low pollution risk - route is relatively clear"
	MessageNoHazards = "No hazards detected along this route"
)

// Params tunes matching and scoring.
type Params struct {
	// BufferMeters is the corridor half-width around the route.
	BufferMeters float64
	// MinSeverity filters hazards below this severity out of matching.
	MinSeverity int
	// ContributionScale caps a single hazard's score contribution.
	ContributionScale float64
	// HighThreshold and ModerateThreshold split scores into levels.
	HighThreshold     int
	ModerateThreshold int
}

// MatchedHazard is one hazard inside the route corridor.
type MatchedHazard struct {
	Hazard         entity.Hazard
	DistanceMeters float64
	Contribution   float64
}

// Assessment is the scored result of one route check.
type Assessment struct {
	Score           int
	Level           string
	Message         string
	HazardCount     int
	HighestSeverity int // zero when no hazards matched
	Hazards         []MatchedHazard
}

// Assess buffers the route and scores every snapshot hazard that falls
// inside the corridor. Expired hazards are excluded against now.
func Assess(route orb.LineString, params Params, snapshot []entity.Hazard, now time.Time) (*Assessment, error) {
	region, err := geo.BufferRoute(route, params.BufferMeters)
	if err != nil {
		return nil, err
	}

	var matched []MatchedHazard
	total := 0.0
	highest := 0
	for _, hazard := range snapshot {
		if !hazard.Active(now) {
			continue
		}
		if hazard.Severity < params.MinSeverity {
			continue
		}
		if !region.Contains(hazard.Location) {
			continue
		}

		distance := region.DistanceToPath(hazard.Location)
		distanceWeight := math.Max(0, 1-distance/params.BufferMeters)
		severityWeight := float64(hazard.Severity) / float64(entity.SeverityMax)
		contribution := distanceWeight * severityWeight * params.ContributionScale

		matched = append(matched, MatchedHazard{
			Hazard:         hazard,
			DistanceMeters: distance,
			Contribution:   contribution,
		})
		total += contribution
		if hazard.Severity > highest {
			highest = hazard.Severity
		}
	}

	// most actionable first: severity descending, then distance ascending
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Hazard.Severity != matched[j].Hazard.Severity {
			return matched[i].Hazard.Severity > matched[j].Hazard.Severity
		}
		return matched[i].DistanceMeters < matched[j].DistanceMeters
	})

	score := int(math.Round(total))
	if score > 100 {
		score = 100
	}

	assessment := &Assessment{
		Score:           score,
		HazardCount:     len(matched),
		HighestSeverity: highest,
		Hazards:         matched,
	}
	assessment.Level, assessment.Message = classify(score, len(matched), params)
	return assessment, nil
}

func classify(score, count int, params Params) (string, string) {
	switch {
	case score >= params.HighThreshold:
		return LevelHigh, MessageHigh
	case score >= params.ModerateThreshold:
		return LevelModerate, MessageModerate
	case count == 0:
		return LevelLow, MessageNoHazards
	default:
		return LevelLow, MessageLow
	}
}
