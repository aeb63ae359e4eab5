// Package permit promotes demolition permits to hazards, but only when
// an independent complaint corroborates them. A permit with no nearby
// recent complaint is treated as noise and suppressed entirely.
package permit

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"airscout/internal/domain/entity"
	"airscout/internal/geo"
)

// Params configures corroboration and hazard emission.
type Params struct {
	// LookbackWindow bounds how old a corroborating complaint may be.
	LookbackWindow time.Duration
	// CorroborationRadius in meters around the permit location.
	CorroborationRadius float64
	// AllowedComplaintTypes is the set of complaint types that count as
	// corroborating evidence.
	AllowedComplaintTypes []string
	// HazardTTL sets how long an emitted hazard stays active.
	HazardTTL time.Duration
}

// Result reports the outcome of one validation pass.
type Result struct {
	Hazards      []entity.Hazard
	Suppressed   int
	DroppedBad   int
	ComplaintBad int
}

// Validator validates permits against complaint evidence.
type Validator struct {
	params  Params
	allowed map[string]struct{}
}

func NewValidator(params Params) *Validator {
	allowed := make(map[string]struct{}, len(params.AllowedComplaintTypes))
	for _, t := range params.AllowedComplaintTypes {
		allowed[t] = struct{}{}
	}
	return &Validator{params: params, allowed: allowed}
}

// LookbackWindow returns the complaint lookback bound.
func (v *Validator) LookbackWindow() time.Duration {
	return v.params.LookbackWindow
}

// HazardTTL returns how long emitted hazards stay active. Permits older
// than this are not worth fetching; their hazards would already be
// expired.
func (v *Validator) HazardTTL() time.Duration {
	return v.params.HazardTTL
}

// Validate runs zombie-permit suppression over one batch. Records with
// malformed locations are dropped and counted, never batch-fatal.
func (v *Validator) Validate(permits []entity.Permit, complaints []entity.Complaint, now time.Time) Result {
	var result Result

	cutoff := now.Add(-v.params.LookbackWindow)
	evidence := make([]entity.Complaint, 0, len(complaints))
	for _, c := range complaints {
		if _, ok := v.allowed[c.ComplaintType]; !ok {
			continue
		}
		if c.CreatedDate.Before(cutoff) {
			continue
		}
		if err := geo.ValidatePoint(c.Location); err != nil {
			result.ComplaintBad++
			continue
		}
		evidence = append(evidence, c)
	}

	for _, p := range permits {
		if err := geo.ValidatePoint(p.Location); err != nil {
			result.DroppedBad++
			continue
		}

		matches := v.corroborating(p, evidence)
		if len(matches) == 0 {
			result.Suppressed++
			continue
		}

		validating := matches[0]
		hazard := entity.Hazard{
			ID:          uuid.New(),
			Kind:        entity.HazardKindPermit,
			Severity:    severityFromVolume(len(matches)),
			Location:    p.Location,
			Description: describe(p),
			SourceID:    p.PermitNumber,
			Metadata: map[string]any{
				"permit_type":           p.PermitType,
				"address":               p.Address,
				"validating_complaint":  validating.ServiceRequestID,
				"corroborating_count":   len(matches),
				"validating_distance_m": geo.DistanceMeters(p.Location, validating.Location),
				"validating_created_at": validating.CreatedDate,
			},
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(v.params.HazardTTL),
		}
		result.Hazards = append(result.Hazards, hazard)
	}
	return result
}

// corroborating returns the complaints within radius of the permit,
// nearest first, ties broken by earliest creation date.
func (v *Validator) corroborating(p entity.Permit, evidence []entity.Complaint) []entity.Complaint {
	var matches []entity.Complaint
	for _, c := range evidence {
		if geo.WithinRadius(p.Location, c.Location, v.params.CorroborationRadius) {
			matches = append(matches, c)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		di := geo.DistanceMeters(p.Location, matches[i].Location)
		dj := geo.DistanceMeters(p.Location, matches[j].Location)
		if di != dj {
			return di < dj
		}
		return matches[i].CreatedDate.Before(matches[j].CreatedDate)
	})
	return matches
}

// severityFromVolume maps corroborating complaint volume to severity.
// Monotone in volume: base 3, 4 at two or more complaints, 5 at five
// or more.
func severityFromVolume(count int) int {
	severity := 3
	switch {
	case count >= 5:
		severity += 2
	case count >= 2:
		severity++
	}
	if severity > entity.SeverityMax {
		severity = entity.SeverityMax
	}
	return severity
}

func describe(p entity.Permit) string {
	if p.Address != "" {
		return p.PermitType + " at " + p.Address
	}
	return p.PermitType
}
