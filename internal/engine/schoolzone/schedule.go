// Package schoolzone emits fixed-window school-zone hazards. The rule
// is policy, not inference: during weekday drop-off and pickup windows
// every active school is a severity 5 hazard, full stop.
package schoolzone

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"airscout/internal/domain/entity"
	"airscout/internal/geo"
)

// Window is a daily local-time interval, inclusive start, exclusive end.
type Window struct {
	Name      string
	StartHour int
	StartMin  int
	EndHour   int
	EndMin    int
}

// The two peak windows, local time, weekdays only.
var DefaultWindows = []Window{
	{Name: "morning_dropoff", StartHour: 7, EndHour: 9},
	{Name: "afternoon_pickup", StartHour: 14, EndHour: 16},
}

// SchoolSeverity is hard-set for every school-zone hazard.
const SchoolSeverity = 5

// Schedule evaluates the peak windows in a fixed location.
type Schedule struct {
	windows  []Window
	location *time.Location
}

func NewSchedule(windows []Window, location *time.Location) *Schedule {
	if len(windows) == 0 {
		windows = DefaultWindows
	}
	if location == nil {
		location = time.Local
	}
	return &Schedule{windows: windows, location: location}
}

// ActiveWindow returns the window containing now, if any. Weekends
// never match.
func (s *Schedule) ActiveWindow(now time.Time) (Window, bool) {
	local := now.In(s.location)
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return Window{}, false
	}
	for _, w := range s.windows {
		start := time.Date(local.Year(), local.Month(), local.Day(), w.StartHour, w.StartMin, 0, 0, s.location)
		end := time.Date(local.Year(), local.Month(), local.Day(), w.EndHour, w.EndMin, 0, 0, s.location)
		if !local.Before(start) && local.Before(end) {
			return w, true
		}
	}
	return Window{}, false
}

// WindowEnd returns the end of the given window on now's date.
func (s *Schedule) WindowEnd(w Window, now time.Time) time.Time {
	local := now.In(s.location)
	return time.Date(local.Year(), local.Month(), local.Day(), w.EndHour, w.EndMin, 0, 0, s.location)
}

// Result reports one generation pass.
type Result struct {
	Hazards    []entity.Hazard
	DroppedBad int
}

// Generator produces school-zone hazards.
type Generator struct {
	schedule *Schedule
}

func NewGenerator(schedule *Schedule) *Generator {
	return &Generator{schedule: schedule}
}

// Generate emits one hazard per active school when now falls inside a
// peak window, expiring at the window's end. Outside the windows it
// emits nothing; prior hazards simply expire on their own.
func (g *Generator) Generate(schools []entity.School, now time.Time) Result {
	window, ok := g.schedule.ActiveWindow(now)
	if !ok {
		return Result{}
	}

	var result Result
	expiresAt := g.schedule.WindowEnd(window, now)
	for _, school := range schools {
		if !school.IsActive {
			continue
		}
		if err := geo.ValidatePoint(school.Location); err != nil {
			result.DroppedBad++
			continue
		}
		result.Hazards = append(result.Hazards, entity.Hazard{
			ID:          uuid.New(),
			Kind:        entity.HazardKindSchool,
			Severity:    SchoolSeverity,
			Location:    school.Location,
			Description: fmt.Sprintf("School zone: %s (%s)", school.Name, window.Name),
			SourceID:    SourceID(school.SchoolID),
			Metadata: map[string]any{
				"school_name":        school.Name,
				"school_type":        school.SchoolType,
				"window":             window.Name,
				"zone_radius_meters": school.ZoneRadiusMeters,
			},
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: expiresAt,
		})
	}
	return result
}

// SourceID builds the stable upsert key for a school hazard.
func SourceID(schoolID string) string {
	return "school:" + schoolID
}
