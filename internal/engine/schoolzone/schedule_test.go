package schoolzone

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airscout/internal/domain/entity"
)

func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return loc
}

// 2026-08-26 is a Wednesday.
func wednesdayAt(t *testing.T, hour, min int) time.Time {
	return time.Date(2026, 8, 26, hour, min, 0, 0, chicago(t))
}

func TestSchedule_ActiveWindow(t *testing.T) {
	s := NewSchedule(nil, chicago(t))

	cases := []struct {
		name   string
		at     time.Time
		window string
		active bool
	}{
		{"before morning window", wednesdayAt(t, 6, 59), "", false},
		{"morning start is inclusive", wednesdayAt(t, 7, 0), "morning_dropoff", true},
		{"mid morning window", wednesdayAt(t, 8, 30), "morning_dropoff", true},
		{"morning end is exclusive", wednesdayAt(t, 9, 0), "", false},
		{"midday gap", wednesdayAt(t, 12, 0), "", false},
		{"afternoon start is inclusive", wednesdayAt(t, 14, 0), "afternoon_pickup", true},
		{"afternoon end is exclusive", wednesdayAt(t, 16, 0), "", false},
		{"evening", wednesdayAt(t, 20, 0), "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, ok := s.ActiveWindow(tc.at)
			assert.Equal(t, tc.active, ok)
			if tc.active {
				assert.Equal(t, tc.window, w.Name)
			}
		})
	}
}

func TestSchedule_WeekendsNeverMatch(t *testing.T) {
	s := NewSchedule(nil, chicago(t))
	// 2026-08-29 is a Saturday, 08:00 would otherwise be in the window
	saturday := time.Date(2026, 8, 29, 8, 0, 0, 0, chicago(t))
	_, ok := s.ActiveWindow(saturday)
	assert.False(t, ok)

	sunday := time.Date(2026, 8, 30, 14, 30, 0, 0, chicago(t))
	_, ok = s.ActiveWindow(sunday)
	assert.False(t, ok)
}

func TestSchedule_HonorsLocation(t *testing.T) {
	s := NewSchedule(nil, chicago(t))
	// 13:00 UTC is 08:00 in Chicago during DST
	utc := time.Date(2026, 8, 26, 13, 0, 0, 0, time.UTC)
	w, ok := s.ActiveWindow(utc)
	require.True(t, ok)
	assert.Equal(t, "morning_dropoff", w.Name)
}

func testSchool(id string) entity.School {
	return entity.School{
		SchoolID:         id,
		Name:             "Lincoln Elementary",
		SchoolType:       "ES",
		Location:         orb.Point{-87.63, 41.88},
		ZoneRadiusMeters: 150,
		IsActive:         true,
	}
}

func TestGenerate_InsideWindow(t *testing.T) {
	g := NewGenerator(NewSchedule(nil, chicago(t)))
	now := wednesdayAt(t, 8, 15)

	result := g.Generate([]entity.School{testSchool("609966")}, now)
	require.Len(t, result.Hazards, 1)

	h := result.Hazards[0]
	assert.Equal(t, entity.HazardKindSchool, h.Kind)
	assert.Equal(t, SchoolSeverity, h.Severity)
	assert.Equal(t, "school:609966", h.SourceID)
	assert.Equal(t, wednesdayAt(t, 9, 0), h.ExpiresAt, "expires at the window end")
	assert.Equal(t, "morning_dropoff", h.Metadata["window"])
}

func TestGenerate_OutsideWindow(t *testing.T) {
	g := NewGenerator(NewSchedule(nil, chicago(t)))
	result := g.Generate([]entity.School{testSchool("609966")}, wednesdayAt(t, 11, 0))
	assert.Empty(t, result.Hazards)
}

func TestGenerate_SkipsInactiveAndMalformed(t *testing.T) {
	g := NewGenerator(NewSchedule(nil, chicago(t)))
	now := wednesdayAt(t, 14, 30)

	inactive := testSchool("1")
	inactive.IsActive = false
	malformed := testSchool("2")
	malformed.Location = orb.Point{-87.63, 120}
	good := testSchool("3")

	result := g.Generate([]entity.School{inactive, malformed, good}, now)
	require.Len(t, result.Hazards, 1)
	assert.Equal(t, "school:3", result.Hazards[0].SourceID)
	assert.Equal(t, 1, result.DroppedBad)
}
