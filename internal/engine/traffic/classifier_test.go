package traffic

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airscout/internal/domain/entity"
	"airscout/internal/engine/schoolzone"
)

var testParams = Params{
	FreeFlowSpeedMPH:     30,
	MinSeverity:          3,
	HazardTTL:            30 * time.Minute,
	SchoolOverrideRadius: 200,
}

func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return loc
}

func segmentAt(id string, speed float64, pt orb.Point) entity.TrafficSegment {
	return entity.TrafficSegment{
		SegmentID:    id,
		Street:       "Michigan Ave",
		Direction:    "NB",
		FromStreet:   "Madison",
		ToStreet:     "Washington",
		CurrentSpeed: speed,
		Location:     pt,
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		speed    float64
		level    CongestionLevel
		severity int
	}{
		{0, CongestionSevere, 5},
		{7, CongestionSevere, 5},
		{7.5, CongestionHeavy, 4},
		{14, CongestionHeavy, 4},
		{15, CongestionModerate, 3},
		{22, CongestionModerate, 3},
		{22.5, CongestionLight, 2},
		{26, CongestionLight, 2},
		{27, CongestionFreeFlow, 1},
		{45, CongestionFreeFlow, 1},
	}
	for _, tc := range cases {
		level, severity := Classify(tc.speed, 30)
		assert.Equal(t, tc.level, level, "speed=%.1f", tc.speed)
		assert.Equal(t, tc.severity, severity, "speed=%.1f", tc.speed)
	}
}

func TestGenerate_FiltersBelowMinSeverity(t *testing.T) {
	g := NewGenerator(testParams, schoolzone.NewSchedule(nil, chicago(t)))
	// midday, no peak window in play
	now := time.Date(2026, 8, 26, 11, 0, 0, 0, chicago(t))

	segments := []entity.TrafficSegment{
		segmentAt("101", 5, orb.Point{-87.63, 41.88}),  // severe
		segmentAt("102", 20, orb.Point{-87.62, 41.88}), // moderate
		segmentAt("103", 25, orb.Point{-87.61, 41.88}), // light, filtered
		segmentAt("104", 29, orb.Point{-87.60, 41.88}), // free flow, filtered
	}
	result := g.Generate(segments, nil, now)
	require.Len(t, result.Hazards, 2)
	assert.Equal(t, 2, result.BelowMin)

	assert.Equal(t, "traffic:101", result.Hazards[0].SourceID)
	assert.Equal(t, 5, result.Hazards[0].Severity)
	assert.Equal(t, entity.HazardKindTraffic, result.Hazards[0].Kind)
	assert.Equal(t, now.Add(30*time.Minute), result.Hazards[0].ExpiresAt)
	assert.Equal(t, "traffic:102", result.Hazards[1].SourceID)
	assert.Equal(t, 3, result.Hazards[1].Severity)
}

func TestGenerate_SchoolOverrideDuringPeak(t *testing.T) {
	g := NewGenerator(testParams, schoolzone.NewSchedule(nil, chicago(t)))
	school := entity.School{
		SchoolID: "609966",
		Name:     "Lincoln Elementary",
		Location: orb.Point{-87.63, 41.88},
		IsActive: true,
	}
	nearSchool := segmentAt("201", 5, orb.Point{-87.63, 41.8805})  // ~56 m away
	farFromSchool := segmentAt("202", 5, orb.Point{-87.63, 41.90}) // ~2 km away

	t.Run("during the window the near segment is dropped", func(t *testing.T) {
		peak := time.Date(2026, 8, 26, 8, 0, 0, 0, chicago(t))
		result := g.Generate([]entity.TrafficSegment{nearSchool, farFromSchool}, []entity.School{school}, peak)
		require.Len(t, result.Hazards, 1)
		assert.Equal(t, "traffic:202", result.Hazards[0].SourceID)
		assert.Equal(t, 1, result.Overridden)
	})

	t.Run("outside the window both segments emit", func(t *testing.T) {
		offPeak := time.Date(2026, 8, 26, 11, 0, 0, 0, chicago(t))
		result := g.Generate([]entity.TrafficSegment{nearSchool, farFromSchool}, []entity.School{school}, offPeak)
		assert.Len(t, result.Hazards, 2)
		assert.Zero(t, result.Overridden)
	})
}

func TestGenerate_DropsMalformedSegments(t *testing.T) {
	g := NewGenerator(testParams, schoolzone.NewSchedule(nil, chicago(t)))
	now := time.Date(2026, 8, 26, 11, 0, 0, 0, chicago(t))

	badLocation := segmentAt("301", 5, orb.Point{-187, 41.88})
	badSpeed := segmentAt("302", -1, orb.Point{-87.63, 41.88})
	good := segmentAt("303", 5, orb.Point{-87.63, 41.88})

	result := g.Generate([]entity.TrafficSegment{badLocation, badSpeed, good}, nil, now)
	assert.Equal(t, 2, result.DroppedBad)
	require.Len(t, result.Hazards, 1)
	assert.Equal(t, "traffic:303", result.Hazards[0].SourceID)
}
