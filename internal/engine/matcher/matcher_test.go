package matcher

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airscout/internal/domain/entity"
)

var testParams = Params{
	BufferMeters:      25,
	MinSeverity:       1,
	ContributionScale: 25,
	HighThreshold:     70,
	ModerateThreshold: 40,
}

// east-west route at a constant latitude so perpendicular distances are
// plain latitude offsets (~11.12 m per 0.0001 deg)
var testRoute = orb.LineString{{-87.63, 41.88}, {-87.62, 41.88}}

func testNow() time.Time {
	return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
}

func hazardAt(severity int, pt orb.Point) entity.Hazard {
	return entity.Hazard{
		ID:          uuid.New(),
		Kind:        entity.HazardKindPermit,
		Severity:    severity,
		Location:    pt,
		Description: "test hazard",
		SourceID:    uuid.NewString(),
		CreatedAt:   testNow().Add(-time.Hour),
		UpdatedAt:   testNow().Add(-time.Hour),
		ExpiresAt:   testNow().Add(time.Hour),
	}
}

func onPath(lon float64) orb.Point { return orb.Point{lon, 41.88} }

func TestAssess_NoHazards(t *testing.T) {
	a, err := Assess(testRoute, testParams, nil, testNow())
	require.NoError(t, err)

	assert.Zero(t, a.Score)
	assert.Equal(t, LevelLow, a.Level)
	assert.Equal(t, MessageNoHazards, a.Message)
	assert.Zero(t, a.HazardCount)
	assert.Zero(t, a.HighestSeverity)
	assert.Empty(t, a.Hazards)
}

func TestAssess_SingleHazardScore(t *testing.T) {
	// severity 4 at ~10 m: contribution = (1 - 10/25) * (4/5) * 25 = 12
	h := hazardAt(4, orb.Point{-87.625, 41.88009})
	a, err := Assess(testRoute, testParams, []entity.Hazard{h}, testNow())
	require.NoError(t, err)

	assert.Equal(t, 12, a.Score)
	assert.Equal(t, LevelLow, a.Level)
	assert.Equal(t, MessageLow, a.Message)
	assert.Equal(t, 1, a.HazardCount)
	assert.Equal(t, 4, a.HighestSeverity)
	require.Len(t, a.Hazards, 1)
	assert.InDelta(t, 10.0, a.Hazards[0].DistanceMeters, 0.2)
}

func TestAssess_MultipleHazardsSum(t *testing.T) {
	onRoute := hazardAt(5, onPath(-87.625)) // contribution 25
	// severity 3 at ~20 m: contribution = (1 - 20/25) * (3/5) * 25 = 3
	offRoute := hazardAt(3, orb.Point{-87.622, 41.88018})

	a, err := Assess(testRoute, testParams, []entity.Hazard{offRoute, onRoute}, testNow())
	require.NoError(t, err)

	assert.Equal(t, 28, a.Score)
	assert.Equal(t, LevelLow, a.Level)
	assert.Equal(t, 2, a.HazardCount)
	assert.Equal(t, 5, a.HighestSeverity)
}

func TestAssess_LevelBoundaries(t *testing.T) {
	// each severity 5 hazard on the path contributes exactly 25
	atScore := func(n int) []entity.Hazard {
		hazards := make([]entity.Hazard, 0, n)
		for i := 0; i < n; i++ {
			hazards = append(hazards, hazardAt(5, onPath(-87.629+float64(i)*0.002)))
		}
		return hazards
	}

	t.Run("25 is LOW", func(t *testing.T) {
		a, err := Assess(testRoute, testParams, atScore(1), testNow())
		require.NoError(t, err)
		assert.Equal(t, 25, a.Score)
		assert.Equal(t, LevelLow, a.Level)
	})

	t.Run("50 is MODERATE", func(t *testing.T) {
		a, err := Assess(testRoute, testParams, atScore(2), testNow())
		require.NoError(t, err)
		assert.Equal(t, 50, a.Score)
		assert.Equal(t, LevelModerate, a.Level)
		assert.Equal(t, MessageModerate, a.Message)
	})

	t.Run("75 is HIGH", func(t *testing.T) {
		a, err := Assess(testRoute, testParams, atScore(3), testNow())
		require.NoError(t, err)
		assert.Equal(t, 75, a.Score)
		assert.Equal(t, LevelHigh, a.Level)
		assert.Equal(t, MessageHigh, a.Message)
	})

	t.Run("exact thresholds flip the level", func(t *testing.T) {
		// eight severity 1 hazards on the path contribute 5 each
		hazards := make([]entity.Hazard, 0, 14)
		for i := 0; i < 14; i++ {
			hazards = append(hazards, hazardAt(1, onPath(-87.6295+float64(i)*0.0005)))
		}

		a, err := Assess(testRoute, testParams, hazards[:8], testNow())
		require.NoError(t, err)
		assert.Equal(t, 40, a.Score)
		assert.Equal(t, LevelModerate, a.Level)

		a, err = Assess(testRoute, testParams, hazards, testNow())
		require.NoError(t, err)
		assert.Equal(t, 70, a.Score)
		assert.Equal(t, LevelHigh, a.Level)
	})
}

func TestAssess_ScoreCappedAt100(t *testing.T) {
	hazards := make([]entity.Hazard, 0, 5)
	for i := 0; i < 5; i++ {
		hazards = append(hazards, hazardAt(5, onPath(-87.629+float64(i)*0.002)))
	}
	a, err := Assess(testRoute, testParams, hazards, testNow())
	require.NoError(t, err)
	assert.Equal(t, 100, a.Score)
}

func TestAssess_FiltersAndExclusions(t *testing.T) {
	t.Run("outside the buffer", func(t *testing.T) {
		// ~56 m north of the path
		far := hazardAt(5, orb.Point{-87.625, 41.8805})
		a, err := Assess(testRoute, testParams, []entity.Hazard{far}, testNow())
		require.NoError(t, err)
		assert.Zero(t, a.HazardCount)
	})

	t.Run("below min severity", func(t *testing.T) {
		params := testParams
		params.MinSeverity = 3
		weak := hazardAt(2, onPath(-87.625))
		a, err := Assess(testRoute, params, []entity.Hazard{weak}, testNow())
		require.NoError(t, err)
		assert.Zero(t, a.HazardCount)
	})

	t.Run("expired hazards are skipped", func(t *testing.T) {
		expired := hazardAt(5, onPath(-87.625))
		expired.ExpiresAt = testNow().Add(-time.Minute)
		a, err := Assess(testRoute, testParams, []entity.Hazard{expired}, testNow())
		require.NoError(t, err)
		assert.Zero(t, a.HazardCount)
		assert.Equal(t, MessageNoHazards, a.Message)
	})
}

func TestAssess_Ordering(t *testing.T) {
	sev3near := hazardAt(3, orb.Point{-87.623, 41.88005})
	sev3far := hazardAt(3, orb.Point{-87.624, 41.88015})
	sev5 := hazardAt(5, orb.Point{-87.625, 41.88018})

	a, err := Assess(testRoute, testParams, []entity.Hazard{sev3far, sev5, sev3near}, testNow())
	require.NoError(t, err)
	require.Len(t, a.Hazards, 3)

	assert.Equal(t, sev5.SourceID, a.Hazards[0].Hazard.SourceID, "highest severity first")
	assert.Equal(t, sev3near.SourceID, a.Hazards[1].Hazard.SourceID, "then nearest")
	assert.Equal(t, sev3far.SourceID, a.Hazards[2].Hazard.SourceID)
}

func TestAssess_Deterministic(t *testing.T) {
	snapshot := []entity.Hazard{
		hazardAt(4, orb.Point{-87.625, 41.88009}),
		hazardAt(2, onPath(-87.627)),
		hazardAt(5, orb.Point{-87.621, 41.88012}),
	}
	first, err := Assess(testRoute, testParams, snapshot, testNow())
	require.NoError(t, err)
	second, err := Assess(testRoute, testParams, snapshot, testNow())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAssess_MonotoneInSeverityAndDistance(t *testing.T) {
	scoreFor := func(severity int, pt orb.Point) int {
		a, err := Assess(testRoute, testParams, []entity.Hazard{hazardAt(severity, pt)}, testNow())
		require.NoError(t, err)
		return a.Score
	}

	near := orb.Point{-87.625, 41.88005}
	far := orb.Point{-87.625, 41.88015}

	assert.GreaterOrEqual(t, scoreFor(4, near), scoreFor(3, near), "higher severity never lowers the score")
	assert.GreaterOrEqual(t, scoreFor(4, near), scoreFor(4, far), "greater distance never raises the score")
}

func TestAssess_RouteValidation(t *testing.T) {
	_, err := Assess(orb.LineString{{-87.63, 41.88}}, testParams, nil, testNow())
	assert.Error(t, err)

	params := testParams
	params.BufferMeters = 0
	_, err = Assess(testRoute, params, nil, testNow())
	assert.Error(t, err)
}
