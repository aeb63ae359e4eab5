package impl

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airscout/internal/domain/entity"
	"airscout/internal/engine/schoolzone"
	"airscout/internal/store/memory"
	"airscout/internal/usecase"
)

type ingestFixture struct {
	svc     usecase.IngestUsecase
	source  *fakeDataSource
	hazards *memory.HazardStore
	events  *fakePublisher
	clock   *clockwork.FakeClock
}

func newIngestFixture(t *testing.T, at time.Time) *ingestFixture {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	f := &ingestFixture{
		source:  &fakeDataSource{},
		hazards: memory.NewHazardStore(),
		events:  &fakePublisher{},
		clock:   clockwork.NewFakeClockAt(at),
	}
	f.svc = NewIngestService(
		testConfig(),
		f.source,
		f.hazards,
		f.events,
		schoolzone.NewSchedule(nil, loc),
		f.clock,
		testLogger(),
		testMetrics(),
	)

	return f
}

// 2026-08-26 is a Wednesday; 13:00 UTC is 08:00 in Chicago (inside the
// morning window).
func midMorningWindow() time.Time {
	return time.Date(2026, 8, 26, 13, 0, 0, 0, time.UTC)
}

func offPeak() time.Time {
	return time.Date(2026, 8, 26, 17, 0, 0, 0, time.UTC) // noon in Chicago
}

func TestRunPermitPass(t *testing.T) {
	f := newIngestFixture(t, offPeak())
	now := f.clock.Now()
	loc := orb.Point{-87.63, 41.88}

	f.source.permits = []entity.Permit{
		{PermitNumber: "100123", PermitType: "WRECKING/DEMOLITION", Location: loc, IssueDate: now.Add(-24 * time.Hour)},
		{PermitNumber: "100124", PermitType: "WRECKING/DEMOLITION", Location: orb.Point{-87.70, 41.95}, IssueDate: now.Add(-24 * time.Hour)},
	}
	f.source.complaints = []entity.Complaint{
		{ServiceRequestID: "SR-1", ComplaintType: "SVR", Location: loc, CreatedDate: now.Add(-2 * time.Hour)},
	}

	summary, err := f.svc.RunPermitPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "permits", summary.Pass)
	assert.Equal(t, 3, summary.Fetched)
	assert.Equal(t, 1, summary.HazardsUpserted, "only the corroborated permit")
	assert.Equal(t, 1, summary.Suppressed)

	stored, err := f.hazards.FindBySourceID(context.Background(), "100123")
	require.NoError(t, err)
	assert.Equal(t, entity.HazardKindPermit, stored.Kind)
	assert.Equal(t, 3, stored.Severity)

	require.Len(t, f.events.hazardEvents, 1)
	assert.Equal(t, "100123", f.events.hazardEvents[0].SourceID)
}

func TestRunSchoolPass_InsideWindow(t *testing.T) {
	f := newIngestFixture(t, midMorningWindow())
	f.source.schools = []entity.School{
		{SchoolID: "609966", Name: "Lincoln Elementary", Location: orb.Point{-87.64, 41.92}, ZoneRadiusMeters: 150, IsActive: true},
	}

	summary, err := f.svc.RunSchoolPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.HazardsUpserted)

	stored, err := f.hazards.FindBySourceID(context.Background(), "school:609966")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Severity)
}

func TestRunSchoolPass_OutsideWindow(t *testing.T) {
	f := newIngestFixture(t, offPeak())
	f.source.schools = []entity.School{
		{SchoolID: "609966", Name: "Lincoln Elementary", Location: orb.Point{-87.64, 41.92}, ZoneRadiusMeters: 150, IsActive: true},
	}

	summary, err := f.svc.RunSchoolPass(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.HazardsUpserted)
}

func TestRunTrafficPass_UsesSchoolRosterFromSchoolPass(t *testing.T) {
	f := newIngestFixture(t, midMorningWindow())
	schoolLoc := orb.Point{-87.64, 41.92}
	f.source.schools = []entity.School{
		{SchoolID: "609966", Name: "Lincoln Elementary", Location: schoolLoc, ZoneRadiusMeters: 150, IsActive: true},
	}
	f.source.traffic = []entity.TrafficSegment{
		{SegmentID: "201", Street: "Clark St", CurrentSpeed: 5, Location: schoolLoc},
		{SegmentID: "202", Street: "State St", CurrentSpeed: 5, Location: orb.Point{-87.60, 41.85}},
	}

	_, err := f.svc.RunSchoolPass(context.Background())
	require.NoError(t, err)

	summary, err := f.svc.RunTrafficPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.HazardsUpserted, "segment at the school is overridden during the window")
	assert.Equal(t, 1, summary.Suppressed)

	_, err = f.hazards.FindBySourceID(context.Background(), "traffic:202")
	assert.NoError(t, err)
}

func TestRunPrunePass(t *testing.T) {
	f := newIngestFixture(t, offPeak())
	ctx := context.Background()
	now := f.clock.Now()

	expired := entity.Hazard{
		Kind: entity.HazardKindTraffic, Severity: 3, SourceID: "traffic:old",
		Location: orb.Point{-87.63, 41.88}, CreatedAt: now.Add(-2 * time.Hour),
		UpdatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}
	require.NoError(t, f.hazards.Upsert(ctx, &expired))

	summary, err := f.svc.RunPrunePass(ctx)
	require.NoError(t, err)
	assert.Equal(t, "prune", summary.Pass)
	assert.Equal(t, 1, summary.Dropped)
}
