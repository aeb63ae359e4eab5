package service

import (
	"context"
	"time"

	"airscout/internal/domain/entity"
)

// FetchStats reports how many upstream records a fetch returned and how
// many were dropped for missing or malformed fields.
type FetchStats struct {
	Fetched int
	Dropped int
}

// CityDataSource defines the interface for the municipal open-data feeds
type CityDataSource interface {
	// FetchPermits returns building permits issued since the given time.
	FetchPermits(ctx context.Context, since time.Time) ([]entity.Permit, FetchStats, error)

	// FetchComplaints returns service complaints created since the given time.
	FetchComplaints(ctx context.Context, since time.Time) ([]entity.Complaint, FetchStats, error)

	// FetchSchools returns the active school roster.
	FetchSchools(ctx context.Context) ([]entity.School, FetchStats, error)

	// FetchTraffic returns the latest congestion estimate per segment.
	FetchTraffic(ctx context.Context) ([]entity.TrafficSegment, FetchStats, error)
}
