package usecase

import (
	"context"
	"time"

	"airscout/internal/domain/entity"
)

// PassSummary reports one scheduled ingestion pass.
type PassSummary struct {
	Pass            string        `json:"pass"`
	Fetched         int           `json:"fetched"`
	Dropped         int           `json:"dropped"`
	HazardsUpserted int           `json:"hazards_upserted"`
	Suppressed      int           `json:"suppressed"`
	Duration        time.Duration `json:"duration"`
}

// IngestUsecase defines the interface for the scheduled hazard
// ingestion passes. Each pass runs to completion and returns a summary;
// a bad record never fails a pass.
type IngestUsecase interface {
	// RunPermitPass fetches permits and complaints, validates permits
	// against complaint evidence and upserts the resulting hazards.
	RunPermitPass(ctx context.Context) (*PassSummary, error)

	// RunSchoolPass refreshes the school roster and emits school-zone
	// hazards when inside a peak window.
	RunSchoolPass(ctx context.Context) (*PassSummary, error)

	// RunTrafficPass fetches congestion estimates and upserts traffic
	// hazards.
	RunTrafficPass(ctx context.Context) (*PassSummary, error)

	// RunPrunePass removes expired hazards from the store.
	RunPrunePass(ctx context.Context) (*PassSummary, error)
}

// AlertPassSummary reports one alert evaluation pass.
type AlertPassSummary struct {
	Subscriptions int           `json:"subscriptions"`
	Intents       int           `json:"intents"`
	Sent          int           `json:"sent"`
	Failed        int           `json:"failed"`
	Suppressed    int           `json:"suppressed"`
	DryRun        bool          `json:"dry_run"`
	Duration      time.Duration `json:"duration"`
}

// AlertUsecase defines the interface for the periodic alert pass
type AlertUsecase interface {
	// RunAlertPass matches every alert-enabled subscription against the
	// active hazard snapshot and notifies on new hazards.
	RunAlertPass(ctx context.Context) (*AlertPassSummary, error)
}

// HazardUsecase defines the interface for hazard queries
type HazardUsecase interface {
	// ActiveHazards returns the active hazard snapshot.
	ActiveHazards(ctx context.Context) ([]entity.Hazard, error)
}
