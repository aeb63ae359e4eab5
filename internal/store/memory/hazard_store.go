// Package memory provides in-process repository implementations. They
// back single-node deployments and tests; the postgres implementations
// carry the same contracts for durable setups.
package memory

import (
	"context"
	"sync"
	"time"

	"airscout/internal/domain/entity"
	domainerrors "airscout/internal/domain/errors"
)

type hazardEntry struct {
	mu     sync.Mutex
	hazard entity.Hazard
}

// HazardStore keeps hazards keyed by source ID. Upserts for different
// source IDs run in parallel; upserts for the same source ID serialize
// on a per-entry lock.
type HazardStore struct {
	entries sync.Map // source_id -> *hazardEntry
}

func NewHazardStore() *HazardStore {
	return &HazardStore{}
}

// Upsert inserts or replaces the hazard for its source ID, preserving
// the original creation time on replacement.
func (s *HazardStore) Upsert(_ context.Context, hazard *entity.Hazard) error {
	actual, _ := s.entries.LoadOrStore(hazard.SourceID, &hazardEntry{})
	entry := actual.(*hazardEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	next := *hazard
	if entry.hazard.SourceID != "" {
		next.CreatedAt = entry.hazard.CreatedAt
	}
	entry.hazard = next
	return nil
}

func (s *HazardStore) FindBySourceID(_ context.Context, sourceID string) (*entity.Hazard, error) {
	actual, ok := s.entries.Load(sourceID)
	if !ok {
		return nil, domainerrors.ErrHazardNotFound
	}
	entry := actual.(*hazardEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.hazard.SourceID == "" {
		return nil, domainerrors.ErrHazardNotFound
	}
	hazard := entry.hazard
	return &hazard, nil
}

// ActiveSnapshot returns all unexpired hazards as of now. The result is
// a copy; callers may hold it across an entire matching pass.
func (s *HazardStore) ActiveSnapshot(_ context.Context, now time.Time) ([]entity.Hazard, error) {
	var snapshot []entity.Hazard
	s.entries.Range(func(_, value any) bool {
		entry := value.(*hazardEntry)
		entry.mu.Lock()
		if entry.hazard.SourceID != "" && entry.hazard.Active(now) {
			snapshot = append(snapshot, entry.hazard)
		}
		entry.mu.Unlock()
		return true
	})
	return snapshot, nil
}

// PruneExpired drops hazards whose expiry is at or before now.
func (s *HazardStore) PruneExpired(_ context.Context, now time.Time) (int64, error) {
	var pruned int64
	s.entries.Range(func(key, value any) bool {
		entry := value.(*hazardEntry)
		entry.mu.Lock()
		expired := entry.hazard.SourceID != "" && !entry.hazard.Active(now)
		entry.mu.Unlock()
		if expired {
			s.entries.Delete(key)
			pruned++
		}
		return true
	})
	return pruned, nil
}
