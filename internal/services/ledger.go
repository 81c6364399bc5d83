package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aurum-collective/atelier-backend/internal/models"
	"github.com/aurum-collective/atelier-backend/internal/store"
)

// VersionData is the content of a snapshot to append.
type VersionData struct {
	Title      string
	Narrative  string
	Status     string
	ModifiedBy string
	ApprovedBy string
}

// VersionLedger maintains the per-journey ordered, immutable snapshot
// sequence. Version numbers strictly increase 1..N with no gaps; writers must
// assert the current latest version number and stale writers are rejected
// with models.ErrConcurrentModification instead of last-write-wins.
type VersionLedger struct {
	versions store.VersionStore
}

// NewVersionLedger wraps a version store.
func NewVersionLedger(versions store.VersionStore) *VersionLedger {
	return &VersionLedger{versions: versions}
}

// AppendVersion assigns expectedVersion+1 and persists the snapshot. The
// store enforces that expectedVersion still matches the latest.
func (l *VersionLedger) AppendVersion(ctx context.Context, journeyID string, data VersionData, expectedVersion int) (*models.JourneyVersion, error) {
	v := &models.JourneyVersion{
		ID:            uuid.NewString(),
		JourneyID:     journeyID,
		VersionNumber: expectedVersion + 1,
		Title:         data.Title,
		Narrative:     data.Narrative,
		Status:        data.Status,
		ModifiedBy:    data.ModifiedBy,
		ApprovedBy:    data.ApprovedBy,
		CreatedAt:     time.Now().UTC(),
	}
	if err := l.versions.Append(ctx, v, expectedVersion); err != nil {
		return nil, err
	}
	return v, nil
}

// ListVersions returns the journey's snapshots oldest first.
func (l *VersionLedger) ListVersions(ctx context.Context, journeyID string) ([]*models.JourneyVersion, error) {
	return l.versions.ListByJourney(ctx, journeyID)
}

// Latest returns the most recent snapshot, or models.ErrNotFound when the
// journey has none.
func (l *VersionLedger) Latest(ctx context.Context, journeyID string) (*models.JourneyVersion, error) {
	return l.versions.Latest(ctx, journeyID)
}
