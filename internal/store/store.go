// Package store defines the persistence interfaces for the journey lifecycle
// engine and provides MongoDB, PostgreSQL and in-memory implementations.
// Each aggregate type occupies its own partition; every mutation is a single
// indivisible write against one record.
package store

import (
	"context"
	"time"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

// JourneyStore owns the Journey aggregate. Replace writes the whole aggregate
// (status, version pointer, version list, denormalized fields) at once.
type JourneyStore interface {
	Insert(ctx context.Context, j *models.Journey) error
	GetByID(ctx context.Context, id string) (*models.Journey, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Journey, error)
	ListAll(ctx context.Context) ([]*models.Journey, error)
	Replace(ctx context.Context, j *models.Journey) error
}

// VersionStore persists immutable journey snapshots. Append enforces
// optimistic concurrency: it fails with models.ErrConcurrentModification
// unless expectedVersion matches the journey's current latest version number
// (0 when no versions exist). RedactByJourney overwrites the personal
// free-text fields of retained snapshots during a global erase; it is the
// only sanctioned mutation besides Append.
type VersionStore interface {
	Append(ctx context.Context, v *models.JourneyVersion, expectedVersion int) error
	ListByJourney(ctx context.Context, journeyID string) ([]*models.JourneyVersion, error)
	Latest(ctx context.Context, journeyID string) (*models.JourneyVersion, error)
	RedactByJourney(ctx context.Context, journeyID, placeholder string) (int64, error)
}

// AuditStore is append-only. AnonymizeActor is the only sanctioned mutation:
// it overwrites the actor id with the sentinel and flags metadata, preserving
// every other field. List methods return events in insertion order.
type AuditStore interface {
	Append(ctx context.Context, e *models.AuditEvent) error
	ListByResource(ctx context.Context, resourceType, resourceID string) ([]*models.AuditEvent, error)
	ListByActor(ctx context.Context, actorID string) ([]*models.AuditEvent, error)
	ListByContext(ctx context.Context, contextTag string) ([]*models.AuditEvent, error)
	AnonymizeActor(ctx context.Context, actorID, sentinel string) (int64, error)
}

// PrivacyStore persists per-user privacy settings keyed by user id.
type PrivacyStore interface {
	Get(ctx context.Context, userID string) (*models.PrivacySettings, error)
	Upsert(ctx context.Context, s *models.PrivacySettings) error
}

// UserStore reads and scrubs identity rows. Scrub blanks the personal fields
// in place and stamps the erased timestamp, preserving the id.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Scrub(ctx context.Context, id string, at time.Time) error
}

// MemoryStore persists shareable memories.
type MemoryStore interface {
	Insert(ctx context.Context, m *models.Memory) error
	GetByID(ctx context.Context, id string) (*models.Memory, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Memory, error)
	Replace(ctx context.Context, m *models.Memory) error
}

// IntentStore persists intent profiles. Delete removes the record outright;
// absence is not an error for Delete.
type IntentStore interface {
	Get(ctx context.Context, userID string) (*models.IntentProfile, error)
	Put(ctx context.Context, p *models.IntentProfile) error
	Delete(ctx context.Context, userID string) error
}
