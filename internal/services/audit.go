package services

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/aurum-collective/atelier-backend/internal/models"
	"github.com/aurum-collective/atelier-backend/internal/store"
)

// AuditService is the append-only event log shared by every domain entity.
// Logging is best-effort by design: a store or stream failure degrades
// silently and never blocks the caller's primary operation.
type AuditService struct {
	store  store.AuditStore
	stream *AuditStream
	seq    atomic.Int64
}

// NewAuditService builds the audit log. stream may be nil.
func NewAuditService(auditStore store.AuditStore, stream *AuditStream) *AuditService {
	return &AuditService{store: auditStore, stream: stream}
}

// Log appends an event synchronously. It never returns an error: failures
// are swallowed after a log line so the triggering business operation is
// never blocked by auditing.
func (a *AuditService) Log(ctx context.Context, e *models.AuditEvent) {
	if e == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.Seq = a.seq.Add(1)

	if err := a.store.Append(ctx, e); err != nil {
		log.Printf("audit: append %s failed: %v", e.Action, err)
		return
	}
	if a.stream != nil {
		a.stream.Publish(ctx, e)
	}
}

// GetByResource returns the resource's events in insertion order.
func (a *AuditService) GetByResource(ctx context.Context, resourceType, resourceID string) ([]*models.AuditEvent, error) {
	return a.store.ListByResource(ctx, resourceType, resourceID)
}

// GetByActor returns the actor's events in insertion order.
func (a *AuditService) GetByActor(ctx context.Context, actorID string) ([]*models.AuditEvent, error) {
	return a.store.ListByActor(ctx, actorID)
}

// GetByContext returns events carrying the context tag in insertion order.
func (a *AuditService) GetByContext(ctx context.Context, contextTag string) ([]*models.AuditEvent, error) {
	return a.store.ListByContext(ctx, contextTag)
}

// Anonymize overwrites the actor id with the erasure sentinel on every event
// the user produced and flags their metadata. All other fields, including
// timestamps and resource linkage, are preserved. Running it again matches
// nothing and is a no-op.
func (a *AuditService) Anonymize(ctx context.Context, userID string) (int64, error) {
	return a.store.AnonymizeActor(ctx, userID, models.AnonymizedActor)
}
