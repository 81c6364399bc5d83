package services

import (
	"context"
	"testing"

	"github.com/aurum-collective/atelier-backend/internal/models"
	"github.com/aurum-collective/atelier-backend/internal/store"
)

func logEvent(svc *AuditService, actor, resourceID string) {
	svc.Log(context.Background(), &models.AuditEvent{
		Event:        "journey.updated",
		ActorID:      actor,
		ResourceID:   resourceID,
		ResourceType: models.ResourceJourney,
		Context:      models.CategoryLegacy,
		Action:       models.ActionUpdate,
	})
}

func TestLogFillsIdentityAndOrder(t *testing.T) {
	svc := NewAuditService(store.NewMemStores().Audit, nil)
	ctx := context.Background()

	logEvent(svc, "rm-1", "j-1")
	logEvent(svc, "rm-1", "j-1")

	events, err := svc.GetByResource(ctx, models.ResourceJourney, "j-1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("count = %d, want 2", len(events))
	}
	for _, e := range events {
		if e.ID == "" || e.CreatedAt.IsZero() {
			t.Fatalf("event missing id or timestamp: %+v", e)
		}
	}
	if events[1].Seq <= events[0].Seq {
		t.Fatalf("insertion order broken: %d then %d", events[0].Seq, events[1].Seq)
	}
}

func TestQueryDimensions(t *testing.T) {
	svc := NewAuditService(store.NewMemStores().Audit, nil)
	ctx := context.Background()

	logEvent(svc, "rm-1", "j-1")
	logEvent(svc, "rm-2", "j-2")
	svc.Log(ctx, &models.AuditEvent{
		Event:        "memory.created",
		ActorID:      "rm-1",
		ResourceID:   "m-1",
		ResourceType: models.ResourceMemory,
		Context:      models.CategoryExperience,
		Action:       models.ActionCreate,
	})

	byActor, err := svc.GetByActor(ctx, "rm-1")
	if err != nil {
		t.Fatalf("by actor: %v", err)
	}
	if len(byActor) != 2 {
		t.Fatalf("actor rm-1 count = %d, want 2", len(byActor))
	}

	byContext, err := svc.GetByContext(ctx, models.CategoryExperience)
	if err != nil {
		t.Fatalf("by context: %v", err)
	}
	if len(byContext) != 1 || byContext[0].ResourceID != "m-1" {
		t.Fatalf("context query = %+v, want the memory event", byContext)
	}
}

func TestAnonymizeRewritesOnlyTargetActor(t *testing.T) {
	svc := NewAuditService(store.NewMemStores().Audit, nil)
	ctx := context.Background()

	logEvent(svc, "u1", "j-1")
	logEvent(svc, "u1", "j-1")
	logEvent(svc, "u1", "j-2")
	logEvent(svc, "u2", "j-1")
	logEvent(svc, "u2", "j-3")

	n, err := svc.Anonymize(ctx, "u1")
	if err != nil {
		t.Fatalf("anonymize: %v", err)
	}
	if n != 3 {
		t.Fatalf("rewritten count = %d, want 3", n)
	}

	if remaining, _ := svc.GetByActor(ctx, "u1"); len(remaining) != 0 {
		t.Fatalf("u1 still owns %d events after anonymize", len(remaining))
	}
	erased, err := svc.GetByActor(ctx, models.AnonymizedActor)
	if err != nil {
		t.Fatalf("sentinel query: %v", err)
	}
	if len(erased) != 3 {
		t.Fatalf("sentinel event count = %d, want 3", len(erased))
	}
	for _, e := range erased {
		if e.Metadata[models.MetadataAnonymized] != true {
			t.Fatalf("event %s missing anonymized flag", e.ID)
		}
		if e.CreatedAt.IsZero() || e.ResourceID == "" {
			t.Fatalf("anonymize destroyed non-identity fields: %+v", e)
		}
	}

	untouched, _ := svc.GetByActor(ctx, "u2")
	if len(untouched) != 2 {
		t.Fatalf("u2 event count = %d, want 2 untouched", len(untouched))
	}

	// Running it again matches nothing.
	n, err = svc.Anonymize(ctx, "u1")
	if err != nil {
		t.Fatalf("replay anonymize: %v", err)
	}
	if n != 0 {
		t.Fatalf("replay rewrote %d events, want 0", n)
	}
}
