package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

func strPtr(s string) *string { return &s }

func TestCreateValidation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	sess := clientSession("client-1")

	cases := []struct {
		name string
		in   CreateJourneyInput
	}{
		{"missing title", CreateJourneyInput{Category: models.CategoryLegacy}},
		{"blank title", CreateJourneyInput{Title: "   ", Category: models.CategoryLegacy}},
		{"unknown category", CreateJourneyInput{Title: "Estate plan", Category: "speculation"}},
		{"unknown discretion", CreateJourneyInput{Title: "Estate plan", Category: models.CategoryLegacy, DiscretionLevel: "invisible"}},
		{"individual creating for another user", CreateJourneyInput{Title: "Estate plan", Category: models.CategoryLegacy, UserID: "client-2"}},
	}
	for _, tc := range cases {
		if _, err := e.journeys.Create(ctx, sess, tc.in); !errors.Is(err, models.ErrValidation) {
			t.Errorf("%s: error = %v, want ErrValidation", tc.name, err)
		}
	}
}

func TestCreateDefaults(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	sess := clientSession("client-1")

	j, err := e.journeys.Create(ctx, sess, CreateJourneyInput{
		Title:    "Legacy foundation",
		Category: models.CategoryPhilanthropy,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if j.UserID != "client-1" {
		t.Fatalf("owner = %s, want acting caller", j.UserID)
	}
	if j.Status != models.StatusDraft {
		t.Fatalf("status = %s, want DRAFT", j.Status)
	}
	if j.DiscretionLevel != models.DiscretionStandard {
		t.Fatalf("discretion = %s, want standard default", j.DiscretionLevel)
	}
	if len(j.VersionIDs) != 1 || j.CurrentVersionID != j.VersionIDs[0] {
		t.Fatalf("first version not linked: ids=%v current=%s", j.VersionIDs, j.CurrentVersionID)
	}

	v, err := e.ledger.Latest(ctx, j.ID)
	if err != nil {
		t.Fatalf("latest version: %v", err)
	}
	if v.VersionNumber != 1 || v.Status != models.StatusDraft {
		t.Fatalf("first snapshot = number %d status %s, want 1/DRAFT", v.VersionNumber, v.Status)
	}
}

func TestUpdateAppendsVersionAndMovesPointer(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	sess := advisorSession("rm-1")

	j := mustCreate(t, e, sess, "client-1")

	updated, err := e.journeys.Update(ctx, sess, j.ID, JourneyPatch{
		Narrative:       strPtr("Revised itinerary with private viewings."),
		ExpectedVersion: 1,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Narrative != "Revised itinerary with private viewings." {
		t.Fatalf("narrative not applied: %q", updated.Narrative)
	}
	if len(updated.VersionIDs) != 2 {
		t.Fatalf("version count = %d, want 2", len(updated.VersionIDs))
	}
	if updated.CurrentVersionID != updated.VersionIDs[1] {
		t.Fatalf("pointer %s, want latest %s", updated.CurrentVersionID, updated.VersionIDs[1])
	}

	versions, err := e.journeys.Versions(ctx, sess, j.ID)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if versions[0].Narrative == versions[1].Narrative {
		t.Fatal("prior snapshot was mutated by the update")
	}
}

func TestUpdateRequiresCurrentVersion(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	sess := advisorSession("rm-1")

	j := mustCreate(t, e, sess, "client-1")

	if _, err := e.journeys.Update(ctx, sess, j.ID, JourneyPatch{Narrative: strPtr("x")}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("missing expected_version error = %v, want ErrValidation", err)
	}
	if _, err := e.journeys.Update(ctx, sess, j.ID, JourneyPatch{Narrative: strPtr("x"), ExpectedVersion: 5}); !errors.Is(err, models.ErrConcurrentModification) {
		t.Fatalf("stale expected_version error = %v, want ErrConcurrentModification", err)
	}
}

func TestConcurrentEditsOnlyOneWins(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	sess := advisorSession("rm-1")

	j := mustCreate(t, e, sess, "client-1")
	if _, err := e.journeys.Update(ctx, sess, j.ID, JourneyPatch{Narrative: strPtr("a"), ExpectedVersion: 1}); err != nil {
		t.Fatalf("first edit: %v", err)
	}
	if _, err := e.journeys.Update(ctx, sess, j.ID, JourneyPatch{Narrative: strPtr("b"), ExpectedVersion: 2}); err != nil {
		t.Fatalf("second edit: %v", err)
	}

	// Two editors both read version 3 and race; the loser is rejected, not
	// silently overwritten.
	if _, err := e.journeys.Update(ctx, sess, j.ID, JourneyPatch{Narrative: strPtr("c"), ExpectedVersion: 3}); err != nil {
		t.Fatalf("winning edit: %v", err)
	}
	if _, err := e.journeys.Update(ctx, sess, j.ID, JourneyPatch{Narrative: strPtr("d"), ExpectedVersion: 3}); !errors.Is(err, models.ErrConcurrentModification) {
		t.Fatalf("losing edit error = %v, want ErrConcurrentModification", err)
	}

	reloaded, err := e.journeys.GetByID(ctx, sess, j.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Narrative != "c" {
		t.Fatalf("narrative = %q, want winner's content", reloaded.Narrative)
	}
	if len(reloaded.VersionIDs) != 4 {
		t.Fatalf("version count = %d, want 4", len(reloaded.VersionIDs))
	}
}

func TestUpdateArchivedRejected(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	sess := advisorSession("rm-1")

	j := mustCreate(t, e, sess, "client-1")
	j, err := e.journeys.Transition(ctx, sess, j.ID, models.StatusArchived)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, err := e.journeys.Update(ctx, sess, j.ID, JourneyPatch{Narrative: strPtr("x"), ExpectedVersion: 2}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("update archived error = %v, want ErrValidation", err)
	}
}

func TestVisibilityScoping(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	owner := clientSession("client-1")
	other := clientSession("client-2")
	advisor := advisorSession("rm-1")

	j := mustCreate(t, e, advisor, "client-1")

	if _, err := e.journeys.GetByID(ctx, owner, j.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := e.journeys.GetByID(ctx, advisor, j.ID); err != nil {
		t.Fatalf("institutional read: %v", err)
	}
	// Hidden journeys are indistinguishable from missing ones.
	if _, err := e.journeys.GetByID(ctx, other, j.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("foreign read error = %v, want ErrNotFound", err)
	}
	if _, err := e.journeys.Versions(ctx, other, j.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("foreign versions error = %v, want ErrNotFound", err)
	}
}

func TestListScoping(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	advisor := advisorSession("rm-1")

	mustCreate(t, e, advisor, "client-1")
	mustCreate(t, e, advisor, "client-1")
	mustCreate(t, e, advisor, "client-2")

	all, err := e.journeys.List(ctx, advisor, "")
	if err != nil {
		t.Fatalf("institutional list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("institutional list count = %d, want 3", len(all))
	}

	narrowed, err := e.journeys.List(ctx, advisor, "client-2")
	if err != nil {
		t.Fatalf("narrowed list: %v", err)
	}
	if len(narrowed) != 1 {
		t.Fatalf("narrowed list count = %d, want 1", len(narrowed))
	}

	// Individual callers get their own regardless of the filter they pass.
	own, err := e.journeys.List(ctx, clientSession("client-1"), "client-2")
	if err != nil {
		t.Fatalf("individual list: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("individual list count = %d, want 2", len(own))
	}
	for _, j := range own {
		if j.UserID != "client-1" {
			t.Fatalf("individual list leaked journey owned by %s", j.UserID)
		}
	}
}
