package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aurum-collective/atelier-backend/internal/models"
	"github.com/aurum-collective/atelier-backend/internal/store"
)

// forwardEdges are the legal review-flow edges. A rejection during review is
// a legal version-producing edge back to DRAFT; there are no other backward
// or skip edges. Archiving is handled separately: ARCHIVED is reachable from
// every non-terminal state.
var forwardEdges = map[string]map[string]bool{
	models.StatusDraft:            {models.StatusRMReview: true},
	models.StatusRMReview:         {models.StatusComplianceReview: true, models.StatusDraft: true},
	models.StatusComplianceReview: {models.StatusApproved: true, models.StatusDraft: true},
	models.StatusApproved:         {models.StatusPresented: true},
	models.StatusPresented:        {models.StatusExecuted: true},
	models.StatusExecuted:         {},
	models.StatusArchived:         {},
}

// CanTransition reports whether (from, to) is a legal lifecycle edge.
func CanTransition(from, to string) bool {
	if !models.ValidStatus(from) || !models.ValidStatus(to) {
		return false
	}
	if to == models.StatusArchived {
		return from != models.StatusArchived
	}
	return forwardEdges[from][to]
}

// LegalTargets returns the statuses reachable from `from` in one step.
func LegalTargets(from string) []string {
	var out []string
	for _, to := range []string{
		models.StatusDraft, models.StatusRMReview, models.StatusComplianceReview,
		models.StatusApproved, models.StatusPresented, models.StatusExecuted,
		models.StatusArchived,
	} {
		if CanTransition(from, to) {
			out = append(out, to)
		}
	}
	return out
}

// StateMachine validates and applies lifecycle transitions. Every successful
// transition appends a new immutable version (even a pure status advance
// carries the content forward into a fresh snapshot), updates the aggregate
// in one write, and emits exactly one audit event. On failure the journey is
// left untouched and nothing is logged.
type StateMachine struct {
	journeys store.JourneyStore
	ledger   *VersionLedger
	audit    *AuditService
}

// NewStateMachine wires the machine against its collaborators.
func NewStateMachine(journeys store.JourneyStore, ledger *VersionLedger, audit *AuditService) *StateMachine {
	return &StateMachine{journeys: journeys, ledger: ledger, audit: audit}
}

// Transition moves j to target on behalf of actorID and returns the updated
// aggregate. The caller's copy of j is never mutated.
func (m *StateMachine) Transition(ctx context.Context, j *models.Journey, target, actorID string) (*models.Journey, error) {
	if !models.ValidStatus(target) {
		return nil, fmt.Errorf("unknown status %q: %w", target, models.ErrValidation)
	}
	if actorID == "" {
		return nil, fmt.Errorf("actor id is required: %w", models.ErrValidation)
	}
	if !CanTransition(j.Status, target) {
		return nil, fmt.Errorf("%s -> %s (legal targets: %s): %w",
			j.Status, target, strings.Join(LegalTargets(j.Status), ", "), models.ErrInvalidTransition)
	}

	data := VersionData{
		Title:      j.Title,
		Narrative:  j.Narrative,
		Status:     target,
		ModifiedBy: actorID,
	}
	// The approval stamp is settable exactly once, on the approval edge.
	if j.Status == models.StatusComplianceReview && target == models.StatusApproved {
		data.ApprovedBy = actorID
	}

	version, err := m.ledger.AppendVersion(ctx, j.ID, data, len(j.VersionIDs))
	if err != nil {
		return nil, err
	}

	updated := j.Clone()
	updated.Status = target
	updated.VersionIDs = append(updated.VersionIDs, version.ID)
	updated.CurrentVersionID = version.ID
	updated.UpdatedAt = time.Now().UTC()
	if err := m.journeys.Replace(ctx, updated); err != nil {
		return nil, err
	}

	m.audit.Log(ctx, &models.AuditEvent{
		Event:         "journey.status_changed",
		ActorID:       actorID,
		ResourceID:    j.ID,
		ResourceType:  models.ResourceJourney,
		Context:       j.Category,
		Action:        models.ActionUpdate,
		PreviousState: map[string]interface{}{"status": j.Status, "version": len(j.VersionIDs)},
		NewState:      map[string]interface{}{"status": target, "version": version.VersionNumber},
	})

	return updated, nil
}
