package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aurum-collective/atelier-backend/internal/models"
	"github.com/aurum-collective/atelier-backend/internal/store"
)

// CreateJourneyInput is what the proposal-generation collaborator supplies to
// open a journey in DRAFT. UserID is the owning client; when empty the
// journey is created for the acting caller.
type CreateJourneyInput struct {
	UserID             string `json:"user_id,omitempty"`
	Title              string `json:"title"`
	Narrative          string `json:"narrative"`
	Category           string `json:"category"`
	EmotionalObjective string `json:"emotional_objective,omitempty"`
	StrategicReasoning string `json:"strategic_reasoning,omitempty"`
	RiskSummary        string `json:"risk_summary,omitempty"`
	DiscretionLevel    string `json:"discretion_level,omitempty"`
	InstitutionID      string `json:"institution_id,omitempty"`
}

// JourneyPatch carries a partial update of non-status fields. Status changes
// must go through Transition. ExpectedVersion is required: it protects
// against two advisors editing the same journey concurrently.
type JourneyPatch struct {
	Title              *string `json:"title,omitempty"`
	Narrative          *string `json:"narrative,omitempty"`
	EmotionalObjective *string `json:"emotional_objective,omitempty"`
	StrategicReasoning *string `json:"strategic_reasoning,omitempty"`
	RiskSummary        *string `json:"risk_summary,omitempty"`
	ExpectedVersion    int     `json:"expected_version"`
}

// JourneyService owns the Journey aggregate and its version pointer.
type JourneyService struct {
	journeys store.JourneyStore
	ledger   *VersionLedger
	machine  *StateMachine
	audit    *AuditService
}

// NewJourneyService wires the aggregate service.
func NewJourneyService(journeys store.JourneyStore, ledger *VersionLedger, machine *StateMachine, audit *AuditService) *JourneyService {
	return &JourneyService{journeys: journeys, ledger: ledger, machine: machine, audit: audit}
}

// Create validates the input, persists the aggregate with its first version
// (status DRAFT) and logs a CREATE event.
func (s *JourneyService) Create(ctx context.Context, sess Session, in CreateJourneyInput) (*models.Journey, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", models.ErrValidation)
	}
	if !models.ValidCategory(in.Category) {
		return nil, fmt.Errorf("unknown category %q: %w", in.Category, models.ErrValidation)
	}
	discretion := in.DiscretionLevel
	if discretion == "" {
		discretion = models.DiscretionStandard
	}
	if !models.ValidDiscretionLevel(discretion) {
		return nil, fmt.Errorf("unknown discretion level %q: %w", in.DiscretionLevel, models.ErrValidation)
	}
	owner := in.UserID
	if owner == "" {
		owner = sess.ActorID
	}
	if !sess.Institutional() && owner != sess.ActorID {
		return nil, fmt.Errorf("individual callers may only create their own journeys: %w", models.ErrValidation)
	}

	now := time.Now().UTC()
	journey := &models.Journey{
		ID:                 uuid.NewString(),
		UserID:             owner,
		Title:              title,
		Narrative:          in.Narrative,
		Category:           in.Category,
		Status:             models.StatusDraft,
		DiscretionLevel:    discretion,
		EmotionalObjective: in.EmotionalObjective,
		StrategicReasoning: in.StrategicReasoning,
		RiskSummary:        in.RiskSummary,
		InstitutionID:      in.InstitutionID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	version, err := s.ledger.AppendVersion(ctx, journey.ID, VersionData{
		Title:      journey.Title,
		Narrative:  journey.Narrative,
		Status:     models.StatusDraft,
		ModifiedBy: sess.ActorID,
	}, 0)
	if err != nil {
		return nil, err
	}
	journey.VersionIDs = []string{version.ID}
	journey.CurrentVersionID = version.ID

	if err := s.journeys.Insert(ctx, journey); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, &models.AuditEvent{
		Event:        "journey.created",
		ActorID:      sess.ActorID,
		ResourceID:   journey.ID,
		ResourceType: models.ResourceJourney,
		Context:      journey.Category,
		Action:       models.ActionCreate,
		NewState:     map[string]interface{}{"status": models.StatusDraft, "version": 1},
	})

	return journey, nil
}

// GetByID fetches a journey the session may see. Journeys hidden by the scope
// filter are indistinguishable from missing ones, so point reads do not leak
// other clients' journey ids.
func (s *JourneyService) GetByID(ctx context.Context, sess Session, id string) (*models.Journey, error) {
	j, err := s.journeys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanViewJourney(sess, j) {
		return nil, fmt.Errorf("journey %s: %w", id, models.ErrNotFound)
	}
	return j, nil
}

// List returns journeys visible to the session. Institutional callers see
// every journey and may narrow to one owner with userID; individual callers
// always get their own. The scope filter is the final authority on what
// leaves the store.
func (s *JourneyService) List(ctx context.Context, sess Session, userID string) ([]*models.Journey, error) {
	owner := userID
	if !sess.Institutional() {
		owner = sess.ActorID
	}

	var (
		journeys []*models.Journey
		err      error
	)
	if owner == "" {
		journeys, err = s.journeys.ListAll(ctx)
	} else {
		journeys, err = s.journeys.ListByUser(ctx, owner)
	}
	if err != nil {
		return nil, err
	}
	return FilterJourneys(sess, journeys), nil
}

// Update applies a partial edit of non-status fields. A successful update
// appends a new immutable version carrying the merged content and moves the
// aggregate's pointer; the patch must assert the journey's current version
// number.
func (s *JourneyService) Update(ctx context.Context, sess Session, id string, patch JourneyPatch) (*models.Journey, error) {
	j, err := s.GetByID(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if j.Status == models.StatusArchived {
		return nil, fmt.Errorf("journey is archived: %w", models.ErrValidation)
	}
	if patch.ExpectedVersion <= 0 {
		return nil, fmt.Errorf("expected_version is required: %w", models.ErrValidation)
	}

	updated := j.Clone()
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("title cannot be blank: %w", models.ErrValidation)
		}
		updated.Title = title
	}
	if patch.Narrative != nil {
		updated.Narrative = *patch.Narrative
	}
	if patch.EmotionalObjective != nil {
		updated.EmotionalObjective = *patch.EmotionalObjective
	}
	if patch.StrategicReasoning != nil {
		updated.StrategicReasoning = *patch.StrategicReasoning
	}
	if patch.RiskSummary != nil {
		updated.RiskSummary = *patch.RiskSummary
	}

	version, err := s.ledger.AppendVersion(ctx, j.ID, VersionData{
		Title:      updated.Title,
		Narrative:  updated.Narrative,
		Status:     j.Status,
		ModifiedBy: sess.ActorID,
	}, patch.ExpectedVersion)
	if err != nil {
		return nil, err
	}

	updated.VersionIDs = append(updated.VersionIDs, version.ID)
	updated.CurrentVersionID = version.ID
	updated.UpdatedAt = time.Now().UTC()
	if err := s.journeys.Replace(ctx, updated); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, &models.AuditEvent{
		Event:         "journey.updated",
		ActorID:       sess.ActorID,
		ResourceID:    j.ID,
		ResourceType:  models.ResourceJourney,
		Context:       j.Category,
		Action:        models.ActionUpdate,
		PreviousState: map[string]interface{}{"title": j.Title, "version": patch.ExpectedVersion},
		NewState:      map[string]interface{}{"title": updated.Title, "version": version.VersionNumber},
	})

	return updated, nil
}

// Transition moves the journey to target through the state machine.
func (s *JourneyService) Transition(ctx context.Context, sess Session, id, target string) (*models.Journey, error) {
	j, err := s.GetByID(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return s.machine.Transition(ctx, j, target, sess.ActorID)
}

// Versions lists the journey's snapshots, oldest first.
func (s *JourneyService) Versions(ctx context.Context, sess Session, id string) ([]*models.JourneyVersion, error) {
	if _, err := s.GetByID(ctx, sess, id); err != nil {
		return nil, err
	}
	return s.ledger.ListVersions(ctx, id)
}
