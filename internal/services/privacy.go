package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aurum-collective/atelier-backend/internal/models"
	"github.com/aurum-collective/atelier-backend/internal/store"
)

// PrivacyService owns per-user privacy settings and coordinates the
// cross-store global erase.
type PrivacyService struct {
	privacy  store.PrivacyStore
	users    store.UserStore
	journeys store.JourneyStore
	versions store.VersionStore
	memories store.MemoryStore
	intents  store.IntentStore
	audit    *AuditService
}

// PrivacyDeps lists the stores the coordinator touches.
type PrivacyDeps struct {
	Privacy  store.PrivacyStore
	Users    store.UserStore
	Journeys store.JourneyStore
	Versions store.VersionStore
	Memories store.MemoryStore
	Intents  store.IntentStore
	Audit    *AuditService
}

// NewPrivacyService wires the coordinator.
func NewPrivacyService(deps PrivacyDeps) *PrivacyService {
	return &PrivacyService{
		privacy:  deps.Privacy,
		users:    deps.Users,
		journeys: deps.Journeys,
		versions: deps.Versions,
		memories: deps.Memories,
		intents:  deps.Intents,
		audit:    deps.Audit,
	}
}

// GetSettings returns the user's settings, lazily creating the defaults on
// first read.
func (s *PrivacyService) GetSettings(ctx context.Context, userID string) (*models.PrivacySettings, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", models.ErrValidation)
	}

	settings, err := s.privacy.Get(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	settings = models.DefaultPrivacySettings(userID, time.Now().UTC())
	if err := s.privacy.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSettings merges the patch into the stored record. Updates are
// rejected once erasure has executed; the record is terminal.
func (s *PrivacyService) UpdateSettings(ctx context.Context, userID string, patch models.PrivacySettingsPatch) (*models.PrivacySettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings.EraseExecutedAt != nil {
		return nil, fmt.Errorf("privacy settings are erased and terminal: %w", models.ErrValidation)
	}

	if patch.DiscretionTier != nil {
		if !models.ValidDiscretionLevel(*patch.DiscretionTier) {
			return nil, fmt.Errorf("unknown discretion tier %q: %w", *patch.DiscretionTier, models.ErrValidation)
		}
		settings.DiscretionTier = *patch.DiscretionTier
	}
	if patch.DefaultItineraryVisibility != nil {
		switch *patch.DefaultItineraryVisibility {
		case models.VisibilityPrivate, models.VisibilityAdvisors, models.VisibilityInstitution:
			settings.DefaultItineraryVisibility = *patch.DefaultItineraryVisibility
		default:
			return nil, fmt.Errorf("unknown visibility %q: %w", *patch.DefaultItineraryVisibility, models.ErrValidation)
		}
	}
	if patch.AdvisorVisibilityScope != nil {
		switch *patch.AdvisorVisibilityScope {
		case models.AdvisorScopeNone, models.AdvisorScopeAssigned, models.AdvisorScopeAll:
			settings.AdvisorVisibilityScope = *patch.AdvisorVisibilityScope
		default:
			return nil, fmt.Errorf("unknown advisor scope %q: %w", *patch.AdvisorVisibilityScope, models.ErrValidation)
		}
	}
	if patch.AdvisorPermissions != nil {
		// Per-advisor permission maps merge by advisor, not wholesale.
		if settings.AdvisorPermissions == nil {
			settings.AdvisorPermissions = make(map[string]map[string]string)
		}
		for advisor, grants := range patch.AdvisorPermissions {
			settings.AdvisorPermissions[advisor] = grants
		}
	}

	settings.UpdatedAt = time.Now().UTC()
	if err := s.privacy.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// eraseStepOrder lists the scrubbing steps in execution order. The audit
// trail is anonymized first so nothing below can log under a pre-erasure
// identity; the settings stamp is handled separately, after every step has
// run.
var eraseStepOrder = []string{
	models.EraseStepAudit,
	models.EraseStepUser,
	models.EraseStepJourneys,
	models.EraseStepMemories,
	models.EraseStepIntent,
}

func (s *PrivacyService) runEraseStep(ctx context.Context, userID string, at time.Time, name string) error {
	switch name {
	case models.EraseStepAudit:
		_, err := s.audit.Anonymize(ctx, userID)
		return err
	case models.EraseStepUser:
		// Scrub in place; the id survives so resource links stay valid.
		return s.users.Scrub(ctx, userID, at)
	case models.EraseStepJourneys:
		return s.redactJourneys(ctx, userID)
	case models.EraseStepMemories:
		return s.redactMemories(ctx, userID)
	case models.EraseStepIntent:
		return s.intents.Delete(ctx, userID)
	}
	return fmt.Errorf("unknown erase step %q: %w", name, models.ErrValidation)
}

// RequestGlobalErase scrubs the user's personal data across every store
// while preserving the compliance shape of history. Each step is attempted
// independently; failures are collected into the report instead of
// short-circuiting. The call is idempotent with repair: once a fully
// successful erasure has executed, replays return the original completion
// timestamp without repeating any work; after a partial one, replays
// re-attempt exactly the failed steps until all of them have completed.
func (s *PrivacyService) RequestGlobalErase(ctx context.Context, userID string) (*models.EraseReport, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", models.ErrValidation)
	}

	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings.EraseExecutedAt != nil {
		if len(settings.EraseFailedSteps) == 0 {
			return &models.EraseReport{
				UserID:     userID,
				ExecutedAt: *settings.EraseExecutedAt,
				Replayed:   true,
			}, nil
		}
		return s.repairErase(ctx, settings)
	}

	now := time.Now().UTC()
	report := &models.EraseReport{UserID: userID, ExecutedAt: now}

	var failed []string
	for _, name := range eraseStepOrder {
		stepErr := s.runEraseStep(ctx, userID, now, name)
		step := models.EraseStep{Name: name, OK: stepErr == nil}
		if stepErr != nil {
			step.Error = stepErr.Error()
			failed = append(failed, name)
		}
		report.Steps = append(report.Steps, step)
	}

	// The settings stamp is both the idempotency marker and the repair
	// ledger: it records when erasure executed and which steps a retry
	// still has to re-run. Stamping last means a failure here leaves no
	// marker and the next call redoes everything; every step tolerates
	// being run twice.
	settings.EraseRequested = true
	settings.EraseExecutedAt = &now
	settings.EraseFailedSteps = failed
	settings.UpdatedAt = now
	stampErr := s.privacy.Upsert(ctx, settings)
	stamp := models.EraseStep{Name: models.EraseStepSettings, OK: stampErr == nil}
	if stampErr != nil {
		stamp.Error = stampErr.Error()
	}
	report.Steps = append(report.Steps, stamp)
	report.Partial = len(failed) > 0 || stampErr != nil

	s.logEraseEvent(ctx, userID, report.Partial, false)
	return report, nil
}

// repairErase re-attempts only the steps the original erase could not
// complete and narrows the persisted failed-step set to whatever still
// fails. The report carries the original completion timestamp.
func (s *PrivacyService) repairErase(ctx context.Context, settings *models.PrivacySettings) (*models.EraseReport, error) {
	executedAt := *settings.EraseExecutedAt
	report := &models.EraseReport{
		UserID:     settings.UserID,
		ExecutedAt: executedAt,
		Replayed:   true,
	}

	var remaining []string
	for _, name := range settings.EraseFailedSteps {
		stepErr := s.runEraseStep(ctx, settings.UserID, executedAt, name)
		step := models.EraseStep{Name: name, OK: stepErr == nil}
		if stepErr != nil {
			step.Error = stepErr.Error()
			remaining = append(remaining, name)
		}
		report.Steps = append(report.Steps, step)
	}
	report.Partial = len(remaining) > 0

	settings.EraseFailedSteps = remaining
	settings.UpdatedAt = time.Now().UTC()
	if err := s.privacy.Upsert(ctx, settings); err != nil {
		// The stale marker keeps the repaired steps listed; all of them
		// tolerate another run on the next retry.
		report.Partial = true
	}

	s.logEraseEvent(ctx, settings.UserID, report.Partial, true)
	return report, nil
}

// logEraseEvent records the erase on the audit trail. By this point the
// trail must not carry pre-erasure identifiers, so the event is logged under
// the sentinel actor.
func (s *PrivacyService) logEraseEvent(ctx context.Context, userID string, partial, replayed bool) {
	s.audit.Log(ctx, &models.AuditEvent{
		Event:        "privacy.global_erase",
		ActorID:      models.AnonymizedActor,
		ResourceID:   userID,
		ResourceType: models.ResourceUser,
		Action:       models.ActionErase,
		Metadata:     map[string]interface{}{"partial": partial, "replayed": replayed},
	})
}

// redactJourneys anonymizes journey content but never deletes the records:
// their audit trail and any institutional record must persist. Retained
// version snapshots are scrubbed through the same placeholder.
func (s *PrivacyService) redactJourneys(ctx context.Context, userID string) error {
	journeys, err := s.journeys.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, j := range journeys {
		redacted := j.Clone()
		redacted.Title = models.ErasedPlaceholder
		redacted.Narrative = models.ErasedPlaceholder
		redacted.EmotionalObjective = ""
		redacted.StrategicReasoning = ""
		redacted.RiskSummary = ""
		redacted.UpdatedAt = now
		if err := s.journeys.Replace(ctx, redacted); err != nil {
			return err
		}
		if _, err := s.versions.RedactByJourney(ctx, j.ID, models.ErasedPlaceholder); err != nil {
			return err
		}
	}
	return nil
}

func (s *PrivacyService) redactMemories(ctx context.Context, userID string) error {
	memories, err := s.memories.ListByOwner(ctx, userID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, m := range memories {
		redacted := m.Clone()
		redacted.Title = models.ErasedPlaceholder
		redacted.Description = models.ErasedPlaceholder
		redacted.Location = ""
		redacted.SharedWith = nil
		redacted.Redacted = true
		redacted.UpdatedAt = now
		if err := s.memories.Replace(ctx, redacted); err != nil {
			return err
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
