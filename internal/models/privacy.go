package models

import "time"

// Default itinerary visibility settings.
const (
	VisibilityPrivate     = "private"
	VisibilityAdvisors    = "advisors"
	VisibilityInstitution = "institution"
)

// Advisor visibility scopes.
const (
	AdvisorScopeNone     = "none"
	AdvisorScopeAssigned = "assigned"
	AdvisorScopeAll      = "all"
)

// PrivacySettings is the per-user privacy record. It is lazily created with
// defaults on first read and updated with partial-merge semantics. Once
// EraseExecutedAt is set the record is terminal and rejects further updates.
// EraseFailedSteps lists the erasure steps the last run could not complete;
// a retry re-attempts exactly those and narrows the list.
type PrivacySettings struct {
	UserID                     string                       `bson:"_id" json:"user_id"`
	DiscretionTier             string                       `bson:"discretion_tier" json:"discretion_tier"`
	DefaultItineraryVisibility string                       `bson:"default_itinerary_visibility" json:"default_itinerary_visibility"`
	AdvisorVisibilityScope     string                       `bson:"advisor_visibility_scope" json:"advisor_visibility_scope"`
	AdvisorPermissions         map[string]map[string]string `bson:"advisor_permissions,omitempty" json:"advisor_permissions,omitempty"`
	EraseRequested             bool                         `bson:"erase_requested" json:"erase_requested"`
	EraseExecutedAt            *time.Time                   `bson:"erase_executed_at,omitempty" json:"erase_executed_at,omitempty"`
	EraseFailedSteps           []string                     `bson:"erase_failed_steps,omitempty" json:"erase_failed_steps,omitempty"`
	CreatedAt                  time.Time                    `bson:"created_at" json:"created_at"`
	UpdatedAt                  time.Time                    `bson:"updated_at" json:"updated_at"`
}

// DefaultPrivacySettings returns the record created on first read.
func DefaultPrivacySettings(userID string, now time.Time) *PrivacySettings {
	return &PrivacySettings{
		UserID:                     userID,
		DiscretionTier:             DiscretionStandard,
		DefaultItineraryVisibility: VisibilityAdvisors,
		AdvisorVisibilityScope:     AdvisorScopeAssigned,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
}

// PrivacySettingsPatch carries a partial update; nil fields are left as-is.
type PrivacySettingsPatch struct {
	DiscretionTier             *string                      `json:"discretion_tier,omitempty"`
	DefaultItineraryVisibility *string                      `json:"default_itinerary_visibility,omitempty"`
	AdvisorVisibilityScope     *string                      `json:"advisor_visibility_scope,omitempty"`
	AdvisorPermissions         map[string]map[string]string `json:"advisor_permissions,omitempty"`
}

// Erase step names reported by the privacy coordinator.
const (
	EraseStepSettings = "privacy_settings"
	EraseStepAudit    = "audit_anonymize"
	EraseStepUser     = "user_scrub"
	EraseStepJourneys = "journeys_redact"
	EraseStepMemories = "memories_redact"
	EraseStepIntent   = "intent_delete"
)

// EraseStep records the outcome of one independent erasure step.
type EraseStep struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// EraseReport is the structured result of a global erase. A sub-step failure
// never surfaces as an error; Partial marks reports with at least one failed
// step so callers can retry idempotently.
type EraseReport struct {
	UserID     string      `json:"user_id"`
	ExecutedAt time.Time   `json:"executed_at"`
	Replayed   bool        `json:"replayed"`
	Partial    bool        `json:"partial"`
	Steps      []EraseStep `json:"steps"`
}
