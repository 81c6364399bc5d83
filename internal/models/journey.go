package models

import "time"

// Journey lifecycle statuses. The set is closed: DRAFT is the initial state,
// ARCHIVED is terminal and reachable from every other state.
const (
	StatusDraft            = "DRAFT"
	StatusRMReview         = "RM_REVIEW"
	StatusComplianceReview = "COMPLIANCE_REVIEW"
	StatusApproved         = "APPROVED"
	StatusPresented        = "PRESENTED"
	StatusExecuted         = "EXECUTED"
	StatusArchived         = "ARCHIVED"
)

// Journey categories (closed set).
const (
	CategoryLegacy       = "legacy"
	CategoryPhilanthropy = "philanthropy"
	CategoryAcquisition  = "acquisition"
	CategoryExperience   = "experience"
	CategoryWellness     = "wellness"
	CategoryEducation    = "education"
)

// Discretion levels control default visibility and itinerary concealment.
const (
	DiscretionStandard = "standard"
	DiscretionElevated = "elevated"
	DiscretionAbsolute = "absolute"
)

// ErasedPlaceholder replaces personal free-text fields when a global erase
// redacts a record that must be retained for compliance.
const ErasedPlaceholder = "[erased]"

var journeyStatuses = map[string]bool{
	StatusDraft:            true,
	StatusRMReview:         true,
	StatusComplianceReview: true,
	StatusApproved:         true,
	StatusPresented:        true,
	StatusExecuted:         true,
	StatusArchived:         true,
}

var journeyCategories = map[string]bool{
	CategoryLegacy:       true,
	CategoryPhilanthropy: true,
	CategoryAcquisition:  true,
	CategoryExperience:   true,
	CategoryWellness:     true,
	CategoryEducation:    true,
}

var discretionLevels = map[string]bool{
	DiscretionStandard: true,
	DiscretionElevated: true,
	DiscretionAbsolute: true,
}

// ValidStatus reports whether s is a member of the journey status set.
func ValidStatus(s string) bool { return journeyStatuses[s] }

// ValidCategory reports whether c is a member of the journey category set.
func ValidCategory(c string) bool { return journeyCategories[c] }

// ValidDiscretionLevel reports whether d is a member of the discretion set.
func ValidDiscretionLevel(d string) bool { return discretionLevels[d] }

// Journey is a proposed or executed bespoke engagement tracked through the
// lifecycle state machine. Title and Narrative are denormalized from the
// current version and must always equal it.
type Journey struct {
	ID                 string    `bson:"_id" json:"id"`
	UserID             string    `bson:"user_id" json:"user_id"`
	Title              string    `bson:"title" json:"title"`
	Narrative          string    `bson:"narrative" json:"narrative"`
	Category           string    `bson:"category" json:"category"`
	Status             string    `bson:"status" json:"status"`
	DiscretionLevel    string    `bson:"discretion_level" json:"discretion_level"`
	EmotionalObjective string    `bson:"emotional_objective,omitempty" json:"emotional_objective,omitempty"`
	StrategicReasoning string    `bson:"strategic_reasoning,omitempty" json:"strategic_reasoning,omitempty"`
	RiskSummary        string    `bson:"risk_summary,omitempty" json:"risk_summary,omitempty"`
	InstitutionID      string    `bson:"institution_id,omitempty" json:"institution_id,omitempty"`
	VersionIDs         []string  `bson:"version_ids" json:"version_ids"`
	CurrentVersionID   string    `bson:"current_version_id" json:"current_version_id"`
	CreatedAt          time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updated_at"`
}

// Clone returns a deep copy so callers can stage changes without mutating
// the stored aggregate before the write succeeds.
func (j *Journey) Clone() *Journey {
	if j == nil {
		return nil
	}
	c := *j
	c.VersionIDs = append([]string(nil), j.VersionIDs...)
	return &c
}

// JourneyVersion is an immutable snapshot of a journey at the moment a
// version-producing operation completed. It is never mutated after creation;
// ApprovedBy is settable exactly once, at creation of the approval snapshot.
type JourneyVersion struct {
	ID            string    `bson:"_id" json:"id"`
	JourneyID     string    `bson:"journey_id" json:"journey_id"`
	VersionNumber int       `bson:"version_number" json:"version_number"`
	Title         string    `bson:"title" json:"title"`
	Narrative     string    `bson:"narrative" json:"narrative"`
	Status        string    `bson:"status" json:"status"`
	ModifiedBy    string    `bson:"modified_by" json:"modified_by"`
	ApprovedBy    string    `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
