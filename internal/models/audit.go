package models

import "time"

// Audit action kinds.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionErase  = "ERASE"
)

// Resource types referenced by audit events. The reference is weak: deleting
// a resource never deletes its audit history.
const (
	ResourceJourney         = "journey"
	ResourceMemory          = "memory"
	ResourceUser            = "user"
	ResourcePrivacySettings = "privacy_settings"
)

// AnonymizedActor is the sentinel written over an actor id when that user's
// audit trail is anonymized by a global erase.
const AnonymizedActor = "erased-user"

// MetadataAnonymized is the metadata flag set on anonymized events.
const MetadataAnonymized = "anonymized"

// AuditEvent is one entry in the append-only audit trail. The only sanctioned
// mutation after append is anonymization, which overwrites ActorID with
// AnonymizedActor and flags Metadata, leaving everything else intact.
type AuditEvent struct {
	ID            string                 `bson:"_id" json:"id"`
	Event         string                 `bson:"event" json:"event"`
	ActorID       string                 `bson:"actor_id" json:"actor_id"`
	ResourceID    string                 `bson:"resource_id" json:"resource_id"`
	ResourceType  string                 `bson:"resource_type" json:"resource_type"`
	Context       string                 `bson:"context,omitempty" json:"context,omitempty"`
	Action        string                 `bson:"action" json:"action"`
	PreviousState map[string]interface{} `bson:"previous_state,omitempty" json:"previous_state,omitempty"`
	NewState      map[string]interface{} `bson:"new_state,omitempty" json:"new_state,omitempty"`
	Metadata      map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt     time.Time              `bson:"created_at" json:"created_at"`

	// Seq preserves insertion order within a store; queries return events
	// ordered by it.
	Seq int64 `bson:"seq" json:"-"`
}

// Anonymized reports whether the event's actor has been replaced by the
// erasure sentinel.
func (e *AuditEvent) Anonymized() bool {
	if e.Metadata == nil {
		return false
	}
	v, ok := e.Metadata[MetadataAnonymized].(bool)
	return ok && v
}
