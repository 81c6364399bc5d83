package models

import "time"

// Memory is a shareable recollection of an executed journey. SharedWith mixes
// role tags (e.g. "relationship_manager") and raw user ids; visibility is the
// OR of owner, role grant, and user grant.
type Memory struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Location    string    `bson:"location,omitempty" json:"location,omitempty"`
	OccurredAt  time.Time `bson:"occurred_at" json:"occurred_at"`
	SharedWith  []string  `bson:"shared_with,omitempty" json:"shared_with,omitempty"`
	Redacted    bool      `bson:"redacted" json:"redacted"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Clone returns a deep copy of the memory.
func (m *Memory) Clone() *Memory {
	if m == nil {
		return nil
	}
	c := *m
	c.SharedWith = append([]string(nil), m.SharedWith...)
	return &c
}
