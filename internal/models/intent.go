package models

import "time"

// IntentProfile captures a client's standing preferences used by the proposal
// collaborator. It is stored encrypted at rest and, unlike journeys and
// memories, is deleted outright on a global erase (no retention requirement).
type IntentProfile struct {
	UserID       string    `json:"user_id"`
	Objectives   []string  `json:"objectives,omitempty"`
	RiskAppetite string    `json:"risk_appetite,omitempty"`
	Horizon      string    `json:"horizon,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}
