package services

import "github.com/aurum-collective/atelier-backend/internal/models"

// Read-time visibility rules.
//
// Journeys: callers acting in the institutional (advisor-side) context see
// all journeys regardless of owner (shared-desk model, as observed); callers
// in the individual-client context see only journeys they own.
//
// Memories are shareable: visible to the owner, to callers whose role tag
// appears in the sharing list, or to callers whose id appears there directly.
// The list mixes role tags and raw user ids; the combination is a plain OR.

// CanViewJourney decides whether the session may read j.
func CanViewJourney(sess Session, j *models.Journey) bool {
	if j == nil {
		return false
	}
	if sess.Institutional() {
		return true
	}
	return j.UserID == sess.ActorID
}

// FilterJourneys returns the subset of journeys visible to the session,
// preserving order.
func FilterJourneys(sess Session, journeys []*models.Journey) []*models.Journey {
	out := make([]*models.Journey, 0, len(journeys))
	for _, j := range journeys {
		if CanViewJourney(sess, j) {
			out = append(out, j)
		}
	}
	return out
}

// CanViewMemory decides whether the session may read m.
func CanViewMemory(sess Session, m *models.Memory) bool {
	if m == nil {
		return false
	}
	if m.UserID == sess.ActorID {
		return true
	}
	for _, grant := range m.SharedWith {
		if grant == sess.ActorID {
			return true
		}
		for _, role := range sess.Roles {
			if grant == role {
				return true
			}
		}
	}
	return false
}
