package services

import (
	"testing"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

func TestCanViewJourney(t *testing.T) {
	j := &models.Journey{ID: "j-1", UserID: "client-1"}

	if !CanViewJourney(clientSession("client-1"), j) {
		t.Error("owner must see their journey")
	}
	if CanViewJourney(clientSession("client-2"), j) {
		t.Error("other individual must not see the journey")
	}
	if !CanViewJourney(advisorSession("rm-1"), j) {
		t.Error("institutional caller must see every journey")
	}
	if CanViewJourney(clientSession("client-1"), nil) {
		t.Error("nil journey is never visible")
	}
}

func TestFilterJourneysPreservesOrder(t *testing.T) {
	js := []*models.Journey{
		{ID: "a", UserID: "client-1"},
		{ID: "b", UserID: "client-2"},
		{ID: "c", UserID: "client-1"},
	}

	got := FilterJourneys(clientSession("client-1"), js)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("filtered = %v, want [a c] in order", got)
	}

	all := FilterJourneys(advisorSession("rm-1"), js)
	if len(all) != 3 {
		t.Fatalf("institutional filter kept %d, want all 3", len(all))
	}
}

func TestCanViewMemorySharingIsPlainOr(t *testing.T) {
	m := &models.Memory{
		ID:         "m-1",
		UserID:     "client-1",
		SharedWith: []string{"relationship_manager", "client-3"},
	}

	cases := []struct {
		name string
		sess Session
		want bool
	}{
		{"owner", clientSession("client-1"), true},
		{"direct user grant", clientSession("client-3"), true},
		{"role grant", Session{ActorID: "rm-9", RoleContext: RoleContextInstitutional, Roles: []string{"relationship_manager"}}, true},
		{"no grant", clientSession("client-2"), false},
		{"unlisted role", Session{ActorID: "rm-9", RoleContext: RoleContextInstitutional, Roles: []string{"compliance_officer"}}, false},
	}
	for _, tc := range cases {
		if got := CanViewMemory(tc.sess, m); got != tc.want {
			t.Errorf("%s: CanViewMemory = %v, want %v", tc.name, got, tc.want)
		}
	}

	unshared := &models.Memory{ID: "m-2", UserID: "client-1"}
	if CanViewMemory(clientSession("client-3"), unshared) {
		t.Error("memory with empty sharing list must be owner-only")
	}
}
