package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

// MemStores bundles isolated in-memory implementations of every store
// interface. Tests and local development construct one per scenario instead
// of sharing global state.
type MemStores struct {
	Journeys *MemJourneyStore
	Versions *MemVersionStore
	Audit    *MemAuditStore
	Privacy  *MemPrivacyStore
	Users    *MemUserStore
	Memories *MemMemoryStore
	Intents  *MemIntentStore
}

// NewMemStores returns a fresh, empty set of in-memory stores.
func NewMemStores() *MemStores {
	return &MemStores{
		Journeys: &MemJourneyStore{byID: make(map[string]*models.Journey)},
		Versions: &MemVersionStore{byJourney: make(map[string][]*models.JourneyVersion)},
		Audit:    &MemAuditStore{},
		Privacy:  &MemPrivacyStore{byUser: make(map[string]*models.PrivacySettings)},
		Users:    &MemUserStore{byID: make(map[string]*models.User)},
		Memories: &MemMemoryStore{byID: make(map[string]*models.Memory)},
		Intents:  &MemIntentStore{byUser: make(map[string]*models.IntentProfile)},
	}
}

// MemJourneyStore is a mutex-guarded map of journey aggregates.
type MemJourneyStore struct {
	mu   sync.RWMutex
	byID map[string]*models.Journey
}

func (s *MemJourneyStore) Insert(ctx context.Context, j *models.Journey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[j.ID]; ok {
		return fmt.Errorf("journey %s: %w", j.ID, models.ErrValidation)
	}
	s.byID[j.ID] = j.Clone()
	return nil
}

func (s *MemJourneyStore) GetByID(ctx context.Context, id string) (*models.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("journey %s: %w", id, models.ErrNotFound)
	}
	return j.Clone(), nil
}

func (s *MemJourneyStore) ListByUser(ctx context.Context, userID string) ([]*models.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Journey
	for _, j := range s.byID {
		if j.UserID == userID {
			out = append(out, j.Clone())
		}
	}
	sortJourneys(out)
	return out, nil
}

func (s *MemJourneyStore) ListAll(ctx context.Context) ([]*models.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Journey, 0, len(s.byID))
	for _, j := range s.byID {
		out = append(out, j.Clone())
	}
	sortJourneys(out)
	return out, nil
}

func (s *MemJourneyStore) Replace(ctx context.Context, j *models.Journey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[j.ID]; !ok {
		return fmt.Errorf("journey %s: %w", j.ID, models.ErrNotFound)
	}
	s.byID[j.ID] = j.Clone()
	return nil
}

func sortJourneys(js []*models.Journey) {
	sort.Slice(js, func(i, k int) bool {
		if js[i].CreatedAt.Equal(js[k].CreatedAt) {
			return js[i].ID < js[k].ID
		}
		return js[i].CreatedAt.Before(js[k].CreatedAt)
	})
}

// MemVersionStore keeps per-journey snapshot sequences. The expected-version
// check happens under the same lock as the append, so two writers asserting
// the same expected version cannot both succeed.
type MemVersionStore struct {
	mu        sync.Mutex
	byJourney map[string][]*models.JourneyVersion
}

func (s *MemVersionStore) Append(ctx context.Context, v *models.JourneyVersion, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions := s.byJourney[v.JourneyID]
	latest := 0
	if n := len(versions); n > 0 {
		latest = versions[n-1].VersionNumber
	}
	if latest != expectedVersion {
		return fmt.Errorf("journey %s: expected version %d, latest is %d: %w",
			v.JourneyID, expectedVersion, latest, models.ErrConcurrentModification)
	}
	cp := *v
	s.byJourney[v.JourneyID] = append(versions, &cp)
	return nil
}

func (s *MemVersionStore) ListByJourney(ctx context.Context, journeyID string) ([]*models.JourneyVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions := s.byJourney[journeyID]
	out := make([]*models.JourneyVersion, 0, len(versions))
	for _, v := range versions {
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemVersionStore) Latest(ctx context.Context, journeyID string) (*models.JourneyVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions := s.byJourney[journeyID]
	if len(versions) == 0 {
		return nil, fmt.Errorf("journey %s has no versions: %w", journeyID, models.ErrNotFound)
	}
	cp := *versions[len(versions)-1]
	return &cp, nil
}

func (s *MemVersionStore) RedactByJourney(ctx context.Context, journeyID, placeholder string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, v := range s.byJourney[journeyID] {
		v.Title = placeholder
		v.Narrative = placeholder
		n++
	}
	return n, nil
}

// MemAuditStore is an append-only slice; Seq reflects insertion order.
type MemAuditStore struct {
	mu     sync.Mutex
	events []*models.AuditEvent
}

func (s *MemAuditStore) Append(ctx context.Context, e *models.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneEvent(e)
	cp.Seq = int64(len(s.events) + 1)
	s.events = append(s.events, cp)
	return nil
}

func (s *MemAuditStore) ListByResource(ctx context.Context, resourceType, resourceID string) ([]*models.AuditEvent, error) {
	return s.list(func(e *models.AuditEvent) bool {
		return e.ResourceType == resourceType && e.ResourceID == resourceID
	})
}

func (s *MemAuditStore) ListByActor(ctx context.Context, actorID string) ([]*models.AuditEvent, error) {
	return s.list(func(e *models.AuditEvent) bool { return e.ActorID == actorID })
}

func (s *MemAuditStore) ListByContext(ctx context.Context, contextTag string) ([]*models.AuditEvent, error) {
	return s.list(func(e *models.AuditEvent) bool { return e.Context == contextTag })
}

func (s *MemAuditStore) list(match func(*models.AuditEvent) bool) ([]*models.AuditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.AuditEvent
	for _, e := range s.events {
		if match(e) {
			out = append(out, cloneEvent(e))
		}
	}
	return out, nil
}

func (s *MemAuditStore) AnonymizeActor(ctx context.Context, actorID, sentinel string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.events {
		if e.ActorID != actorID {
			continue
		}
		e.ActorID = sentinel
		if e.Metadata == nil {
			e.Metadata = make(map[string]interface{})
		}
		e.Metadata[models.MetadataAnonymized] = true
		n++
	}
	return n, nil
}

func cloneEvent(e *models.AuditEvent) *models.AuditEvent {
	cp := *e
	cp.PreviousState = cloneMap(e.PreviousState)
	cp.NewState = cloneMap(e.NewState)
	cp.Metadata = cloneMap(e.Metadata)
	return &cp
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MemPrivacyStore keys privacy settings by user id.
type MemPrivacyStore struct {
	mu     sync.RWMutex
	byUser map[string]*models.PrivacySettings
}

func (s *MemPrivacyStore) Get(ctx context.Context, userID string) (*models.PrivacySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("privacy settings for user: %w", models.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *MemPrivacyStore) Upsert(ctx context.Context, p *models.PrivacySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.byUser[p.UserID] = &cp
	return nil
}

// MemUserStore holds identity rows; Put seeds test fixtures.
type MemUserStore struct {
	mu   sync.RWMutex
	byID map[string]*models.User
}

func (s *MemUserStore) Put(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.byID[u.ID] = &cp
}

func (s *MemUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", models.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *MemUserStore) Scrub(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("user: %w", models.ErrNotFound)
	}
	u.Name = ""
	u.Email = ""
	u.AvatarURL = ""
	u.ErasedAt.Time = at
	u.ErasedAt.Valid = true
	return nil
}

// MemMemoryStore is a mutex-guarded map of memories.
type MemMemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*models.Memory
}

func (s *MemMemoryStore) Insert(ctx context.Context, m *models.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[m.ID]; ok {
		return fmt.Errorf("memory %s: %w", m.ID, models.ErrValidation)
	}
	s.byID[m.ID] = m.Clone()
	return nil
}

func (s *MemMemoryStore) GetByID(ctx context.Context, id string) (*models.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("memory %s: %w", id, models.ErrNotFound)
	}
	return m.Clone(), nil
}

func (s *MemMemoryStore) ListByOwner(ctx context.Context, userID string) ([]*models.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Memory
	for _, m := range s.byID {
		if m.UserID == userID {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *MemMemoryStore) Replace(ctx context.Context, m *models.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[m.ID]; !ok {
		return fmt.Errorf("memory %s: %w", m.ID, models.ErrNotFound)
	}
	s.byID[m.ID] = m.Clone()
	return nil
}

// MemIntentStore keys intent profiles by user id.
type MemIntentStore struct {
	mu     sync.RWMutex
	byUser map[string]*models.IntentProfile
}

func (s *MemIntentStore) Get(ctx context.Context, userID string) (*models.IntentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("intent profile: %w", models.ErrNotFound)
	}
	cp := *p
	cp.Objectives = append([]string(nil), p.Objectives...)
	return &cp, nil
}

func (s *MemIntentStore) Put(ctx context.Context, p *models.IntentProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.Objectives = append([]string(nil), p.Objectives...)
	s.byUser[p.UserID] = &cp
	return nil
}

func (s *MemIntentStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
	return nil
}
