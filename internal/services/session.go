package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Role contexts carried by every call. The session collaborator decides which
// context a caller is acting in; the engine only enforces visibility by it.
const (
	RoleContextInstitutional = "institutional"
	RoleContextIndividual    = "individual"
)

const (
	// SessionDuration matches the collaborator's token lifetime.
	SessionDuration = 12 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for session tokens.
	SessionKeyPrefix = "session:"
)

// Session identifies the caller on every engine operation.
type Session struct {
	ActorID     string   `json:"actor_id"`
	RoleContext string   `json:"role_context"`
	Roles       []string `json:"roles,omitempty"`
}

// Institutional reports whether the caller acts in the advisor-side context.
func (s Session) Institutional() bool { return s.RoleContext == RoleContextInstitutional }

// SessionService validates bearer tokens against Redis. Tokens are written by
// the session collaborator; Create exists so that collaborator (and tests)
// can mint them through the same path.
type SessionService struct {
	redis *redis.Client
}

// NewSessionService wraps a connected Redis client.
func NewSessionService(client *redis.Client) *SessionService {
	return &SessionService{redis: client}
}

// Create stores a session and returns its bearer token.
func (s *SessionService) Create(ctx context.Context, sess Session) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	payload, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := s.redis.Set(ctx, SessionKeyPrefix+token, payload, SessionDuration).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Validate resolves a bearer token. A missing or expired token is not an
// error; it returns ok=false.
func (s *SessionService) Validate(ctx context.Context, token string) (Session, bool, error) {
	if token == "" {
		return Session{}, false, nil
	}

	payload, err := s.redis.Get(ctx, SessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return Session{}, false, err
	}
	return sess, sess.ActorID != "", nil
}

// Invalidate removes a session token.
func (s *SessionService) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.redis.Del(ctx, SessionKeyPrefix+token).Err()
}
