package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

// AuditChannel is the Redis pub/sub channel carrying audit events between
// instances for the read-only dashboard stream.
const AuditChannel = "audit:events"

// AuditStream fans audit events out to local subscribers (WebSocket
// connections), bridged across instances by Redis pub/sub. Publishing is
// best-effort: a slow subscriber drops events rather than blocking the
// audit log.
type AuditStream struct {
	mu     sync.RWMutex
	nextID int64
	subs   map[int64]chan *models.AuditEvent

	redis   *redis.Client
	started sync.Once
}

// NewAuditStream builds a stream hub. client may be nil; events then fan out
// in-process only.
func NewAuditStream(client *redis.Client) *AuditStream {
	return &AuditStream{
		subs:  make(map[int64]chan *models.AuditEvent),
		redis: client,
	}
}

// Subscribe registers a local subscriber. The returned cancel func must be
// called when the consumer goes away.
func (s *AuditStream) Subscribe() (<-chan *models.AuditEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	ch := make(chan *models.AuditEvent, 32)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish broadcasts an event. With Redis configured the event goes through
// the shared channel so every instance's subscribers see it; otherwise it
// fans out locally.
func (s *AuditStream) Publish(ctx context.Context, e *models.AuditEvent) {
	if e == nil {
		return
	}
	if s.redis == nil {
		s.fanOut(e)
		return
	}

	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("audit stream: marshal event: %v", err)
		return
	}
	if err := s.redis.Publish(ctx, AuditChannel, payload).Err(); err != nil {
		log.Printf("audit stream: publish: %v", err)
	}
}

func (s *AuditStream) fanOut(e *models.AuditEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
			// Drop rather than block; dashboards tolerate gaps.
		}
	}
}

// Start launches the shared Redis subscriber for this instance. Safe to call
// more than once; only the first call has effect. No-op without Redis.
func (s *AuditStream) Start(ctx context.Context) {
	if s.redis == nil {
		return
	}
	s.started.Do(func() {
		go s.runSubscriber(ctx)
	})
}

func (s *AuditStream) runSubscriber(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := s.redis.Subscribe(ctx, AuditChannel)
			defer pubsub.Close()

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("audit stream: subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event models.AuditEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("audit stream: unmarshal event: %v", err)
					continue
				}
				s.fanOut(&event)
			}
		}()

		if ctx.Err() != nil {
			return
		}
	}
}
