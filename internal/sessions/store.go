// Package sessions persists in-progress triage sessions in Redis so any
// API or worker instance can continue a conversation.
package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/albertosilva007/triagem-platform/internal/triage"
)

// DefaultTTL bounds how long an abandoned session survives before the
// conversation restarts from scratch.
const DefaultTTL = 24 * time.Hour

// Store keeps sessions as JSON values with a sliding TTL: every save
// refreshes the expiry, so only truly abandoned conversations expire.
type Store struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewStore builds a Redis-backed session store. A non-positive ttl falls
// back to DefaultTTL.
func NewStore(redisClient *redis.Client, ttl time.Duration, tracer trace.Tracer) *Store {
	if redisClient == nil {
		panic("sessions: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("triagem.internal.sessions")
	}
	return &Store{
		redis:  redisClient,
		ttl:    ttl,
		tracer: tracer,
	}
}

// Load retrieves a session, returning triage.ErrSessionNotFound when the
// conversation has no stored (or an expired) session.
func (s *Store) Load(ctx context.Context, conversationID string) (*triage.Session, error) {
	ctx, span := s.tracer.Start(ctx, "sessions.load")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(conversationID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, triage.ErrSessionNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("sessions: failed to load session: %w", err)
	}

	var sess triage.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("sessions: failed to decode session: %w", err)
	}
	return &sess, nil
}

// Save persists the session and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sess *triage.Session) error {
	ctx, span := s.tracer.Start(ctx, "sessions.save")
	defer span.End()

	data, err := json.Marshal(sess)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ConversationID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: failed to persist session: %w", err)
	}
	return nil
}

// Delete removes a session immediately, e.g. after an admin reset.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	ctx, span := s.tracer.Start(ctx, "sessions.delete")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(conversationID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("triage_session:%s", id)
}
