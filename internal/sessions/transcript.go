package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TranscriptMessage is one line of a conversation transcript.
type TranscriptMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptStore keeps per-conversation transcripts in a Redis list so
// the webchat widget can restore history on reconnect. Entries expire on
// the same clock as the session itself.
type TranscriptStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewTranscriptStore builds a Redis-backed transcript store.
func NewTranscriptStore(redisClient *redis.Client, ttl time.Duration, tracer trace.Tracer) *TranscriptStore {
	if redisClient == nil {
		panic("sessions: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("triagem.internal.sessions")
	}
	return &TranscriptStore{
		redis:  redisClient,
		ttl:    ttl,
		tracer: tracer,
	}
}

// Append adds one message to the transcript and refreshes its expiry.
func (s *TranscriptStore) Append(ctx context.Context, conversationID string, msg TranscriptMessage) error {
	ctx, span := s.tracer.Start(ctx, "sessions.transcript_append")
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: failed to marshal transcript message: %w", err)
	}

	key := transcriptKey(conversationID)
	if err := s.redis.RPush(ctx, key, data).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: failed to append transcript message: %w", err)
	}
	if err := s.redis.Expire(ctx, key, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: failed to refresh transcript expiry: %w", err)
	}
	return nil
}

// List returns up to limit most recent messages in chronological order.
// A missing transcript yields an empty slice, not an error.
func (s *TranscriptStore) List(ctx context.Context, conversationID string, limit int64) ([]TranscriptMessage, error) {
	ctx, span := s.tracer.Start(ctx, "sessions.transcript_list")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}

	raw, err := s.redis.LRange(ctx, transcriptKey(conversationID), -limit, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("sessions: failed to load transcript: %w", err)
	}

	messages := make([]TranscriptMessage, 0, len(raw))
	for _, item := range raw {
		var msg TranscriptMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("sessions: failed to decode transcript message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func transcriptKey(id string) string {
	return fmt.Sprintf("triage_transcript:%s", id)
}
