package triage

import (
	"context"
	"fmt"

	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

// Publisher enqueues triage jobs for asynchronous processing.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("triage: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// EnqueueStart publishes a job that opens a conversation without patient input.
func (p *Publisher) EnqueueStart(ctx context.Context, jobID, conversationID string, opts ...PublishOption) error {
	return p.enqueue(ctx, jobTypeStart, jobID, conversationID, "", opts...)
}

// EnqueueMessage publishes a process-message job.
func (p *Publisher) EnqueueMessage(ctx context.Context, jobID, conversationID, message string, opts ...PublishOption) error {
	return p.enqueue(ctx, jobTypeMessage, jobID, conversationID, message, opts...)
}

func (p *Publisher) enqueue(ctx context.Context, kind jobType, jobID, conversationID, message string, opts ...PublishOption) error {
	if ctx == nil {
		ctx = context.Background()
	}

	payload := queuePayload{
		ID:             jobID,
		Kind:           kind,
		ConversationID: conversationID,
		Message:        message,
		TrackStatus:    true,
	}
	for _, opt := range opts {
		opt(&payload)
	}

	payload, body, err := encodePayload(payload)
	if err != nil {
		return err
	}

	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("triage: failed to enqueue job: %w", err)
	}

	p.logger.Debug("triage job enqueued", "job_id", payload.ID, "kind", kind)
	return nil
}
