package triage

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned when a job id has no stored record.
var ErrJobNotFound = errors.New("triage: job not found")

// JobStatus tracks the lifecycle of an asynchronous triage job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// jobTTL bounds how long finished job records stay queryable.
const jobTTL = 24 * time.Hour

// JobRecord mirrors one row of the triage_jobs table.
type JobRecord struct {
	JobID          string    `json:"job_id"`
	Status         JobStatus `json:"status"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Message        string    `json:"message,omitempty"`
	Reply          string    `json:"reply,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      string    `json:"created_at"`
	UpdatedAt      string    `json:"updated_at"`
	ExpiresAt      int64     `json:"expires_at,omitempty"`
}

// JobRecorder persists new pending jobs.
type JobRecorder interface {
	PutPending(ctx context.Context, job *JobRecord) error
}

// JobUpdater transitions job records to terminal states.
type JobUpdater interface {
	MarkCompleted(ctx context.Context, jobID, reply, conversationID string) error
	MarkFailed(ctx context.Context, jobID string, errMsg string) error
}

// JobReader loads job records for status polling.
type JobReader interface {
	GetJob(ctx context.Context, jobID string) (*JobRecord, error)
}
