package triage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type jobDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGJobStore persists job records to PostgreSQL.
type PGJobStore struct {
	db jobDB
}

// NewPGJobStore builds a Postgres-backed job store.
func NewPGJobStore(db jobDB) *PGJobStore {
	if db == nil {
		panic("triage: pgx pool cannot be nil")
	}
	return &PGJobStore{db: db}
}

var _ JobRecorder = (*PGJobStore)(nil)
var _ JobUpdater = (*PGJobStore)(nil)
var _ JobReader = (*PGJobStore)(nil)

// PutPending inserts a pending job record.
func (s *PGJobStore) PutPending(ctx context.Context, job *JobRecord) error {
	if job == nil {
		return errors.New("triage: job cannot be nil")
	}

	now := time.Now().UTC()
	job.Status = JobStatusPending
	job.CreatedAt = now.Format(time.RFC3339Nano)
	job.UpdatedAt = job.CreatedAt
	if job.ExpiresAt == 0 {
		job.ExpiresAt = now.Add(jobTTL).Unix()
	}

	expiresAt := time.Unix(job.ExpiresAt, 0).UTC()
	if _, execErr := s.db.Exec(ctx, `
		INSERT INTO triage_jobs (
			job_id, status, conversation_id, message, reply,
			error_message, created_at, updated_at, expires_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, job.JobID, job.Status, nullString(job.ConversationID), job.Message, nullString(job.Reply),
		job.ErrorMessage, now, now, expiresAt); execErr != nil {
		return fmt.Errorf("triage: failed to persist job: %w", execErr)
	}
	return nil
}

// MarkCompleted updates the job as completed with the final reply.
func (s *PGJobStore) MarkCompleted(ctx context.Context, jobID, reply, conversationID string) error {
	if jobID == "" {
		return errors.New("triage: jobID required")
	}

	result, execErr := s.db.Exec(ctx, `
		UPDATE triage_jobs
		SET status = $2,
		    reply = $3,
		    conversation_id = $4,
		    error_message = '',
		    updated_at = $5
		WHERE job_id = $1
	`, jobID, JobStatusCompleted, reply, nullString(conversationID), time.Now().UTC())
	if execErr != nil {
		return fmt.Errorf("triage: failed to update job: %w", execErr)
	}
	if result.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

// MarkFailed marks the job as failed with an error message.
func (s *PGJobStore) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	if jobID == "" {
		return errors.New("triage: jobID required")
	}

	result, execErr := s.db.Exec(ctx, `
		UPDATE triage_jobs
		SET status = $2,
		    reply = NULL,
		    error_message = $3,
		    updated_at = $4
		WHERE job_id = $1
	`, jobID, JobStatusFailed, errMsg, time.Now().UTC())
	if execErr != nil {
		return fmt.Errorf("triage: failed to update job: %w", execErr)
	}
	if result.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

// GetJob loads a job by ID.
func (s *PGJobStore) GetJob(ctx context.Context, jobID string) (*JobRecord, error) {
	if jobID == "" {
		return nil, errors.New("triage: jobID required")
	}

	var (
		job       JobRecord
		convoID   pgtype.Text
		reply     pgtype.Text
		createdAt time.Time
		updatedAt time.Time
		expiresAt pgtype.Timestamptz
	)
	err := s.db.QueryRow(ctx, `
		SELECT job_id, status, conversation_id, message, reply,
		       error_message, created_at, updated_at, expires_at
		FROM triage_jobs
		WHERE job_id = $1
	`, jobID).Scan(&job.JobID, &job.Status, &convoID, &job.Message, &reply,
		&job.ErrorMessage, &createdAt, &updatedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("triage: failed to load job: %w", err)
	}

	if convoID.Valid {
		job.ConversationID = convoID.String
	}
	if reply.Valid {
		job.Reply = reply.String
	}
	job.CreatedAt = createdAt.UTC().Format(time.RFC3339Nano)
	job.UpdatedAt = updatedAt.UTC().Format(time.RFC3339Nano)
	if expiresAt.Valid {
		job.ExpiresAt = expiresAt.Time.Unix()
	}
	return &job, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
