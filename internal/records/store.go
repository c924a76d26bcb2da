// Package records persists completed triage results to PostgreSQL and
// answers the follow-up and clinical-review queries built on top of them.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albertosilva007/triagem-platform/internal/triage"
	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

// ErrNotFound is returned when a record lookup matches nothing.
var ErrNotFound = errors.New("records: not found")

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// StoredRecord is a persisted triage record plus its storage identity.
type StoredRecord struct {
	ID string `json:"id"`
	triage.Record
}

// Store is the Postgres-backed record store.
type Store struct {
	db     db
	logger *logging.Logger
}

// NewStore builds a Postgres-backed record store.
func NewStore(db db, logger *logging.Logger) *Store {
	if db == nil {
		panic("records: db cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{db: db, logger: logger}
}

var _ triage.RecordStore = (*Store)(nil)

// Save inserts a completed triage record.
func (s *Store) Save(ctx context.Context, rec *triage.Record) error {
	if rec == nil {
		return errors.New("records: record cannot be nil")
	}

	answersJSON, err := json.Marshal(rec.Answers)
	if err != nil {
		return fmt.Errorf("records: failed to marshal answers: %w", err)
	}
	actionsJSON, err := json.Marshal(rec.Actions)
	if err != nil {
		return fmt.Errorf("records: failed to marshal actions: %w", err)
	}
	recommendationsJSON, err := json.Marshal(rec.Recommendations)
	if err != nil {
		return fmt.Errorf("records: failed to marshal recommendations: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, execErr := s.db.Exec(ctx, `
		INSERT INTO triage_records (
			id, patient_name, national_id, phone,
			answers, tier, total_score, positive_reasons, critical,
			actions, recommendations, follow_up, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, uuid.New().String(), rec.Identity.Name, rec.Identity.NationalID, rec.Identity.Phone,
		answersJSON, rec.Tier.String(), rec.TotalScore, rec.PositiveReasons, rec.CriticalFlag,
		actionsJSON, recommendationsJSON, rec.FollowUp, createdAt); execErr != nil {
		return fmt.Errorf("records: failed to persist record: %w", execErr)
	}

	s.logger.Info("records: triage record persisted",
		"national_id", rec.Identity.NationalID,
		"tier", rec.Tier.String(),
	)
	return nil
}

// FindLatest returns the most recent record summary for a patient, or
// (nil, nil) when the patient has never completed a triage.
func (s *Store) FindLatest(ctx context.Context, nationalID string) (*triage.RecordSummary, error) {
	if nationalID == "" {
		return nil, errors.New("records: nationalID required")
	}

	var (
		summary   triage.RecordSummary
		tierLabel string
	)
	err := s.db.QueryRow(ctx, `
		SELECT total_score, tier, positive_reasons, created_at
		FROM triage_records
		WHERE national_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, nationalID).Scan(&summary.TotalScore, &tierLabel, &summary.PositiveReasons, &summary.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("records: failed to query latest record: %w", err)
	}

	tier, err := triage.ParseTier(tierLabel)
	if err != nil {
		return nil, err
	}
	summary.Tier = tier
	return &summary, nil
}

// ListByNationalID returns a patient's triage history, newest first.
func (s *Store) ListByNationalID(ctx context.Context, nationalID string, limit int) ([]StoredRecord, error) {
	if nationalID == "" {
		return nil, errors.New("records: nationalID required")
	}
	return s.list(ctx, `
		SELECT id, patient_name, national_id, phone,
		       answers, tier, total_score, positive_reasons, critical,
		       actions, recommendations, follow_up, created_at
		FROM triage_records
		WHERE national_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, nationalID, clampLimit(limit))
}

// ListRecent returns the newest records across all patients for the
// clinical review surface.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]StoredRecord, error) {
	return s.list(ctx, `
		SELECT id, patient_name, national_id, phone,
		       answers, tier, total_score, positive_reasons, critical,
		       actions, recommendations, follow_up, created_at
		FROM triage_records
		ORDER BY created_at DESC
		LIMIT $1
	`, clampLimit(limit))
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]StoredRecord, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("records: failed to query records: %w", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records: failed to iterate records: %w", err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (StoredRecord, error) {
	var (
		rec                 StoredRecord
		answersJSON         []byte
		actionsJSON         []byte
		recommendationsJSON []byte
		tierLabel           string
	)
	err := row.Scan(
		&rec.ID, &rec.Identity.Name, &rec.Identity.NationalID, &rec.Identity.Phone,
		&answersJSON, &tierLabel, &rec.TotalScore, &rec.PositiveReasons, &rec.CriticalFlag,
		&actionsJSON, &recommendationsJSON, &rec.FollowUp, &rec.CreatedAt,
	)
	if err != nil {
		return StoredRecord{}, fmt.Errorf("records: failed to scan record: %w", err)
	}

	if err := json.Unmarshal(answersJSON, &rec.Answers); err != nil {
		return StoredRecord{}, fmt.Errorf("records: failed to decode answers: %w", err)
	}
	if err := json.Unmarshal(actionsJSON, &rec.Actions); err != nil {
		return StoredRecord{}, fmt.Errorf("records: failed to decode actions: %w", err)
	}
	if err := json.Unmarshal(recommendationsJSON, &rec.Recommendations); err != nil {
		return StoredRecord{}, fmt.Errorf("records: failed to decode recommendations: %w", err)
	}

	tier, err := triage.ParseTier(tierLabel)
	if err != nil {
		return StoredRecord{}, err
	}
	rec.Tier = tier
	return rec, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 100 {
		return 100
	}
	return limit
}
