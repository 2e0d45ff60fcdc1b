package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"reviewd/internal/domain"
	"reviewd/internal/port"
)

type reviewJobRepo struct {
	db *sqlx.DB
}

// NewReviewJobRepo creates a new PostgreSQL-backed ReviewJobRepository.
func NewReviewJobRepo(db *sqlx.DB) port.ReviewJobRepository {
	return &reviewJobRepo{db: db}
}

func (r *reviewJobRepo) Create(ctx context.Context, job *domain.ReviewJob) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	query := `INSERT INTO review_jobs
		(id, external_job_id, name, state, overall_status, progress, summary,
		 issue_count, failure_reason, result, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.ExternalJobID, job.Name, job.State, job.OverallStatus,
		job.Progress, job.Summary, job.IssueCount, job.FailureReason,
		job.Result, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateJob
		}
		return fmt.Errorf("reviewJobRepo.Create: %w", err)
	}
	return nil
}

func (r *reviewJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewJob, error) {
	var job domain.ReviewJob
	err := r.db.GetContext(ctx, &job, "SELECT * FROM review_jobs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reviewJobRepo.GetByID: %w", err)
	}
	return &job, nil
}

func (r *reviewJobRepo) GetByExternalJobID(ctx context.Context, externalJobID string) (*domain.ReviewJob, error) {
	var job domain.ReviewJob
	err := r.db.GetContext(ctx, &job,
		"SELECT * FROM review_jobs WHERE external_job_id = $1", externalJobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reviewJobRepo.GetByExternalJobID: %w", err)
	}
	return &job, nil
}

func (r *reviewJobRepo) List(ctx context.Context, offset, limit int) ([]domain.ReviewJob, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM review_jobs")
	if err != nil {
		return nil, 0, fmt.Errorf("reviewJobRepo.List count: %w", err)
	}

	var jobs []domain.ReviewJob
	err = r.db.SelectContext(ctx, &jobs,
		"SELECT * FROM review_jobs ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("reviewJobRepo.List: %w", err)
	}
	return jobs, total, nil
}

func (r *reviewJobRepo) UpdateOutcome(ctx context.Context, job *domain.ReviewJob) error {
	job.UpdatedAt = time.Now().UTC()

	query := `UPDATE review_jobs SET
		state = $1, overall_status = $2, progress = $3, summary = $4,
		issue_count = $5, failure_reason = $6, result = $7, updated_at = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		job.State, job.OverallStatus, job.Progress, job.Summary,
		job.IssueCount, job.FailureReason, job.Result, job.UpdatedAt, job.ID)
	if err != nil {
		return fmt.Errorf("reviewJobRepo.UpdateOutcome: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reviewJobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM review_jobs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("reviewJobRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	var pgErr sqlState
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}
