package port

import (
	"context"

	"github.com/google/uuid"

	"reviewd/internal/domain"
)

// ReviewJobRepository persists the job registry. Only registration metadata
// and terminal outcomes are stored; in-flight polling state is memory-only
// and rebuilt from the external job ID after a restart.
type ReviewJobRepository interface {
	Create(ctx context.Context, job *domain.ReviewJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewJob, error)
	GetByExternalJobID(ctx context.Context, externalJobID string) (*domain.ReviewJob, error)
	List(ctx context.Context, offset, limit int) ([]domain.ReviewJob, int, error)
	UpdateOutcome(ctx context.Context, job *domain.ReviewJob) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StatusSynonymRepository loads operator-managed status synonym overrides.
type StatusSynonymRepository interface {
	ListAll(ctx context.Context) ([]domain.StatusSynonym, error)
}
