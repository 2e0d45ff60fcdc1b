package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"reviewd/internal/domain"
	"reviewd/internal/port"
)

type statusSynonymRepo struct {
	db *sqlx.DB
}

// NewStatusSynonymRepo creates a new PostgreSQL-backed StatusSynonymRepository.
func NewStatusSynonymRepo(db *sqlx.DB) port.StatusSynonymRepository {
	return &statusSynonymRepo{db: db}
}

func (r *statusSynonymRepo) ListAll(ctx context.Context) ([]domain.StatusSynonym, error) {
	var synonyms []domain.StatusSynonym
	err := r.db.SelectContext(ctx, &synonyms,
		"SELECT raw, status FROM status_synonyms ORDER BY raw")
	if err != nil {
		return nil, fmt.Errorf("statusSynonymRepo.ListAll: %w", err)
	}
	return synonyms, nil
}
