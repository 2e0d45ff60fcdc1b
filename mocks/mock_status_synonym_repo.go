package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reviewd/internal/domain"
)

// MockStatusSynonymRepo is a mock implementation of port.StatusSynonymRepository.
type MockStatusSynonymRepo struct {
	mock.Mock
}

func (m *MockStatusSynonymRepo) ListAll(ctx context.Context) ([]domain.StatusSynonym, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusSynonym), args.Error(1)
}
