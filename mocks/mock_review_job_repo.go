package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"reviewd/internal/domain"
)

// MockReviewJobRepo is a mock implementation of port.ReviewJobRepository.
type MockReviewJobRepo struct {
	mock.Mock
}

func (m *MockReviewJobRepo) Create(ctx context.Context, job *domain.ReviewJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockReviewJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewJob), args.Error(1)
}

func (m *MockReviewJobRepo) GetByExternalJobID(ctx context.Context, externalJobID string) (*domain.ReviewJob, error) {
	args := m.Called(ctx, externalJobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewJob), args.Error(1)
}

func (m *MockReviewJobRepo) List(ctx context.Context, offset, limit int) ([]domain.ReviewJob, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReviewJob), args.Int(1), args.Error(2)
}

func (m *MockReviewJobRepo) UpdateOutcome(ctx context.Context, job *domain.ReviewJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockReviewJobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
