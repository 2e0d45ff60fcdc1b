package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"reviewd/internal/domain"
	"reviewd/internal/service"
)

// MockReviewService is a mock implementation of service.ReviewService.
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Register(ctx context.Context, input *service.RegisterReviewInput) (*domain.ReviewJob, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewJob), args.Error(1)
}

func (m *MockReviewService) Get(ctx context.Context, id uuid.UUID) (*service.ReviewSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReviewSnapshot), args.Error(1)
}

func (m *MockReviewService) List(ctx context.Context, offset, limit int) ([]domain.ReviewJob, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReviewJob), args.Int(1), args.Error(2)
}

func (m *MockReviewService) Retry(ctx context.Context, id uuid.UUID) (*domain.ReviewJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewJob), args.Error(1)
}

func (m *MockReviewService) Teardown(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewService) ActivePolls() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockReviewService) Shutdown() {
	m.Called()
}
