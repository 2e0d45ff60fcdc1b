package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"reviewd/internal/domain"
	"reviewd/internal/port"
)

// MockReviewBackend is a mock implementation of port.ReviewBackend.
type MockReviewBackend struct {
	mock.Mock
}

func (m *MockReviewBackend) Status(ctx context.Context, jobID string) (*port.JobStatus, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.JobStatus), args.Error(1)
}

func (m *MockReviewBackend) Result(ctx context.Context, jobID string) (json.RawMessage, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockReviewBackend) ReportURL(jobID string, format domain.ReportFormat) string {
	args := m.Called(jobID, format)
	return args.String(0)
}

func (m *MockReviewBackend) FetchReport(ctx context.Context, jobID string, format domain.ReportFormat) (*port.ReportStream, error) {
	args := m.Called(ctx, jobID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ReportStream), args.Error(1)
}
