package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"beecok/internal/model"
	"beecok/internal/service"
)

type MockSystemService struct {
	mock.Mock
}

var _ service.SystemService = (*MockSystemService)(nil)

func (m *MockSystemService) Health(ctx context.Context) *model.HealthReport {
	args := m.Called(ctx)
	return args.Get(0).(*model.HealthReport)
}

func (m *MockSystemService) Stats(ctx context.Context, userID string) (*model.StatsReport, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StatsReport), args.Error(1)
}
