package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"beecok/internal/model"
	"beecok/internal/service"
)

type MockSearchService struct {
	mock.Mock
}

var _ service.SearchService = (*MockSearchService)(nil)

func (m *MockSearchService) Search(ctx context.Context, userID string, p service.SearchParams) (*model.SearchResult, error) {
	args := m.Called(ctx, userID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchResult), args.Error(1)
}
