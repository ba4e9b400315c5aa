package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"beecok/internal/model"
	"beecok/internal/service"
)

type MockSpaceService struct {
	mock.Mock
}

var _ service.SpaceService = (*MockSpaceService)(nil)

func (m *MockSpaceService) List(ctx context.Context, userID string) (*model.SpaceList, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SpaceList), args.Error(1)
}

func (m *MockSpaceService) Create(ctx context.Context, userID string, in service.SpaceInput) (*model.Space, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Space), args.Error(1)
}

func (m *MockSpaceService) Get(ctx context.Context, userID, id string) (*model.Space, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Space), args.Error(1)
}

func (m *MockSpaceService) Update(ctx context.Context, userID, id string, in service.SpaceUpdate) (*model.Space, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Space), args.Error(1)
}

func (m *MockSpaceService) Delete(ctx context.Context, userID, id string) (*service.SpaceDeletion, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SpaceDeletion), args.Error(1)
}
