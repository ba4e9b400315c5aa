package mocks

import (
	"context"

	"beecok/internal/model"
	"beecok/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *model.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, spaceID, id string) (*model.Document, error) {
	args := m.Called(ctx, spaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByName(ctx context.Context, spaceIDs []string, filename string) (*model.Document, error) {
	args := m.Called(ctx, spaceIDs, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListBySpace(ctx context.Context, spaceID string) ([]model.Document, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) DeleteBySpace(ctx context.Context, spaceID string) (int64, error) {
	args := m.Called(ctx, spaceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) SpaceTotals(ctx context.Context, spaceID string) (repository.Totals, error) {
	args := m.Called(ctx, spaceID)
	return args.Get(0).(repository.Totals), args.Error(1)
}

func (m *MockDocumentRepository) UserTotals(ctx context.Context, userID string) (repository.Totals, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(repository.Totals), args.Error(1)
}
