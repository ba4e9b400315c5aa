package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"beecok/internal/model"
	"beecok/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) Upload(ctx context.Context, userID string, in service.UploadInput) (*model.UploadReceipt, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadReceipt), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, userID, spaceID, id string) (*model.Document, error) {
	args := m.Called(ctx, userID, spaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}
