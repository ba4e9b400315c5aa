package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"beecok/internal/model"
	"beecok/internal/service"
)

type MockChatService struct {
	mock.Mock
}

var _ service.ChatService = (*MockChatService)(nil)

func (m *MockChatService) List(ctx context.Context, userID string) ([]model.Chat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Chat), args.Error(1)
}

func (m *MockChatService) Create(ctx context.Context, userID, title string) (*model.Chat, error) {
	args := m.Called(ctx, userID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Chat), args.Error(1)
}

func (m *MockChatService) Messages(ctx context.Context, userID, chatID string) ([]model.Message, error) {
	args := m.Called(ctx, userID, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}

func (m *MockChatService) Send(ctx context.Context, userID, chatID, content string) (*model.Exchange, error) {
	args := m.Called(ctx, userID, chatID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Exchange), args.Error(1)
}
