package repository

import (
	"context"
	"time"

	"beecok/internal/model"
)

type ChatRepository interface {
	Create(ctx context.Context, c *model.Chat) error
	FindByID(ctx context.Context, userID, id string) (*model.Chat, error)
	// ListByUser returns the user's chats, most recently active first.
	ListByUser(ctx context.Context, userID string) ([]model.Chat, error)
	Touch(ctx context.Context, id string, at time.Time) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	// ListByChat returns messages in chronological order.
	ListByChat(ctx context.Context, chatID string) ([]model.Message, error)
}
