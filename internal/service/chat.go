package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"beecok/internal/model"
	"beecok/internal/repository"
)

const (
	DefaultChatTitle = "New Chat"

	placeholderReply = "I received your message. This is a placeholder response."
	noDocumentsReply = "You don't have any documents uploaded yet. Please upload some documents to your spaces first."
	chatSearchLimit  = 5
)

// searchIntent lists the words that route a chat message to document search.
var searchIntent = []string{"search", "find", "what", "how", "when", "where"}

// ChatService stores conversations and answers messages that ask about documents.
type ChatService interface {
	List(ctx context.Context, userID string) ([]model.Chat, error)
	Create(ctx context.Context, userID, title string) (*model.Chat, error)
	Messages(ctx context.Context, userID, chatID string) ([]model.Message, error)
	// Send stores the user's message, produces and stores the assistant's reply.
	Send(ctx context.Context, userID, chatID, content string) (*model.Exchange, error)
}

type chatService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	spaces   repository.SpaceRepository
	search   SearchService
	log      *zap.Logger
	now      func() time.Time
}

func NewChatService(
	chats repository.ChatRepository,
	messages repository.MessageRepository,
	spaces repository.SpaceRepository,
	search SearchService,
	log *zap.Logger,
) ChatService {
	if log == nil {
		log = zap.NewNop()
	}
	return &chatService{chats: chats, messages: messages, spaces: spaces, search: search, log: log, now: time.Now}
}

func (s *chatService) List(ctx context.Context, userID string) ([]model.Chat, error) {
	chats, err := s.chats.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func (s *chatService) Create(ctx context.Context, userID, title string) (*model.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultChatTitle
	}
	now := s.now().UTC()
	c := &model.Chat{ID: uuid.NewString(), UserID: userID, Title: title, CreatedAt: now, UpdatedAt: now}
	if err := s.chats.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return c, nil
}

func (s *chatService) find(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	c, err := s.chats.FindByID(ctx, userID, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return c, nil
}

func (s *chatService) Messages(ctx context.Context, userID, chatID string) ([]model.Message, error) {
	if _, err := s.find(ctx, userID, chatID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func (s *chatService) Send(ctx context.Context, userID, chatID, content string) (*model.Exchange, error) {
	if strings.TrimSpace(content) == "" {
		return nil, detailed(ErrInvalidInput, "message content is required")
	}
	c, err := s.find(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	userMsg := model.Message{
		ID:        uuid.NewString(),
		ChatID:    c.ID,
		Sender:    model.SenderUser,
		Content:   content,
		Timestamp: s.now().UTC(),
	}
	if err := s.messages.Create(ctx, &userMsg); err != nil {
		return nil, fmt.Errorf("store user message: %w", err)
	}

	aiMsg := model.Message{
		ID:      uuid.NewString(),
		ChatID:  c.ID,
		Sender:  model.SenderAssistant,
		Content: s.reply(ctx, userID, content),
	}
	aiMsg.Timestamp = s.now().UTC()
	if err := s.messages.Create(ctx, &aiMsg); err != nil {
		return nil, fmt.Errorf("store assistant message: %w", err)
	}

	if err := s.chats.Touch(ctx, c.ID, s.now().UTC()); err != nil {
		s.log.Warn("touch chat failed", zap.String("chat_id", c.ID), zap.Error(err))
	}
	return &model.Exchange{UserMessage: userMsg, AIMessage: aiMsg}, nil
}

func hasSearchIntent(content string) bool {
	lower := strings.ToLower(content)
	for _, kw := range searchIntent {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (s *chatService) reply(ctx context.Context, userID, content string) string {
	if !hasSearchIntent(content) {
		return placeholderReply
	}
	spaces, err := s.spaces.ListByUser(ctx, userID)
	if err != nil {
		return "I encountered an error while searching: " + err.Error()
	}
	if len(spaces) == 0 {
		return noDocumentsReply
	}
	ids := make([]string, len(spaces))
	for i, sp := range spaces {
		ids[i] = sp.ID
	}
	res, err := s.search.Search(ctx, userID, SearchParams{Query: content, SpaceIDs: ids, MaxResults: chatSearchLimit})
	if err != nil {
		return "I encountered an error while searching: " + err.Error()
	}
	return res.Answer
}
