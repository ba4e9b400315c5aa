package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"beecok/internal/model"
	"beecok/internal/repository"
	repoMocks "beecok/internal/repository/mocks"
	"beecok/internal/vectorindex"
)

func TestHasSearchIntent(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"What is the tide?", true},
		{"please FIND it", true},
		{"Somewhere over there", true},
		{"hello there", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hasSearchIntent(tt.in), tt.in)
	}
}

func TestChatService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	idx := &fakeIndex{}
	e := newEnv(t, idx)

	chat, err := e.chats.Create(ctx, e.userID, "  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultChatTitle, chat.Title)

	_, err = e.chats.Messages(ctx, e.otherID, chat.ID)
	assert.ErrorIs(t, err, ErrChatNotFound)
	_, err = e.chats.Send(ctx, e.otherID, chat.ID, "hi")
	assert.ErrorIs(t, err, ErrChatNotFound)
	_, err = e.chats.Send(ctx, e.userID, chat.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	ex, err := e.chats.Send(ctx, e.userID, chat.ID, "hello there")
	require.NoError(t, err)
	assert.Equal(t, placeholderReply, ex.AIMessage.Content)
	assert.Equal(t, model.SenderUser, ex.UserMessage.Sender)
	assert.Equal(t, model.SenderAssistant, ex.AIMessage.Sender)

	ex, err = e.chats.Send(ctx, e.userID, chat.ID, "what causes tides?")
	require.NoError(t, err)
	assert.Equal(t, noDocumentsReply, ex.AIMessage.Content)
	assert.Empty(t, idx.queries)

	_, err = e.spaces.Create(ctx, e.userID, SpaceInput{Name: "Science"})
	require.NoError(t, err)
	idx.matches = []vectorindex.Match{match("1", "moon.pdf", 0, 0.9, "the moon")}
	ex, err = e.chats.Send(ctx, e.userID, chat.ID, "Where do tides come from?")
	require.NoError(t, err)
	assert.Equal(t, "generated answer", ex.AIMessage.Content)
	require.Len(t, idx.queries, 1)
	assert.Equal(t, 10, idx.queries[0].TopK)

	idx.queryErr = errors.New("index down")
	ex, err = e.chats.Send(ctx, e.userID, chat.ID, "how now?")
	require.NoError(t, err)
	assert.Contains(t, ex.AIMessage.Content, "I encountered an error while searching: ")
	assert.Contains(t, ex.AIMessage.Content, "index down")

	msgs, err := e.chats.Messages(ctx, e.userID, chat.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 8)
	assert.Equal(t, "hello there", msgs[0].Content)
	assert.Equal(t, model.SenderAssistant, msgs[7].Sender)

	chats, err := e.chats.List(ctx, e.userID)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, chat.ID, chats[0].ID)
}

func TestChatService_RepositoryFailures(t *testing.T) {
	ctx := context.Background()
	chat := &model.Chat{ID: "c1", UserID: "u1", Title: DefaultChatTitle}

	t.Run("list error is wrapped", func(t *testing.T) {
		chats := new(repoMocks.MockChatRepository)
		chats.On("ListByUser", ctx, "u1").Return(nil, errors.New("db down"))
		svc := NewChatService(chats, new(repoMocks.MockMessageRepository), nil, nil, nil)

		_, err := svc.List(ctx, "u1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
		chats.AssertExpectations(t)
	})

	t.Run("missing chat", func(t *testing.T) {
		chats := new(repoMocks.MockChatRepository)
		messages := new(repoMocks.MockMessageRepository)
		chats.On("FindByID", ctx, "u1", "nope").Return(nil, repository.ErrNotFound)
		svc := NewChatService(chats, messages, nil, nil, nil)

		_, err := svc.Messages(ctx, "u1", "nope")
		assert.ErrorIs(t, err, ErrChatNotFound)
		messages.AssertNotCalled(t, "ListByChat", mock.Anything, mock.Anything)
	})

	t.Run("assistant message not stored", func(t *testing.T) {
		chats := new(repoMocks.MockChatRepository)
		messages := new(repoMocks.MockMessageRepository)
		chats.On("FindByID", ctx, "u1", "c1").Return(chat, nil)
		messages.On("Create", ctx, mock.MatchedBy(func(m *model.Message) bool {
			return m.Sender == model.SenderUser
		})).Return(nil).Once()
		messages.On("Create", ctx, mock.MatchedBy(func(m *model.Message) bool {
			return m.Sender == model.SenderAssistant
		})).Return(errors.New("write failed")).Once()
		svc := NewChatService(chats, messages, nil, nil, nil)

		_, err := svc.Send(ctx, "u1", "c1", "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store assistant message")
		chats.AssertNotCalled(t, "Touch", mock.Anything, mock.Anything, mock.Anything)
		messages.AssertExpectations(t)
	})

	t.Run("touch failure does not fail the exchange", func(t *testing.T) {
		chats := new(repoMocks.MockChatRepository)
		messages := new(repoMocks.MockMessageRepository)
		chats.On("FindByID", ctx, "u1", "c1").Return(chat, nil)
		chats.On("Touch", ctx, "c1", mock.AnythingOfType("time.Time")).Return(errors.New("stale"))
		messages.On("Create", ctx, mock.AnythingOfType("*model.Message")).Return(nil).Twice()
		svc := NewChatService(chats, messages, nil, nil, nil)

		ex, err := svc.Send(ctx, "u1", "c1", "hello")
		require.NoError(t, err)
		assert.Equal(t, placeholderReply, ex.AIMessage.Content)
		chats.AssertExpectations(t)
		messages.AssertExpectations(t)
	})
}
