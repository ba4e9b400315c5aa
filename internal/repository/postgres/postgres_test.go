package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"beecok/internal/model"
	"beecok/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(sql.ErrNoRows), repository.ErrNotFound)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23505"}), repository.ErrConflict)

	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))
	assert.NotErrorIs(t, mapError(&pgconn.PgError{Code: "23503"}), repository.ErrConflict)
}

func TestUserPostgres(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("create conflict", func(t *testing.T) {
		u := &model.User{ID: "u1", Username: "ann", Email: "ann@example.com", PasswordHash: "h", CreatedAt: now, UpdatedAt: now}
		mock.ExpectExec("INSERT INTO users").
			WithArgs(u.ID, u.Username, u.Email, u.PasswordHash, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, u)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("find by email", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at"}).
			AddRow("u1", "ann", "ann@example.com", "h", now, now)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
			WithArgs("ann@example.com").
			WillReturnRows(rows)

		u, err := repo.FindByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, "ann", u.Username)
		assert.Equal(t, "h", u.PasswordHash)
	})

	t.Run("find by username not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
			WithArgs("nobody").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, u)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpacePostgres(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSpacePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()
	cols := []string{"id", "user_id", "name", "description", "color", "created_at", "updated_at"}

	t.Run("find by name with exclusion", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM spaces WHERE user_id = (.+) AND name = (.+) AND id <>").
			WithArgs("u1", "Research", "s1").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByName(ctx, "u1", "Research", "s1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("list by user", func(t *testing.T) {
		rows := sqlmock.NewRows(cols).
			AddRow("s2", "u1", "New", "", "", now, now).
			AddRow("s1", "u1", "Old", "d", "#fff", now.Add(-time.Hour), now)
		mock.ExpectQuery("SELECT (.+) FROM spaces WHERE user_id = (.+) ORDER BY created_at DESC").
			WithArgs("u1", repository.MaxSpaces).
			WillReturnRows(rows)

		items, err := repo.ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "New", items[0].Name)
		assert.Equal(t, "#fff", items[1].Color)
	})

	t.Run("update missing", func(t *testing.T) {
		mock.ExpectExec("UPDATE spaces SET").
			WithArgs("n", "d", "", sqlmock.AnyArg(), "gone").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, &model.Space{ID: "gone", Name: "n", Description: "d", UpdatedAt: now})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("count", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM spaces").
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		n, err := repo.CountByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()
	cols := []string{"id", "space_id", "user_id", "original_file_name", "file_type", "storage_path", "size_in_bytes", "uploaded_at"}

	t.Run("create", func(t *testing.T) {
		d := &model.Document{
			ID:               "d1",
			SpaceID:          "s1",
			UserID:           "u1",
			OriginalFileName: "report.pdf",
			FileType:         "pdf",
			StoragePath:      "uploads/u1/s1/x.pdf",
			SizeInBytes:      2048,
			UploadedAt:       now,
		}
		mock.ExpectExec("INSERT INTO documents").
			WithArgs(d.ID, d.SpaceID, d.UserID, d.OriginalFileName, d.FileType, d.StoragePath, d.SizeInBytes, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, d))
	})

	t.Run("find by id scoped to space", func(t *testing.T) {
		rows := sqlmock.NewRows(cols).AddRow("d1", "s1", "u1", "report.pdf", "pdf", "p", 2048, now)
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = (.+) AND space_id").
			WithArgs("d1", "s1").
			WillReturnRows(rows)

		d, err := repo.FindByID(ctx, "s1", "d1")
		require.NoError(t, err)
		assert.Equal(t, int64(2048), d.SizeInBytes)
	})

	t.Run("find by name across spaces", func(t *testing.T) {
		rows := sqlmock.NewRows(cols).AddRow("d1", "s2", "u1", "report.pdf", "pdf", "p", 10, now)
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE original_file_name = (.+) AND space_id IN").
			WithArgs("report.pdf", "s1", "s2").
			WillReturnRows(rows)

		d, err := repo.FindByName(ctx, []string{"s1", "s2"}, "report.pdf")
		require.NoError(t, err)
		assert.Equal(t, "s2", d.SpaceID)
	})

	t.Run("find by name without spaces", func(t *testing.T) {
		_, err := repo.FindByName(ctx, nil, "report.pdf")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("delete by space", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM documents WHERE space_id").
			WithArgs("s1").
			WillReturnResult(sqlmock.NewResult(0, 4))

		n, err := repo.DeleteBySpace(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("totals", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\), COALESCE\\(SUM\\(size_in_bytes\\), 0\\) FROM documents WHERE user_id").
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(2, 3072))

		tot, err := repo.UserTotals(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, repository.Totals{Count: 2, SizeBytes: 3072}, tot)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatAndMessagePostgres(t *testing.T) {
	db, mock := newMock(t)
	chats := NewChatPostgres(db)
	messages := NewMessagePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE chats SET updated_at").
		WithArgs(sqlmock.AnyArg(), "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, chats.Touch(ctx, "c1", now))

	mock.ExpectQuery("SELECT (.+) FROM chats WHERE id = (.+) AND user_id").
		WithArgs("c1", "u2").
		WillReturnError(sql.ErrNoRows)
	_, err := chats.FindByID(ctx, "u2", "c1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	rows := sqlmock.NewRows([]string{"id", "chat_id", "sender", "content", "timestamp"}).
		AddRow("m1", "c1", model.SenderUser, "hello", now).
		AddRow("m2", "c1", model.SenderAssistant, "hi", now.Add(time.Second))
	mock.ExpectQuery("SELECT (.+) FROM messages WHERE chat_id").
		WithArgs("c1", repository.MaxMessages).
		WillReturnRows(rows)

	msgs, err := messages.ListByChat(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.SenderUser, msgs[0].Sender)
	assert.Equal(t, "hi", msgs[1].Content)

	assert.NoError(t, mock.ExpectationsWereMet())
}
