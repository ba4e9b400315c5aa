package postgres

import (
	"context"
	"database/sql"
	"time"

	"beecok/internal/model"
	"beecok/internal/repository"
)

// ChatPostgres is a PostgreSQL implementation of repository.ChatRepository.
type ChatPostgres struct {
	db *sql.DB
}

func NewChatPostgres(db *sql.DB) *ChatPostgres {
	return &ChatPostgres{db: db}
}

var _ repository.ChatRepository = (*ChatPostgres)(nil)

const chatColumns = `id, user_id, title, created_at, updated_at`

func scanChat(row scanner) (*model.Chat, error) {
	var c model.Chat
	if err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *ChatPostgres) Create(ctx context.Context, c *model.Chat) error {
	const q = `INSERT INTO chats (id, user_id, title, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.UserID, c.Title, c.CreatedAt, c.UpdatedAt)
	return mapError(err)
}

func (r *ChatPostgres) FindByID(ctx context.Context, userID, id string) (*model.Chat, error) {
	q := `SELECT ` + chatColumns + ` FROM chats WHERE id = $1 AND user_id = $2`
	return scanChat(r.db.QueryRowContext(ctx, q, id, userID))
}

func (r *ChatPostgres) ListByUser(ctx context.Context, userID string) ([]model.Chat, error) {
	q := `SELECT ` + chatColumns + ` FROM chats WHERE user_id = $1 ORDER BY updated_at DESC, id DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, userID, repository.MaxChats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Chat, 0)
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (r *ChatPostgres) Touch(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE chats SET updated_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *ChatPostgres) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chats WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// MessagePostgres is a PostgreSQL implementation of repository.MessageRepository.
type MessagePostgres struct {
	db *sql.DB
}

func NewMessagePostgres(db *sql.DB) *MessagePostgres {
	return &MessagePostgres{db: db}
}

var _ repository.MessageRepository = (*MessagePostgres)(nil)

func (r *MessagePostgres) Create(ctx context.Context, m *model.Message) error {
	const q = `INSERT INTO messages (id, chat_id, sender, content, timestamp) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, m.ID, m.ChatID, m.Sender, m.Content, m.Timestamp)
	return mapError(err)
}

func (r *MessagePostgres) ListByChat(ctx context.Context, chatID string) ([]model.Message, error) {
	const q = `
		SELECT id, chat_id, sender, content, timestamp
		FROM messages
		WHERE chat_id = $1
		ORDER BY timestamp ASC, id ASC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, chatID, repository.MaxMessages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Message, 0)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Sender, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
