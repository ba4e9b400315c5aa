// Package postgres implements the repository interfaces on PostgreSQL through database/sql.
// Queries are parameterized and carry no business logic.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"beecok/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// NewStore returns the PostgreSQL repositories sharing db.
func NewStore(db *sql.DB) repository.Store {
	return repository.Store{
		Users:     NewUserPostgres(db),
		Spaces:    NewSpacePostgres(db),
		Documents: NewDocumentPostgres(db),
		Chats:     NewChatPostgres(db),
		Messages:  NewMessagePostgres(db),
		Health:    pinger{db: db},
	}
}

type pinger struct {
	db *sql.DB
}

func (p pinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Join(repository.ErrConflict, err)
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}
