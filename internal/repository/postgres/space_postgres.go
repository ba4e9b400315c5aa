package postgres

import (
	"context"
	"database/sql"

	"beecok/internal/model"
	"beecok/internal/repository"
)

// SpacePostgres is a PostgreSQL implementation of repository.SpaceRepository.
type SpacePostgres struct {
	db *sql.DB
}

func NewSpacePostgres(db *sql.DB) *SpacePostgres {
	return &SpacePostgres{db: db}
}

var _ repository.SpaceRepository = (*SpacePostgres)(nil)

const spaceColumns = `id, user_id, name, description, color, created_at, updated_at`

func scanSpace(row scanner) (*model.Space, error) {
	var s model.Space
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.Color, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

func (r *SpacePostgres) Create(ctx context.Context, s *model.Space) error {
	const q = `
		INSERT INTO spaces (id, user_id, name, description, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.UserID, s.Name, s.Description, s.Color, s.CreatedAt, s.UpdatedAt)
	return mapError(err)
}

func (r *SpacePostgres) FindByID(ctx context.Context, userID, id string) (*model.Space, error) {
	q := `SELECT ` + spaceColumns + ` FROM spaces WHERE id = $1 AND user_id = $2`
	return scanSpace(r.db.QueryRowContext(ctx, q, id, userID))
}

func (r *SpacePostgres) FindByName(ctx context.Context, userID, name, excludeID string) (*model.Space, error) {
	if excludeID == "" {
		q := `SELECT ` + spaceColumns + ` FROM spaces WHERE user_id = $1 AND name = $2`
		return scanSpace(r.db.QueryRowContext(ctx, q, userID, name))
	}
	q := `SELECT ` + spaceColumns + ` FROM spaces WHERE user_id = $1 AND name = $2 AND id <> $3`
	return scanSpace(r.db.QueryRowContext(ctx, q, userID, name, excludeID))
}

func (r *SpacePostgres) ListByUser(ctx context.Context, userID string) ([]model.Space, error) {
	q := `SELECT ` + spaceColumns + ` FROM spaces WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, userID, repository.MaxSpaces)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Space, 0)
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

func (r *SpacePostgres) Update(ctx context.Context, s *model.Space) error {
	const q = `UPDATE spaces SET name = $1, description = $2, color = $3, updated_at = $4 WHERE id = $5`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Description, s.Color, s.UpdatedAt, s.ID)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

func (r *SpacePostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM spaces WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *SpacePostgres) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spaces WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
