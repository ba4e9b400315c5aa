package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"beecok/internal/model"
	"beecok/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
type DocumentPostgres struct {
	db *sql.DB
}

func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, space_id, user_id, original_file_name, file_type, storage_path, size_in_bytes, uploaded_at`

func scanDocument(row scanner) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.SpaceID,
		&d.UserID,
		&d.OriginalFileName,
		&d.FileType,
		&d.StoragePath,
		&d.SizeInBytes,
		&d.UploadedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

func (r *DocumentPostgres) Create(ctx context.Context, d *model.Document) error {
	const q = `
		INSERT INTO documents (id, space_id, user_id, original_file_name, file_type, storage_path, size_in_bytes, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, q,
		d.ID,
		d.SpaceID,
		d.UserID,
		d.OriginalFileName,
		d.FileType,
		d.StoragePath,
		d.SizeInBytes,
		d.UploadedAt,
	)
	return mapError(err)
}

func (r *DocumentPostgres) FindByID(ctx context.Context, spaceID, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND space_id = $2`
	return scanDocument(r.db.QueryRowContext(ctx, q, id, spaceID))
}

func (r *DocumentPostgres) FindByName(ctx context.Context, spaceIDs []string, filename string) (*model.Document, error) {
	if len(spaceIDs) == 0 {
		return nil, repository.ErrNotFound
	}
	args := make([]any, 0, len(spaceIDs)+1)
	args = append(args, filename)
	marks := make([]string, len(spaceIDs))
	for i, id := range spaceIDs {
		args = append(args, id)
		marks[i] = fmt.Sprintf("$%d", i+2)
	}
	q := `SELECT ` + documentColumns + ` FROM documents WHERE original_file_name = $1 AND space_id IN (` +
		strings.Join(marks, ", ") + `) ORDER BY uploaded_at DESC LIMIT 1`
	return scanDocument(r.db.QueryRowContext(ctx, q, args...))
}

func (r *DocumentPostgres) ListBySpace(ctx context.Context, spaceID string) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE space_id = $1 ORDER BY uploaded_at DESC, id DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, spaceID, repository.MaxDocuments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *DocumentPostgres) DeleteBySpace(ctx context.Context, spaceID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE space_id = $1`, spaceID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *DocumentPostgres) SpaceTotals(ctx context.Context, spaceID string) (repository.Totals, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(size_in_bytes), 0) FROM documents WHERE space_id = $1`
	var t repository.Totals
	err := r.db.QueryRowContext(ctx, q, spaceID).Scan(&t.Count, &t.SizeBytes)
	return t, err
}

func (r *DocumentPostgres) UserTotals(ctx context.Context, userID string) (repository.Totals, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(size_in_bytes), 0) FROM documents WHERE user_id = $1`
	var t repository.Totals
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&t.Count, &t.SizeBytes)
	return t, err
}
