package repository

import (
	"context"

	"beecok/internal/model"
)

// DocumentRepository persists document metadata. File contents live in storage and
// chunk vectors in the vector index.
type DocumentRepository interface {
	Create(ctx context.Context, d *model.Document) error
	// FindByID returns the document only if it belongs to spaceID.
	FindByID(ctx context.Context, spaceID, id string) (*model.Document, error)
	// FindByName returns a document called filename in any of spaceIDs.
	FindByName(ctx context.Context, spaceIDs []string, filename string) (*model.Document, error)
	// ListBySpace returns the space's documents, newest first.
	ListBySpace(ctx context.Context, spaceID string) ([]model.Document, error)
	Delete(ctx context.Context, id string) error
	DeleteBySpace(ctx context.Context, spaceID string) (int64, error)
	SpaceTotals(ctx context.Context, spaceID string) (Totals, error)
	UserTotals(ctx context.Context, userID string) (Totals, error)
}
