package repository

import (
	"context"

	"beecok/internal/model"
)

// SpaceRepository persists spaces. Lookups are always scoped to the owning user.
// Derived fields (DocumentCount, TotalSizeBytes, Documents) are never stored.
type SpaceRepository interface {
	Create(ctx context.Context, s *model.Space) error
	FindByID(ctx context.Context, userID, id string) (*model.Space, error)
	// FindByName returns the user's space called name, ignoring excludeID when it is non-empty.
	FindByName(ctx context.Context, userID, name, excludeID string) (*model.Space, error)
	// ListByUser returns the user's spaces, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Space, error)
	// Update writes name, description, color and updated_at.
	Update(ctx context.Context, s *model.Space) error
	Delete(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}
