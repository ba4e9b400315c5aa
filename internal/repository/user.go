package repository

import (
	"context"

	"beecok/internal/model"
)

// UserRepository persists accounts. Email and username are unique; Create returns
// ErrConflict when either is taken.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}
