package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"beecok/internal/model"
	"beecok/internal/repository"
	"beecok/internal/storage"
)

const maxSpaceName = 100

// SpaceInput is the body of POST /spaces.
type SpaceInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// SpaceUpdate is the body of PUT /spaces/:id. Nil fields are left unchanged.
type SpaceUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// SpaceDeletion reports the result of a cascading space delete.
type SpaceDeletion struct {
	Name             string `json:"-"`
	DocumentsDeleted int    `json:"documents_deleted"`
}

// SpaceService manages a user's spaces. Every operation is scoped to the owner.
type SpaceService interface {
	List(ctx context.Context, userID string) (*model.SpaceList, error)
	Create(ctx context.Context, userID string, in SpaceInput) (*model.Space, error)
	// Get returns the space with its documents, newest first.
	Get(ctx context.Context, userID, id string) (*model.Space, error)
	Update(ctx context.Context, userID, id string, in SpaceUpdate) (*model.Space, error)
	// Delete removes the space together with its documents, their stored files and
	// their vectors.
	Delete(ctx context.Context, userID, id string) (*SpaceDeletion, error)
}

type spaceService struct {
	spaces    repository.SpaceRepository
	documents repository.DocumentRepository
	store     storage.Storage
	indexer   *Indexer
	log       *zap.Logger
	now       func() time.Time
}

func NewSpaceService(
	spaces repository.SpaceRepository,
	documents repository.DocumentRepository,
	store storage.Storage,
	indexer *Indexer,
	log *zap.Logger,
) SpaceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &spaceService{spaces: spaces, documents: documents, store: store, indexer: indexer, log: log, now: time.Now}
}

func validateSpaceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxSpaceName {
		return "", detailed(ErrInvalidInput, "space name must be between 1 and %d characters", maxSpaceName)
	}
	return name, nil
}

func (s *spaceService) withTotals(ctx context.Context, sp *model.Space) error {
	t, err := s.documents.SpaceTotals(ctx, sp.ID)
	if err != nil {
		return fmt.Errorf("space totals: %w", err)
	}
	sp.DocumentCount = t.Count
	sp.TotalSizeBytes = t.SizeBytes
	return nil
}

func (s *spaceService) List(ctx context.Context, userID string) (*model.SpaceList, error) {
	spaces, err := s.spaces.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	for i := range spaces {
		if err := s.withTotals(ctx, &spaces[i]); err != nil {
			return nil, err
		}
	}
	return &model.SpaceList{Spaces: spaces, TotalSpaces: len(spaces)}, nil
}

func (s *spaceService) find(ctx context.Context, userID, id string) (*model.Space, error) {
	sp, err := s.spaces.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSpaceNotFound
		}
		return nil, fmt.Errorf("find space: %w", err)
	}
	return sp, nil
}

// checkName returns ErrDuplicateName when the user already has another space called name.
func (s *spaceService) checkName(ctx context.Context, userID, name, excludeID string) error {
	_, err := s.spaces.FindByName(ctx, userID, name, excludeID)
	switch {
	case err == nil:
		return detailed(ErrDuplicateName, "Space with name '%s' already exists", name)
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("find space by name: %w", err)
	}
}

func (s *spaceService) Create(ctx context.Context, userID string, in SpaceInput) (*model.Space, error) {
	name, err := validateSpaceName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, userID, name, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sp := &model.Space{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       strings.TrimSpace(in.Color),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.spaces.Create(ctx, sp); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, detailed(ErrDuplicateName, "Space with name '%s' already exists", name)
		}
		return nil, fmt.Errorf("create space: %w", err)
	}
	return sp, nil
}

func (s *spaceService) Get(ctx context.Context, userID, id string) (*model.Space, error) {
	sp, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListBySpace(ctx, sp.ID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	sp.Documents = docs
	sp.DocumentCount = int64(len(docs))
	sp.TotalSizeBytes = 0
	for _, d := range docs {
		sp.TotalSizeBytes += d.SizeInBytes
	}
	return sp, nil
}

func (s *spaceService) Update(ctx context.Context, userID, id string, in SpaceUpdate) (*model.Space, error) {
	sp, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name, err := validateSpaceName(*in.Name)
		if err != nil {
			return nil, err
		}
		if name != sp.Name {
			if err := s.checkName(ctx, userID, name, sp.ID); err != nil {
				return nil, err
			}
		}
		sp.Name = name
	}
	if in.Description != nil {
		sp.Description = strings.TrimSpace(*in.Description)
	}
	if in.Color != nil {
		sp.Color = strings.TrimSpace(*in.Color)
	}
	sp.UpdatedAt = s.now().UTC()

	if err := s.spaces.Update(ctx, sp); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, detailed(ErrDuplicateName, "Space with name '%s' already exists", sp.Name)
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrSpaceNotFound
		}
		return nil, fmt.Errorf("update space: %w", err)
	}
	if err := s.withTotals(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *spaceService) Delete(ctx context.Context, userID, id string) (*SpaceDeletion, error) {
	sp, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListBySpace(ctx, sp.ID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	// Vector and file cleanup is best effort; the rows go regardless.
	for _, d := range docs {
		if _, err := s.indexer.Remove(ctx, d.OriginalFileName, sp.ID); err != nil {
			s.log.Warn("remove vectors failed",
				zap.String("space_id", sp.ID),
				zap.String("filename", d.OriginalFileName),
				zap.Error(err),
			)
		}
	}
	for _, d := range docs {
		if err := s.store.Delete(ctx, d.StoragePath); err != nil {
			s.log.Warn("delete stored file failed",
				zap.String("space_id", sp.ID),
				zap.String("key", d.StoragePath),
				zap.Error(err),
			)
		}
	}

	if _, err := s.documents.DeleteBySpace(ctx, sp.ID); err != nil {
		return nil, fmt.Errorf("delete documents: %w", err)
	}
	if err := s.spaces.Delete(ctx, sp.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("delete space: %w", err)
	}
	return &SpaceDeletion{Name: sp.Name, DocumentsDeleted: len(docs)}, nil
}
