package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"beecok/internal/model"
	"beecok/internal/repository"
	"beecok/internal/storage"
)

// TextExtractor pulls plain text out of an uploaded file.
type TextExtractor interface {
	Extract(content []byte, ext string) (string, error)
}

// UploadInput describes one multipart file.
type UploadInput struct {
	SpaceID     string
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload stores the file, indexes its text and saves its metadata. A failure after
	// the file was stored rolls back storage and index.
	Upload(ctx context.Context, userID string, in UploadInput) (*model.UploadReceipt, error)

	// Delete removes a document's vectors, stored file and record, and returns the
	// deleted record.
	Delete(ctx context.Context, userID, spaceID, id string) (*model.Document, error)
}

type documentService struct {
	spaces    repository.SpaceRepository
	documents repository.DocumentRepository
	store     storage.Storage
	extractor TextExtractor
	indexer   *Indexer
	log       *zap.Logger
	now       func() time.Time
}

func NewDocumentService(
	spaces repository.SpaceRepository,
	documents repository.DocumentRepository,
	store storage.Storage,
	extractor TextExtractor,
	indexer *Indexer,
	log *zap.Logger,
) DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &documentService{
		spaces:    spaces,
		documents: documents,
		store:     store,
		extractor: extractor,
		indexer:   indexer,
		log:       log,
		now:       time.Now,
	}
}

func unsupportedType() error {
	return detailed(ErrUnsupportedType, "Unsupported file type. Supported formats: %s",
		strings.Join(model.SupportedExtensions, ", "))
}

func (s *documentService) Upload(ctx context.Context, userID string, in UploadInput) (*model.UploadReceipt, error) {
	if in.Content == nil {
		return nil, ErrReaderNil
	}
	space, err := s.spaces.FindByID(ctx, userID, in.SpaceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSpaceNotFound
		}
		return nil, fmt.Errorf("find space: %w", err)
	}

	fileType, ok := model.FileType(in.Filename)
	if !ok {
		return nil, unsupportedType()
	}
	if in.Size > model.MaxFileSize {
		return nil, ErrFileTooLarge
	}

	if _, err := s.documents.FindByName(ctx, []string{space.ID}, in.Filename); err == nil {
		return nil, detailed(ErrDuplicateFile, "File '%s' already exists in this space.", in.Filename)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find document: %w", err)
	}

	// The declared size may be missing or wrong, so the limit is enforced on the bytes read.
	content, err := io.ReadAll(io.LimitReader(in.Content, model.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(content) > model.MaxFileSize {
		return nil, ErrFileTooLarge
	}
	size := int64(len(content))

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := storage.ObjectKey(userID, space.ID, filepath.Ext(in.Filename))
	obj, err := s.store.Put(ctx, key, bytes.NewReader(content), storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": in.Filename},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	if obj.Key != "" {
		key = obj.Key
	}

	text, err := s.extractor.Extract(content, fileType)
	if err != nil {
		return nil, s.rollback(ctx, key, nil, fmt.Errorf("extract text: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		return nil, s.rollback(ctx, key, nil, ErrEmptyText)
	}

	vectorIDs, err := s.indexer.Index(ctx, text, in.Filename, space.ID)
	if err != nil {
		return nil, s.rollback(ctx, key, vectorIDs, fmt.Errorf("index document: %w", err))
	}

	doc := &model.Document{
		ID:               uuid.NewString(),
		SpaceID:          space.ID,
		UserID:           userID,
		OriginalFileName: in.Filename,
		FileType:         fileType,
		StoragePath:      key,
		SizeInBytes:      size,
		UploadedAt:       s.now().UTC(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// A concurrent upload of the same name won; only this upload's vectors go.
			err = detailed(ErrDuplicateFile, "File '%s' already exists in this space.", in.Filename)
			return nil, s.rollback(ctx, key, vectorIDs, err)
		}
		return nil, s.rollback(ctx, key, vectorIDs, fmt.Errorf("db save failed: %w", err))
	}

	return &model.UploadReceipt{
		ID:                  doc.ID,
		Filename:            doc.OriginalFileName,
		SpaceID:             space.ID,
		SpaceName:           space.Name,
		FileSizeBytes:       size,
		ExtractedTextLength: utf8.RuneCountInString(text),
		Status:              "indexed",
	}, nil
}

// rollback undoes a partial upload and returns cause, annotated with any cleanup
// failure. Only the vectors written by this upload are removed, never others that share
// its filename.
func (s *documentService) rollback(ctx context.Context, key string, vectorIDs []string, cause error) error {
	var failed []error
	if err := s.indexer.Discard(ctx, vectorIDs); err != nil {
		failed = append(failed, err)
	}
	if err := s.store.Delete(ctx, key); err != nil {
		failed = append(failed, fmt.Errorf("rollback delete failed: %w", err))
	}
	if len(failed) == 0 {
		return cause
	}
	s.log.Error("upload rollback incomplete", zap.String("key", key), zap.Errors("errors", failed))
	return errors.Join(append([]error{cause}, failed...)...)
}

func (s *documentService) Delete(ctx context.Context, userID, spaceID, id string) (*model.Document, error) {
	if _, err := s.spaces.FindByID(ctx, userID, spaceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSpaceNotFound
		}
		return nil, fmt.Errorf("find space: %w", err)
	}
	doc, err := s.documents.FindByID(ctx, spaceID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	if doc.UserID != userID {
		return nil, ErrDocumentNotFound
	}

	if _, err := s.indexer.Remove(ctx, doc.OriginalFileName, spaceID); err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return nil, fmt.Errorf("delete storage: %w", err)
	}
	if err := s.documents.Delete(ctx, doc.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("delete document: %w", err)
	}
	return doc, nil
}
