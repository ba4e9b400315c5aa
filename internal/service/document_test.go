package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"beecok/internal/chunker"
	"beecok/internal/embedding"
	"beecok/internal/extract"
	"beecok/internal/model"
	"beecok/internal/repository"
	repoMocks "beecok/internal/repository/mocks"
	"beecok/internal/storage"
	storeMocks "beecok/internal/storage/mocks"
)

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()
	space := &model.Space{ID: "s1", UserID: "u1", Name: "Research"}

	tests := []struct {
		name       string
		filename   string
		body       string
		size       int64
		setupMocks func(sp *repoMocks.MockSpaceRepository, docs *repoMocks.MockDocumentRepository, st *storeMocks.MockStorage)
		wantErr    error
		wantErrMsg string
		wantDelete int
	}{
		{
			name:     "happy path",
			filename: "notes.txt",
			body:     "hello world",
			setupMocks: func(sp *repoMocks.MockSpaceRepository, docs *repoMocks.MockDocumentRepository, st *storeMocks.MockStorage) {
				sp.On("FindByID", ctx, "u1", "s1").Return(space, nil)
				docs.On("FindByName", ctx, []string{"s1"}, "notes.txt").Return(nil, repository.ErrNotFound)
				st.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "uploads/u1/s1/") && strings.HasSuffix(key, ".txt")
				}), mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
					return o.Size == 11 && o.Metadata["original-filename"] == "notes.txt"
				})).Return(func(_ context.Context, key string, _ io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
					return storage.ObjectInfo{Key: key, Size: 11}
				}, nil)
				docs.On("Create", ctx, mock.MatchedBy(func(d *model.Document) bool {
					return d.FileType == "txt" && d.SizeInBytes == 11 && d.UserID == "u1" && d.StoragePath != ""
				})).Return(nil)
			},
		},
		{
			name:     "space not owned",
			filename: "notes.txt",
			body:     "x",
			setupMocks: func(sp *repoMocks.MockSpaceRepository, docs *repoMocks.MockDocumentRepository, st *storeMocks.MockStorage) {
				sp.On("FindByID", ctx, "u1", "s1").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrSpaceNotFound,
		},
		{
			name:     "unsupported extension",
			filename: "sheet.xlsx",
			body:     "x",
			setupMocks: func(sp *repoMocks.MockSpaceRepository, docs *repoMocks.MockDocumentRepository, st *storeMocks.MockStorage) {
				sp.On("FindByID", ctx, "u1", "s1").Return(space, nil)
			},
			wantErr:    ErrUnsupportedType,
			wantErrMsg: "Supported formats: .pdf, .docx, .pptx, .txt",
		},
		{
			name:     "declared size too large",
			filename: "big.pdf",
			body:     "x",
			size:     model.MaxFileSize + 1,
			setupMocks: func(sp *repoMocks.MockSpaceRepository, docs *repoMocks.MockDocumentRepository, st *storeMocks.MockStorage) {
				sp.On("FindByID", ctx, "u1", "s1").Return(space, nil)
			},
			wantErr: ErrFileTooLarge,
		},
		{
			name:     "duplicate filename",
			filename: "notes.txt",
			body:     "x",
			setupMocks: func(sp *repoMocks.MockSpaceRepository, docs *repoMocks.MockDocumentRepository, st *storeMocks.MockStorage) {
				sp.On("FindByID", ctx, "u1", "s1").Return(space, nil)
				docs.On("FindByName", ctx, []string{"s1"}, "notes.txt").Return(&model.Document{ID: "d1"}, nil)
			},
			wantErr:    ErrDuplicateFile,
			wantErrMsg: "File 'notes.txt' already exists in this space.",
		},
		{
			name:     "storage error",
			filename: "notes.txt",
			body:     "hello",
			setupMocks: func(sp *repoMocks.MockSpaceRepository, docs *repoMocks.MockDocumentRepository, st *storeMocks.MockStorage) {
				sp.On("FindByID", ctx, "u1", "s1").Return(space, nil)
				docs.On("FindByName", ctx, []string{"s1"}, "notes.txt").Return(nil, repository.ErrNotFound)
				st.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:     "empty text rolls back storage",
			filename: "blank.txt",
			body:     "  \n\t ",
			setupMocks: func(sp *repoMocks.MockSpaceRepository, docs *repoMocks.MockDocumentRepository, st *storeMocks.MockStorage) {
				sp.On("FindByID", ctx, "u1", "s1").Return(space, nil)
				docs.On("FindByName", ctx, []string{"s1"}, "blank.txt").Return(nil, repository.ErrNotFound)
				st.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: "k"}, nil)
				st.On("Delete", ctx, "k").Return(nil)
			},
			wantErr: ErrEmptyText,
		},
		{
			name:     "repository error rolls back storage and index",
			filename: "notes.txt",
			body:     "hello",
			setupMocks: func(sp *repoMocks.MockSpaceRepository, docs *repoMocks.MockDocumentRepository, st *storeMocks.MockStorage) {
				sp.On("FindByID", ctx, "u1", "s1").Return(space, nil)
				docs.On("FindByName", ctx, []string{"s1"}, "notes.txt").Return(nil, repository.ErrNotFound)
				st.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: "k"}, nil)
				docs.On("Create", ctx, mock.Anything).Return(errors.New("db fail"))
				st.On("Delete", ctx, "k").Return(nil)
			},
			wantErrMsg: "db save failed: db fail",
			wantDelete: 1,
		},
		{
			name:     "repository error with failed rollback",
			filename: "notes.txt",
			body:     "hello",
			setupMocks: func(sp *repoMocks.MockSpaceRepository, docs *repoMocks.MockDocumentRepository, st *storeMocks.MockStorage) {
				sp.On("FindByID", ctx, "u1", "s1").Return(space, nil)
				docs.On("FindByName", ctx, []string{"s1"}, "notes.txt").Return(nil, repository.ErrNotFound)
				st.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: "k"}, nil)
				docs.On("Create", ctx, mock.Anything).Return(errors.New("db fail"))
				st.On("Delete", ctx, "k").Return(errors.New("delete fail"))
			},
			wantErrMsg: "rollback delete failed: delete fail",
			wantDelete: 1,
		},
		{
			name:     "lost race to a concurrent upload drops only its own vectors",
			filename: "notes.txt",
			body:     "hello",
			setupMocks: func(sp *repoMocks.MockSpaceRepository, docs *repoMocks.MockDocumentRepository, st *storeMocks.MockStorage) {
				sp.On("FindByID", ctx, "u1", "s1").Return(space, nil)
				docs.On("FindByName", ctx, []string{"s1"}, "notes.txt").Return(nil, repository.ErrNotFound)
				st.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: "k"}, nil)
				docs.On("Create", ctx, mock.Anything).Return(repository.ErrConflict)
				st.On("Delete", ctx, "k").Return(nil)
			},
			wantErr:    ErrDuplicateFile,
			wantDelete: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spaces := new(repoMocks.MockSpaceRepository)
			docs := new(repoMocks.MockDocumentRepository)
			st := new(storeMocks.MockStorage)
			tt.setupMocks(spaces, docs, st)

			idx := &fakeIndex{}
			indexer := NewIndexer(chunker.New(100, 10), embedding.NewHash(8), idx, nil)
			svc := NewDocumentService(spaces, docs, st, extract.NewExtractor(), indexer, nil)

			size := tt.size
			if size == 0 {
				size = int64(len(tt.body))
			}
			res, err := svc.Upload(ctx, "u1", UploadInput{
				SpaceID: "s1", Filename: tt.filename, Size: size, Content: strings.NewReader(tt.body),
			})

			if tt.wantErr == nil && tt.wantErrMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, "indexed", res.Status)
				assert.Equal(t, "Research", res.SpaceName)
				assert.Equal(t, int64(11), res.FileSizeBytes)
				assert.Equal(t, 11, res.ExtractedTextLength)
				assert.Equal(t, 1, idx.upserts)
			} else {
				require.Error(t, err)
				assert.Nil(t, res)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				if tt.wantErrMsg != "" {
					assert.Contains(t, err.Error(), tt.wantErrMsg)
				}
			}
			assert.Empty(t, idx.deletes, "rollback must not delete by filename")
			require.Len(t, idx.dropped, tt.wantDelete)
			if tt.wantDelete > 0 {
				assert.NotEmpty(t, idx.upserted)
				assert.Equal(t, idx.upserted, idx.dropped[0])
			}
			spaces.AssertExpectations(t)
			docs.AssertExpectations(t)
			st.AssertExpectations(t)
		})
	}

	t.Run("nil reader", func(t *testing.T) {
		svc := NewDocumentService(nil, nil, nil, extract.NewExtractor(), nil, nil)
		_, err := svc.Upload(ctx, "u1", UploadInput{SpaceID: "s1", Filename: "a.txt"})
		assert.ErrorIs(t, err, ErrReaderNil)
	})
}

func TestDocumentService_UploadEnforcesLimitOnBytesRead(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	sp, err := e.spaces.Create(ctx, e.userID, SpaceInput{Name: "S"})
	require.NoError(t, err)

	big := io.LimitReader(zeroReader{}, model.MaxFileSize+10)
	_, err = e.docs.Upload(ctx, e.userID, UploadInput{SpaceID: sp.ID, Filename: "huge.txt", Size: 10, Content: big})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'a'
	}
	return len(p), nil
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	sp, err := e.spaces.Create(ctx, e.userID, SpaceInput{Name: "S"})
	require.NoError(t, err)
	upload(t, e, sp.ID, "notes.txt", "the quick brown fox")

	full, err := e.spaces.Get(ctx, e.userID, sp.ID)
	require.NoError(t, err)
	require.Len(t, full.Documents, 1)
	doc := full.Documents[0]

	_, err = e.docs.Delete(ctx, e.otherID, sp.ID, doc.ID)
	assert.ErrorIs(t, err, ErrSpaceNotFound)
	_, err = e.docs.Delete(ctx, e.userID, sp.ID, "33333333-3333-3333-3333-333333333333")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	deleted, err := e.docs.Delete(ctx, e.userID, sp.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", deleted.OriginalFileName)

	stats, err := e.index.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalVectors)

	_, _, err = e.files.Get(ctx, doc.StoragePath)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// the filename is free again
	upload(t, e, sp.ID, "notes.txt", "fresh copy")
}
