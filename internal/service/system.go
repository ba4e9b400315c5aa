package service

import (
	"context"
	"fmt"
	"time"

	"beecok/internal/llm"
	"beecok/internal/model"
	"beecok/internal/repository"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// SystemService reports component health and per-user usage.
type SystemService interface {
	Health(ctx context.Context) *model.HealthReport
	Stats(ctx context.Context, userID string) (*model.StatsReport, error)
}

type systemService struct {
	store     repository.Store
	indexer   *Indexer
	generator llm.Generator
	now       func() time.Time
}

func NewSystemService(store repository.Store, indexer *Indexer, generator llm.Generator) SystemService {
	if generator == nil {
		generator = llm.Unavailable{}
	}
	return &systemService{store: store, indexer: indexer, generator: generator, now: time.Now}
}

func statusOf(err error, ok string) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return ok
}

// indexStats never fails; an unreachable index is reported in the Error field.
func (s *systemService) indexStats(ctx context.Context) (model.IndexStats, error) {
	st := model.IndexStats{
		EmbeddingDimension: s.indexer.Dimensions(),
		IndexName:          s.indexer.IndexName(),
	}
	raw, err := s.indexer.Stats(ctx)
	if err != nil {
		st.Error = fmt.Sprintf("Error getting index stats: %v", err)
		return st, err
	}
	st.TotalVectors = raw.TotalVectors
	st.Namespaces = raw.Namespaces
	st.IndexFullness = raw.Fullness
	return st, nil
}

func (s *systemService) Health(ctx context.Context) *model.HealthReport {
	dbErr := s.store.Health.Ping(ctx)
	genErr := s.generator.Ping(ctx)
	stats, idxErr := s.indexStats(ctx)

	status := StatusHealthy
	if genErr != nil {
		status = StatusDegraded
	}
	if idxErr != nil || dbErr != nil {
		status = StatusUnhealthy
	}

	return &model.HealthReport{
		Status: status,
		Components: model.HealthComponents{
			GeminiAPIStatus: statusOf(genErr, "working"),
			PineconeStatus:  statusOf(idxErr, "connected"),
			IndexStats:      stats,
			EmbeddingModel:  s.indexer.EmbeddingModel(),
			DatabaseStatus:  statusOf(dbErr, "connected"),
			Authentication:  "enabled",
		},
		Timestamp: s.now().UTC(),
	}
}

func (s *systemService) Stats(ctx context.Context, userID string) (*model.StatsReport, error) {
	spaces, err := s.store.Spaces.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count spaces: %w", err)
	}
	totals, err := s.store.Documents.UserTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("document totals: %w", err)
	}
	chats, err := s.store.Chats.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count chats: %w", err)
	}
	idx, _ := s.indexStats(ctx)

	return &model.StatsReport{
		UserStats: model.UserStats{
			SpacesCount:       spaces,
			DocumentsCount:    totals.Count,
			ChatsCount:        chats,
			TotalStorageBytes: totals.SizeBytes,
		},
		PineconeStats: idx,
		SystemInfo: model.SystemInfo{
			SupportedFormats: model.SupportedExtensions,
			MaxFileSizeMB:    model.MaxFileSize / (1024 * 1024),
		},
	}, nil
}
