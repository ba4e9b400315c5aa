package model

import "time"

// IndexStats describes the vector index. Error is set when the index could not be reached.
type IndexStats struct {
	TotalVectors       int64          `json:"total_vectors"`
	EmbeddingDimension int            `json:"embedding_dimension"`
	IndexName          string         `json:"index_name"`
	Namespaces         map[string]any `json:"namespaces,omitempty"`
	IndexFullness      float64        `json:"index_fullness"`
	Error              string         `json:"error,omitempty"`
}

type HealthComponents struct {
	GeminiAPIStatus string     `json:"gemini_api_status"`
	PineconeStatus  string     `json:"pinecone_status"`
	IndexStats      IndexStats `json:"index_stats"`
	EmbeddingModel  string     `json:"embedding_model"`
	DatabaseStatus  string     `json:"database_status"`
	Authentication  string     `json:"authentication"`
}

// HealthReport is the body of GET /health. Status is healthy, degraded or unhealthy.
type HealthReport struct {
	Status     string           `json:"status"`
	Components HealthComponents `json:"components"`
	Timestamp  time.Time        `json:"timestamp"`
}

type UserStats struct {
	SpacesCount       int64 `json:"spaces_count"`
	DocumentsCount    int64 `json:"documents_count"`
	ChatsCount        int64 `json:"chats_count"`
	TotalStorageBytes int64 `json:"total_storage_bytes"`
}

type SystemInfo struct {
	SupportedFormats []string `json:"supported_formats"`
	MaxFileSizeMB    int      `json:"max_file_size_mb"`
}

type StatsReport struct {
	UserStats     UserStats  `json:"user_stats"`
	PineconeStats IndexStats `json:"pinecone_stats"`
	SystemInfo    SystemInfo `json:"system_info"`
}
