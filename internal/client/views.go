package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// NotAvailable is shown for any diagnostic field the backend omitted.
const NotAvailable = "N/A"

func orNA(s *string) string {
	if s == nil || *s == "" {
		return NotAvailable
	}
	return *s
}

func orZero[T int | int64 | float64](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Health is the GET /health payload. Every field is optional; accessors return defaults.
type Health struct {
	RawStatus  *string     `json:"status"`
	Components *Components `json:"components"`
	Timestamp  *time.Time  `json:"timestamp"`
}

type Components struct {
	GeminiAPIStatus *string     `json:"gemini_api_status"`
	PineconeStatus  *string     `json:"pinecone_status"`
	IndexStats      *IndexStats `json:"index_stats"`
	EmbeddingModel  *string     `json:"embedding_model"`
	DatabaseStatus  *string     `json:"database_status"`
	Authentication  *string     `json:"authentication"`
}

type IndexStats struct {
	TotalVectors       *int64   `json:"total_vectors"`
	EmbeddingDimension *int     `json:"embedding_dimension"`
	IndexName          *string  `json:"index_name"`
	IndexFullness      *float64 `json:"index_fullness"`
	Error              *string  `json:"error"`
}

// Status defaults to "unknown".
func (h *Health) Status() string {
	if h == nil || h.RawStatus == nil || *h.RawStatus == "" {
		return "unknown"
	}
	return *h.RawStatus
}

func (h *Health) components() *Components {
	if h == nil || h.Components == nil {
		return &Components{}
	}
	return h.Components
}

func (h *Health) Generator() string   { return orNA(h.components().GeminiAPIStatus) }
func (h *Health) VectorIndex() string { return orNA(h.components().PineconeStatus) }
func (h *Health) Database() string    { return orNA(h.components().DatabaseStatus) }
func (h *Health) Embedding() string   { return orNA(h.components().EmbeddingModel) }
func (h *Health) Auth() string        { return orNA(h.components().Authentication) }
func (h *Health) Index() *IndexStats  { return h.components().IndexStats }

// CheckedAt is the server timestamp rendered in local time, or N/A.
func (h *Health) CheckedAt() string {
	if h == nil || h.Timestamp == nil {
		return NotAvailable
	}
	return h.Timestamp.Local().Format(time.DateTime)
}

func (s *IndexStats) Vectors() int64 {
	if s == nil {
		return 0
	}
	return orZero(s.TotalVectors)
}

func (s *IndexStats) Dimension() int {
	if s == nil {
		return 0
	}
	return orZero(s.EmbeddingDimension)
}

func (s *IndexStats) Name() string {
	if s == nil {
		return NotAvailable
	}
	return orNA(s.IndexName)
}

// Fullness is a percentage string such as "12.5%".
func (s *IndexStats) Fullness() string {
	if s == nil || s.IndexFullness == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f%%", *s.IndexFullness*100)
}

func (s *IndexStats) Err() string {
	if s == nil || s.Error == nil {
		return ""
	}
	return *s.Error
}

// Stats is the GET /stats payload.
type Stats struct {
	User   *UserStats  `json:"user_stats"`
	Index  *IndexStats `json:"pinecone_stats"`
	System *SystemInfo `json:"system_info"`
}

type UserStats struct {
	SpacesCount       *int64 `json:"spaces_count"`
	DocumentsCount    *int64 `json:"documents_count"`
	ChatsCount        *int64 `json:"chats_count"`
	TotalStorageBytes *int64 `json:"total_storage_bytes"`
}

type SystemInfo struct {
	SupportedFormats []string `json:"supported_formats"`
	MaxFileSizeMB    *int     `json:"max_file_size_mb"`
}

func (s *Stats) user() *UserStats {
	if s == nil || s.User == nil {
		return &UserStats{}
	}
	return s.User
}

func (s *Stats) Spaces() int64       { return orZero(s.user().SpacesCount) }
func (s *Stats) Documents() int64    { return orZero(s.user().DocumentsCount) }
func (s *Stats) Chats() int64        { return orZero(s.user().ChatsCount) }
func (s *Stats) StorageBytes() int64 { return orZero(s.user().TotalStorageBytes) }

// Storage is the total upload size in human units, e.g. "1.5 MB".
func (s *Stats) Storage() string {
	n := s.StorageBytes()
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func (s *Stats) IndexStats() *IndexStats {
	if s == nil {
		return nil
	}
	return s.Index
}

// Formats lists the accepted upload types, or N/A.
func (s *Stats) Formats() string {
	if s == nil || s.System == nil || len(s.System.SupportedFormats) == 0 {
		return NotAvailable
	}
	return strings.Join(s.System.SupportedFormats, ", ")
}

func (s *Stats) MaxUpload() string {
	if s == nil || s.System == nil || s.System.MaxFileSizeMB == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%d MB", *s.System.MaxFileSizeMB)
}
