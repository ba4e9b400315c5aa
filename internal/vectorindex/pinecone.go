package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultControlPlane is the Pinecone API used to resolve an index host.
	DefaultControlPlane = "https://api.pinecone.io"

	upsertBatch = 100
	deleteBatch = 1000
	// maxDeletePasses bounds the query-then-delete loop if the index is slow to
	// reflect deletions.
	maxDeletePasses = 100
	apiVersion      = "2024-07"
)

// PineconeConfig configures the Pinecone data plane client. Host may be empty, in which
// case it is resolved through the control plane from IndexName.
type PineconeConfig struct {
	APIKey       string
	IndexName    string
	Host         string
	Namespace    string
	Dimension    int
	ControlPlane string
}

type Pinecone struct {
	cfg    PineconeConfig
	host   string
	client *http.Client
}

// NewPinecone returns a client for an existing index.
func NewPinecone(ctx context.Context, cfg PineconeConfig) (*Pinecone, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("pinecone api key is required")
	}
	if cfg.Dimension <= 0 {
		return nil, errors.New("pinecone dimension must be positive")
	}
	if cfg.ControlPlane == "" {
		cfg.ControlPlane = DefaultControlPlane
	}
	p := &Pinecone{
		cfg: cfg,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	host := cfg.Host
	if host == "" {
		if cfg.IndexName == "" {
			return nil, errors.New("pinecone index name or host is required")
		}
		var desc struct {
			Host string `json:"host"`
		}
		if err := p.call(ctx, http.MethodGet, strings.TrimRight(cfg.ControlPlane, "/")+"/indexes/"+cfg.IndexName, nil, &desc); err != nil {
			return nil, fmt.Errorf("describe index %s: %w", cfg.IndexName, err)
		}
		host = desc.Host
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	p.host = strings.TrimRight(host, "/")
	return p, nil
}

func (p *Pinecone) Name() string { return p.cfg.IndexName }

type pcVector struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

func (p *Pinecone) Upsert(ctx context.Context, vectors []Vector) error {
	for start := 0; start < len(vectors); start += upsertBatch {
		end := min(start+upsertBatch, len(vectors))
		batch := make([]pcVector, 0, end-start)
		for _, v := range vectors[start:end] {
			batch = append(batch, pcVector{ID: v.ID, Values: v.Values, Metadata: v.Metadata})
		}
		body := map[string]any{"vectors": batch, "namespace": p.cfg.Namespace}
		if err := p.call(ctx, http.MethodPost, p.host+"/vectors/upsert", body, nil); err != nil {
			return fmt.Errorf("upsert batch %d: %w", start/upsertBatch+1, err)
		}
	}
	return nil
}

// pcMetadata mirrors Metadata with JSON numbers decoded as floats.
type pcMetadata struct {
	Text        string  `json:"text"`
	Filename    string  `json:"filename"`
	SpaceID     string  `json:"space_id"`
	ChunkID     float64 `json:"chunk_id"`
	TotalChunks float64 `json:"total_chunks"`
}

type queryResponse struct {
	Matches []struct {
		ID       string      `json:"id"`
		Score    float64     `json:"score"`
		Metadata *pcMetadata `json:"metadata"`
	} `json:"matches"`
}

func pineconeFilter(f Filter) map[string]any {
	out := map[string]any{}
	switch len(f.SpaceIDs) {
	case 0:
	case 1:
		out["space_id"] = map[string]any{"$eq": f.SpaceIDs[0]}
	default:
		out["space_id"] = map[string]any{"$in": f.SpaceIDs}
	}
	if f.Filename != "" {
		out["filename"] = map[string]any{"$eq": f.Filename}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (p *Pinecone) query(ctx context.Context, vec []float32, topK int, f Filter, withMeta bool) (queryResponse, error) {
	body := map[string]any{
		"vector":          vec,
		"topK":            topK,
		"includeMetadata": withMeta,
		"includeValues":   false,
		"namespace":       p.cfg.Namespace,
	}
	if filter := pineconeFilter(f); filter != nil {
		body["filter"] = filter
	}
	var out queryResponse
	err := p.call(ctx, http.MethodPost, p.host+"/query", body, &out)
	return out, err
}

func (p *Pinecone) Query(ctx context.Context, req QueryRequest) ([]Match, error) {
	if req.TopK <= 0 {
		return nil, nil
	}
	resp, err := p.query(ctx, req.Vector, req.TopK, req.Filter, true)
	if err != nil {
		return nil, fmt.Errorf("pinecone query: %w", err)
	}
	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		var md Metadata
		if m.Metadata != nil {
			md = Metadata{
				Text:        m.Metadata.Text,
				Filename:    m.Metadata.Filename,
				SpaceID:     m.Metadata.SpaceID,
				ChunkID:     int(m.Metadata.ChunkID),
				TotalChunks: int(m.Metadata.TotalChunks),
			}
		}
		matches = append(matches, Match{ID: m.ID, Score: m.Score, Metadata: md})
	}
	return matches, nil
}

// DeleteByFilter pages through matching ids with a constant probe vector and deletes
// them by id. Serverless indexes do not support delete-by-metadata.
func (p *Pinecone) DeleteByFilter(ctx context.Context, f Filter) (int, error) {
	if pineconeFilter(f) == nil {
		return 0, errors.New("refusing to delete without a filter")
	}
	probe := make([]float32, p.cfg.Dimension)
	probe[0] = 1

	deleted := 0
	for pass := 0; pass < maxDeletePasses; pass++ {
		resp, err := p.query(ctx, probe, deleteBatch, f, false)
		if err != nil {
			return deleted, fmt.Errorf("pinecone list by filter: %w", err)
		}
		if len(resp.Matches) == 0 {
			return deleted, nil
		}
		ids := make([]string, len(resp.Matches))
		for i, m := range resp.Matches {
			ids[i] = m.ID
		}
		if err := p.DeleteByIDs(ctx, ids); err != nil {
			return deleted, err
		}
		deleted += len(ids)
		if len(ids) < deleteBatch {
			return deleted, nil
		}
	}
	return deleted, fmt.Errorf("pinecone delete: vectors still matching after %d passes", maxDeletePasses)
}

// DeleteByIDs deletes ids in batches of deleteBatch.
func (p *Pinecone) DeleteByIDs(ctx context.Context, ids []string) error {
	for start := 0; start < len(ids); start += deleteBatch {
		end := min(start+deleteBatch, len(ids))
		body := map[string]any{"ids": ids[start:end], "namespace": p.cfg.Namespace}
		if err := p.call(ctx, http.MethodPost, p.host+"/vectors/delete", body, nil); err != nil {
			return fmt.Errorf("pinecone delete: %w", err)
		}
	}
	return nil
}

func (p *Pinecone) Stats(ctx context.Context) (Stats, error) {
	var out struct {
		Namespaces       map[string]any `json:"namespaces"`
		Dimension        int            `json:"dimension"`
		IndexFullness    float64        `json:"indexFullness"`
		TotalVectorCount int64          `json:"totalVectorCount"`
	}
	if err := p.call(ctx, http.MethodPost, p.host+"/describe_index_stats", map[string]any{}, &out); err != nil {
		return Stats{}, fmt.Errorf("pinecone stats: %w", err)
	}
	return Stats{
		TotalVectors: out.TotalVectorCount,
		Dimension:    out.Dimension,
		Fullness:     out.IndexFullness,
		Namespaces:   out.Namespaces,
	}, nil
}

func (p *Pinecone) call(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Api-Key", p.cfg.APIKey)
	req.Header.Set("X-Pinecone-API-Version", apiVersion)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
