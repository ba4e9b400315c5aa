package model

// Relevance categories assigned to each source by the search service.
const (
	HighlyRelevant     = "highly_relevant"
	ModeratelyRelevant = "moderately_relevant"
	SomewhatRelevant   = "somewhat_relevant"
	LowRelevance       = "low_relevance"
)

// Search scopes reported in SearchResult.SearchScope.
const (
	ScopeSingleDocument = "single_document"
	ScopeSelectedSpaces = "selected_spaces"
	ScopeAllSpaces      = "all_spaces"
)

// SearchResult is the response of GET /search. Sources are ordered by similarity, highest first.
type SearchResult struct {
	Answer                string           `json:"answer"`
	Sources               []Source         `json:"sources"`
	Query                 string           `json:"query"`
	TotalResults          int              `json:"total_results"`
	DocumentsSearched     int              `json:"documents_searched"`
	SpacesSearched        int              `json:"spaces_searched"`
	FilenameFilter        string           `json:"filename_filter,omitempty"`
	SearchScope           string           `json:"search_scope,omitempty"`
	DocumentSummary       *DocumentSummary `json:"document_summary,omitempty"`
	CrossDocumentInsights []Insight        `json:"cross_document_insights"`
}

// Source is one ranked chunk match.
type Source struct {
	ID                    string   `json:"id"`
	SpaceID               string   `json:"space_id"`
	Filename              string   `json:"filename"`
	ChunkID               int      `json:"chunk_id"`
	SimilarityScore       float64  `json:"similarity_score"`
	TextPreview           string   `json:"text_preview"`
	FullText              string   `json:"full_text"`
	EstimatedPage         int      `json:"estimated_page"`
	TotalChunksInDocument int      `json:"total_chunks_in_document"`
	RelevanceCategory     string   `json:"relevance_category"`
	ContentLength         int      `json:"content_length"`
	KeywordsFound         []string `json:"keywords_found"`
}

type Insight struct {
	Type      string   `json:"type"`
	Insight   string   `json:"insight"`
	Documents []string `json:"documents"`
}

type DocumentSummary struct {
	TotalDocuments        int                   `json:"total_documents"`
	DocumentsList         []DocumentHit         `json:"documents_list"`
	RelevanceDistribution RelevanceDistribution `json:"relevance_distribution"`
	TotalChunksAnalyzed   int                   `json:"total_chunks_analyzed"`
}

type DocumentHit struct {
	Filename         string  `json:"filename"`
	ChunksFound      int     `json:"chunks_found"`
	MaxRelevance     float64 `json:"max_relevance"`
	TotalChunksInDoc int     `json:"total_chunks_in_doc"`
}

type RelevanceDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}
