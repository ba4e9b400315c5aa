package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"beecok/internal/llm"
	"beecok/internal/model"
	"beecok/internal/repository"
	"beecok/internal/vectorindex"
)

const (
	DefaultMaxResults = 10
	MaxMaxResults     = 50

	noSpacesAnswer  = "You don't have any spaces created yet. Please create a space and upload some documents first."
	noMatchesAnswer = "I couldn't find any relevant information in the uploaded documents for your query."
)

// SearchParams are the query parameters of GET /search.
type SearchParams struct {
	Query      string
	SpaceIDs   []string
	Filename   string
	MaxResults int
}

// SearchService answers questions over the documents in a user's spaces.
type SearchService interface {
	Search(ctx context.Context, userID string, p SearchParams) (*model.SearchResult, error)
}

type searchService struct {
	spaces     repository.SpaceRepository
	documents  repository.DocumentRepository
	indexer    *Indexer
	generator  llm.Generator
	maxResults int
	log        *zap.Logger
}

// NewSearchService builds a SearchService. defaultMax is used when a request does not
// set max_results.
func NewSearchService(
	spaces repository.SpaceRepository,
	documents repository.DocumentRepository,
	indexer *Indexer,
	generator llm.Generator,
	defaultMax int,
	log *zap.Logger,
) SearchService {
	if defaultMax <= 0 || defaultMax > MaxMaxResults {
		defaultMax = DefaultMaxResults
	}
	if generator == nil {
		generator = llm.Unavailable{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &searchService{
		spaces:     spaces,
		documents:  documents,
		indexer:    indexer,
		generator:  generator,
		maxResults: defaultMax,
		log:        log,
	}
}

func (s *searchService) Search(ctx context.Context, userID string, p SearchParams) (*model.SearchResult, error) {
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	limit := p.MaxResults
	if limit == 0 {
		limit = s.maxResults
	}
	if limit < 1 || limit > MaxMaxResults {
		return nil, detailed(ErrInvalidMaxResults, "max_results must be between 1 and %d", MaxMaxResults)
	}

	selected, err := s.selectSpaces(ctx, userID, p.SpaceIDs)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return &model.SearchResult{
			Answer:                noSpacesAnswer,
			Sources:               []model.Source{},
			Query:                 p.Query,
			CrossDocumentInsights: []model.Insight{},
		}, nil
	}

	if p.Filename != "" {
		if _, err := s.documents.FindByName(ctx, selected, p.Filename); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, detailed(ErrDocumentNotFound, "Document '%s' not found in selected spaces", p.Filename)
			}
			return nil, fmt.Errorf("find document: %w", err)
		}
	}

	scope := model.ScopeAllSpaces
	switch {
	case p.Filename != "":
		scope = model.ScopeSingleDocument
	case len(p.SpaceIDs) > 0:
		scope = model.ScopeSelectedSpaces
	}

	matches, err := s.indexer.Search(ctx, query, limit*2, vectorindex.Filter{SpaceIDs: selected, Filename: p.Filename})
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	res := &model.SearchResult{
		Query:          p.Query,
		SpacesSearched: len(selected),
		FilenameFilter: p.Filename,
		SearchScope:    scope,
	}
	if len(matches) == 0 {
		res.Answer = noMatchesAnswer
		res.Sources = []model.Source{}
		res.CrossDocumentInsights = []model.Insight{}
		res.DocumentSummary = summarize(nil)
		return res, nil
	}

	docs := groupByDocument(matches)
	res.Sources = enrichSources(matches[:min(limit, len(matches))])
	res.TotalResults = len(matches)
	res.DocumentsSearched = len(docs)
	res.Answer = s.answer(ctx, query, docs)
	res.CrossDocumentInsights = crossDocumentInsights(docs, query)
	res.DocumentSummary = summarize(docs)
	return res, nil
}

// selectSpaces verifies ownership of every requested space, or returns all of the
// user's spaces when none were requested.
func (s *searchService) selectSpaces(ctx context.Context, userID string, requested []string) ([]string, error) {
	if len(requested) == 0 {
		spaces, err := s.spaces.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list spaces: %w", err)
		}
		ids := make([]string, len(spaces))
		for i, sp := range spaces {
			ids[i] = sp.ID
		}
		return ids, nil
	}

	ids := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, id := range requested {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.spaces.FindByID(ctx, userID, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, detailed(ErrSpaceNotFound, "Space '%s' not found or access denied", id)
			}
			return nil, fmt.Errorf("find space: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *searchService) answer(ctx context.Context, query string, docs []documentMatches) string {
	prompt := answerPrompt(query, docs)
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.log.Warn("answer generation failed", zap.Error(err))
		return "Error generating comprehensive response: " + err.Error()
	}
	return text
}
