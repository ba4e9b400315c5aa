package service

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"beecok/internal/model"
	"beecok/internal/vectorindex"
)

const (
	previewRunes    = 200
	chunksPerPage   = 3
	contextChunks   = 5
	maxKeywords     = 10
	keywordMinRunes = 4
	keywordTrim     = `.,!?;:"()[]`
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
}

// documentMatches is every match from one file.
type documentMatches struct {
	filename      string
	matches       []vectorindex.Match
	maxSimilarity float64
	totalChunks   int
}

// groupByDocument groups matches by filename. Documents are ordered by their best
// score, highest first; ties keep first-seen order.
func groupByDocument(matches []vectorindex.Match) []documentMatches {
	var docs []documentMatches
	pos := make(map[string]int)
	for _, m := range matches {
		i, ok := pos[m.Metadata.Filename]
		if !ok {
			i = len(docs)
			pos[m.Metadata.Filename] = i
			docs = append(docs, documentMatches{filename: m.Metadata.Filename, totalChunks: m.Metadata.TotalChunks})
		}
		d := &docs[i]
		d.matches = append(d.matches, m)
		d.maxSimilarity = max(d.maxSimilarity, m.Score)
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].maxSimilarity > docs[j].maxSimilarity })
	return docs
}

func relevanceCategory(score float64) string {
	switch {
	case score >= 0.8:
		return model.HighlyRelevant
	case score >= 0.6:
		return model.ModeratelyRelevant
	case score >= 0.4:
		return model.SomewhatRelevant
	}
	return model.LowRelevance
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	return string([]rune(text)[:previewRunes]) + "..."
}

// keywords returns up to ten distinct lower-cased words longer than three characters
// that are not stop words, in order of first appearance.
func keywords(text string) []string {
	out := make([]string, 0, maxKeywords)
	seen := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if utf8.RuneCountInString(word) < keywordMinRunes || stopWords[word] {
			continue
		}
		word = strings.Trim(word, keywordTrim)
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

func enrichSources(matches []vectorindex.Match) []model.Source {
	sources := make([]model.Source, 0, len(matches))
	for _, m := range matches {
		text := m.Metadata.Text
		sources = append(sources, model.Source{
			ID:                    m.ID,
			SpaceID:               m.Metadata.SpaceID,
			Filename:              m.Metadata.Filename,
			ChunkID:               m.Metadata.ChunkID,
			SimilarityScore:       m.Score,
			TextPreview:           preview(text),
			FullText:              text,
			EstimatedPage:         m.Metadata.ChunkID/chunksPerPage + 1,
			TotalChunksInDocument: m.Metadata.TotalChunks,
			RelevanceCategory:     relevanceCategory(m.Score),
			ContentLength:         utf8.RuneCountInString(text),
			KeywordsFound:         keywords(text),
		})
	}
	return sources
}

// answerContext lays out the best chunks of each document for the prompt.
func answerContext(docs []documentMatches) string {
	sections := make([]string, 0, len(docs))
	for _, d := range docs {
		var b strings.Builder
		fmt.Fprintf(&b, "\n=== DOCUMENT: %s ===\n", d.filename)
		fmt.Fprintf(&b, "Relevance Score: %.3f\n", d.maxSimilarity)
		fmt.Fprintf(&b, "Total Chunks Found: %d\n\n", len(d.matches))
		for _, m := range d.matches[:min(contextChunks, len(d.matches))] {
			fmt.Fprintf(&b, "Chunk %d (Similarity: %.3f):\n", m.Metadata.ChunkID+1, m.Score)
			fmt.Fprintf(&b, "%s\n\n", m.Metadata.Text)
		}
		sections = append(sections, b.String())
	}
	return strings.Join(sections, "\n")
}

const promptTemplate = `
You are an expert document analyst providing comprehensive answers based on multiple documents.

SEARCH QUERY: %s

DOCUMENTS ANALYZED (%d documents):
%s

CONTENT FROM DOCUMENTS:
%s

INSTRUCTIONS:
1. Provide a comprehensive answer that synthesizes information from ALL relevant documents
2. When referencing information, specify which document it came from
3. If information appears in multiple documents, mention this for validation
4. Highlight any contradictions or different perspectives between documents
5. Structure your response with clear sections if the topic is complex
6. Include specific details, numbers, examples, or quotes when available
7. If the query asks for a comparison, compare findings across documents
8. Conclude with a summary of key insights from your multi-document analysis

FORMAT YOUR RESPONSE:
- Start with a direct answer to the query
- Provide detailed explanation with document references
- Include any cross-document patterns or insights
- End with a concise summary

Remember: Base your response ONLY on the provided document content. If information is limited, state this clearly.

COMPREHENSIVE ANSWER:
`

func answerPrompt(query string, docs []documentMatches) string {
	return fmt.Sprintf(promptTemplate, query, len(docs), strings.Join(filenames(docs), ", "), answerContext(docs))
}

func filenames(docs []documentMatches) []string {
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.filename
	}
	return names
}

func crossDocumentInsights(docs []documentMatches, query string) []model.Insight {
	if len(docs) < 2 {
		return []model.Insight{}
	}
	return []model.Insight{{
		Type:      "multi_document_analysis",
		Insight:   fmt.Sprintf("Analysis across %d documents reveals interconnected information about: %s", len(docs), query),
		Documents: filenames(docs),
	}}
}

func summarize(docs []documentMatches) *model.DocumentSummary {
	sum := &model.DocumentSummary{
		TotalDocuments: len(docs),
		DocumentsList:  make([]model.DocumentHit, 0, len(docs)),
	}
	for _, d := range docs {
		sum.DocumentsList = append(sum.DocumentsList, model.DocumentHit{
			Filename:         d.filename,
			ChunksFound:      len(d.matches),
			MaxRelevance:     d.maxSimilarity,
			TotalChunksInDoc: d.totalChunks,
		})
		sum.TotalChunksAnalyzed += len(d.matches)
		switch {
		case d.maxSimilarity >= 0.7:
			sum.RelevanceDistribution.High++
		case d.maxSimilarity >= 0.5:
			sum.RelevanceDistribution.Medium++
		default:
			sum.RelevanceDistribution.Low++
		}
	}
	return sum
}
