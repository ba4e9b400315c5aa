// Package results is the display model of a search response: tabs, the cleaned answer,
// expandable sources and cross-document insights.
package results

import (
	"sync"

	"beecok/internal/model"
)

type Tab string

const (
	TabAnswer   Tab = "answer"
	TabSources  Tab = "sources"
	TabInsights Tab = "insights"
)

// Tabs is the display order.
var Tabs = []Tab{TabAnswer, TabSources, TabInsights}

// NoInsightsMessage replaces an empty insights list.
const NoInsightsMessage = "No cross-document insights for this search. Insights appear when results span two or more documents."

// Tier is the styling bucket of a relevance category.
type Tier int

const (
	TierNeutral Tier = iota
	TierSomewhat
	TierModerate
	TierHigh
)

// TierOf maps the category assigned by the backend. The numeric score is not consulted.
func TierOf(category string) Tier {
	switch category {
	case model.HighlyRelevant:
		return TierHigh
	case model.ModeratelyRelevant:
		return TierModerate
	case model.SomewhatRelevant:
		return TierSomewhat
	default:
		return TierNeutral
	}
}

func (t Tier) Label() string {
	switch t {
	case TierHigh:
		return "Highly relevant"
	case TierModerate:
		return "Moderately relevant"
	case TierSomewhat:
		return "Somewhat relevant"
	default:
		return "Low relevance"
	}
}

// View holds the current result and the UI state layered on it. It is safe for concurrent
// use so a search can land while the user is browsing.
type View struct {
	mu       sync.RWMutex
	result   *model.SearchResult
	tab      Tab
	expanded map[string]bool
}

func NewView() *View {
	return &View{tab: TabAnswer, expanded: map[string]bool{}}
}

// Replace swaps in a new result wholesale. Expansion state and the tab reset.
func (v *View) Replace(res *model.SearchResult) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result = res
	v.tab = TabAnswer
	v.expanded = map[string]bool{}
}

func (v *View) Result() *model.SearchResult {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.result
}

func (v *View) Tab() Tab {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tab
}

func (v *View) SetTab(t Tab) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tab = t
}

// NextTab cycles answer, sources, insights.
func (v *View) NextTab() Tab {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, t := range Tabs {
		if t == v.tab {
			v.tab = Tabs[(i+1)%len(Tabs)]
			break
		}
	}
	return v.tab
}

func (v *View) Paragraphs() []string {
	res := v.Result()
	if res == nil {
		return nil
	}
	return Paragraphs(res.Answer)
}

func (v *View) Sources() []model.Source {
	res := v.Result()
	if res == nil {
		return nil
	}
	return res.Sources
}

// Toggle flips one source between preview and full text.
func (v *View) Toggle(sourceID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expanded[sourceID] = !v.expanded[sourceID]
	return v.expanded[sourceID]
}

func (v *View) Expanded(sourceID string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.expanded[sourceID]
}

// DisplayText is the full text of an expanded source and the preview otherwise.
func (v *View) DisplayText(src model.Source) string {
	if v.Expanded(src.ID) && src.FullText != "" {
		return src.FullText
	}
	if src.TextPreview == "" {
		return src.FullText
	}
	return src.TextPreview
}

// Insights returns the insights, or the empty-state message when there are none.
func (v *View) Insights() ([]model.Insight, string) {
	res := v.Result()
	if res == nil || len(res.CrossDocumentInsights) == 0 {
		return nil, NoInsightsMessage
	}
	return res.CrossDocumentInsights, ""
}

// Focus returns the space a later search should be scoped to. It does not search.
func (v *View) Focus(src model.Source) string {
	return src.SpaceID
}
