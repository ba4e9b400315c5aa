package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"beecok/internal/notify"
	"beecok/internal/results"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	activeTab      = lipgloss.NewStyle().Bold(true).Underline(true)
	scopeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Padding(0, 1)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	strongStyle    = lipgloss.NewStyle().Bold(true)
	emStyle        = lipgloss.NewStyle().Italic(true)

	tierStyles = map[results.Tier]lipgloss.Style{
		results.TierHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		results.TierModerate: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		results.TierSomewhat: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		results.TierNeutral:  mutedStyle,
	}
	tierIcons = map[results.Tier]string{
		results.TierHigh:     "●●●",
		results.TierModerate: "●●○",
		results.TierSomewhat: "●○○",
		results.TierNeutral:  "○○○",
	}
	severityStyles = map[notify.Severity]lipgloss.Style{
		notify.Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		notify.Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		notify.Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		notify.Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}

	strongMarkup = regexp.MustCompile(`<strong>(.*?)</strong>`)
	emMarkup     = regexp.MustCompile(`<em>(.*?)</em>`)
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Beecok"))
	if sc := m.composer.Scope(); sc != nil {
		b.WriteString("  " + scopeStyle.Render("@"+sc.Name+"  ctrl+x"))
	}
	b.WriteString("\n")

	input := m.input.View()
	if m.searching {
		input += "  " + m.spinner.View() + " searching"
	}
	b.WriteString(queryBoxStyle.Render(input) + "\n")
	if m.composer.Open() {
		b.WriteString(m.renderSuggestions() + "\n")
	}

	b.WriteString(m.renderTabs() + "\n")
	b.WriteString(resultBoxStyle.Render(m.viewport.View()) + "\n")
	b.WriteString(m.renderNotifications())
	b.WriteString(mutedStyle.Render(m.help()))
	return b.String()
}

func (m Model) help() string {
	if m.focus == paneResults {
		return "↑/↓ select  e expand  f focus space  x clear scope  tab switch view  esc back"
	}
	return "enter search  @ pick space  tab switch view  esc browse results  ctrl+c quit"
}

func (m Model) renderSuggestions() string {
	var lines []string
	for i, sp := range m.composer.Suggestions() {
		if i == m.composer.Highlighted() {
			lines = append(lines, selectedStyle.Render("› "+sp.Name))
			continue
		}
		lines = append(lines, "  "+sp.Name)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, len(results.Tabs))
	for _, t := range results.Tabs {
		label := strings.ToUpper(string(t[:1])) + string(t[1:])
		if t == m.view.Tab() {
			parts = append(parts, activeTab.Render(label))
			continue
		}
		parts = append(parts, mutedStyle.Render(label))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderTab() string {
	res := m.view.Result()
	if res == nil {
		return "No results yet."
	}
	switch m.view.Tab() {
	case results.TabSources:
		return m.renderSources()
	case results.TabInsights:
		return m.renderInsights()
	default:
		paras := m.view.Paragraphs()
		for i, p := range paras {
			paras[i] = renderMarkup(p)
		}
		summary := mutedStyle.Render(fmt.Sprintf("%d sources from %d documents in %d spaces",
			res.TotalResults, res.DocumentsSearched, res.SpacesSearched))
		return strings.Join(paras, "\n\n") + "\n\n" + summary
	}
}

func (m Model) renderSources() string {
	sources := m.view.Sources()
	if len(sources) == 0 {
		return "No matching passages."
	}
	var b strings.Builder
	for i, src := range sources {
		tier := results.TierOf(src.RelevanceCategory)
		head := fmt.Sprintf("%s %s  p.%d  %.0f%%  %s",
			tierIcons[tier], src.Filename, src.EstimatedPage, src.SimilarityScore*100, tier.Label())
		if i == m.cursor && m.focus == paneResults {
			head = selectedStyle.Render("› " + head)
		} else {
			head = tierStyles[tier].Render("  " + head)
		}
		b.WriteString(head + "\n")
		b.WriteString("    " + m.view.DisplayText(src) + "\n")
		if len(src.KeywordsFound) > 0 {
			b.WriteString(mutedStyle.Render("    keywords: "+strings.Join(src.KeywordsFound, ", ")) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderInsights() string {
	items, empty := m.view.Insights()
	if len(items) == 0 {
		return mutedStyle.Render(empty)
	}
	var b strings.Builder
	for _, in := range items {
		b.WriteString("• " + in.Insight + "\n")
		if len(in.Documents) > 0 {
			b.WriteString(mutedStyle.Render("  "+strings.Join(in.Documents, ", ")) + "\n")
		}
	}
	return b.String()
}

func (m Model) renderNotifications() string {
	var b strings.Builder
	for _, n := range m.notes.Active() {
		b.WriteString(severityStyles[n.Severity].Render(n.Message) + "\n")
	}
	return b.String()
}

func renderMarkup(p string) string {
	p = strongMarkup.ReplaceAllStringFunc(p, func(s string) string {
		return strongStyle.Render(strongMarkup.FindStringSubmatch(s)[1])
	})
	return emMarkup.ReplaceAllStringFunc(p, func(s string) string {
		return emStyle.Render(emMarkup.FindStringSubmatch(s)[1])
	})
}
