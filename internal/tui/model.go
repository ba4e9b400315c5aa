package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"beecok/internal/client"
	"beecok/internal/composer"
	"beecok/internal/model"
	"beecok/internal/notify"
	"beecok/internal/results"
)

// API is the slice of the Beecok client the terminal UI needs.
type API interface {
	ListSpaces(ctx context.Context) ([]model.Space, error)
	Search(ctx context.Context, req client.SearchRequest) (*model.SearchResult, error)
}

type pane int

const (
	paneInput pane = iota
	paneResults
)

type (
	spacesMsg struct {
		spaces []model.Space
		err    error
	}
	searchDoneMsg struct {
		res *model.SearchResult
		err error
	}
	tickMsg time.Time
)

// Model is the Bubble Tea model for the search screen.
type Model struct {
	api        API
	composer   *composer.Composer
	searcher   *composer.Searcher
	view       *results.View
	notes      *notify.Notifier
	maxResults int
	timeout    time.Duration

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	focus    pane
	cursor   int
	ready    bool
	width    int

	// searching is set when a search command is handed to the runtime and cleared by its
	// searchDoneMsg, so Enter is ignored until the answer arrives.
	searching bool
}

func New(api API, maxResults int, log *zap.Logger) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, @ to pick a space"
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	view := results.NewView()
	notes := notify.New()
	return Model{
		api:        api,
		composer:   composer.New(nil),
		searcher:   composer.NewSearcher(api, view, notes, log),
		view:       view,
		notes:      notes,
		maxResults: maxResults,
		timeout:    3 * time.Minute,
		input:      ti,
		spinner:    sp,
		viewport:   viewport.New(0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadSpaces(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) loadSpaces() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		spaces, err := api.ListSpaces(ctx)
		return spacesMsg{spaces: spaces, err: err}
	}
}

// submit builds the request here, on the update loop, and sends it from a command.
func (m Model) submit() (Model, tea.Cmd) {
	if m.searching {
		return m, nil
	}
	req, err := composer.Request(m.composer, m.maxResults)
	if err != nil {
		if !errors.Is(err, composer.ErrEmptyQuery) {
			m.notes.Error(client.Describe(err))
		}
		return m, nil
	}
	searcher, timeout := m.searcher, m.timeout
	search := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := searcher.Send(ctx, req)
		return searchDoneMsg{res: res, err: err}
	}
	m.searching = true
	return m, tea.Batch(m.spinner.Tick, search)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = max(3, msg.Height-12)
		m.refresh()
		return m, nil

	case spacesMsg:
		if msg.err != nil {
			m.notes.Error(client.Describe(msg.err))
			return m, nil
		}
		m.composer.SetSpaces(msg.spaces)
		return m, nil

	case searchDoneMsg:
		m.searching = false
		if msg.err == nil {
			m.cursor = 0
			m.notes.Success("Search completed")
		}
		m.refresh()
		return m, nil

	case tickMsg:
		m.notes.Expire(time.Time(msg))
		return m, tick()

	case spinner.TickMsg:
		if !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyTab {
			m.view.NextTab()
			m.cursor = 0
			m.refresh()
			return m, nil
		}
		if m.focus == paneResults {
			return m.updateResults(msg)
		}
		return m.updateInput(msg)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key, ok := composerKey(msg); ok {
		switch m.composer.Key(key) {
		case composer.ActionSubmit:
			return m.submit()
		case composer.ActionCommitted:
			m.syncInput()
			return m, nil
		case composer.ActionMoved, composer.ActionDismissed:
			return m, nil
		}
		if key == composer.KeyEscape {
			m.focus = paneResults
			m.input.Blur()
			return m, nil
		}
		if key == composer.KeyUp || key == composer.KeyDown {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	if msg.Type == tea.KeyCtrlX {
		m.composer.RemoveScope()
		m.syncInput()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.composer.SetText(v)
	}
	return m, cmd
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sources := m.view.Sources()
	switch msg.String() {
	case "esc", "i", "/":
		m.focus = paneInput
		return m, m.input.Focus()
	case "up", "k":
		if len(sources) > 0 {
			m.cursor = (m.cursor - 1 + len(sources)) % len(sources)
		}
	case "down", "j":
		if len(sources) > 0 {
			m.cursor = (m.cursor + 1) % len(sources)
		}
	case "e":
		if m.view.Tab() == results.TabSources && m.cursor < len(sources) {
			m.view.Toggle(sources[m.cursor].ID)
		}
	case "f":
		if m.view.Tab() == results.TabSources && m.cursor < len(sources) {
			if m.composer.FocusSpace(m.view.Focus(sources[m.cursor])) {
				m.syncInput()
				m.notes.Info("Search scoped to " + m.composer.Scope().Name)
			}
		}
	case "x":
		m.composer.RemoveScope()
		m.syncInput()
	case "enter":
		return m.submit()
	}
	m.refresh()
	return m, nil
}

func composerKey(msg tea.KeyMsg) (composer.Key, bool) {
	switch msg.Type {
	case tea.KeyUp:
		return composer.KeyUp, true
	case tea.KeyDown:
		return composer.KeyDown, true
	case tea.KeyEnter:
		return composer.KeyEnter, true
	case tea.KeyEsc:
		return composer.KeyEscape, true
	}
	return 0, false
}

func (m *Model) syncInput() {
	m.input.SetValue(m.composer.Text())
	m.input.CursorEnd()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTab())
}
