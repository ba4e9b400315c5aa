// Package composer turns the single search input, which may carry an @Space scope, into a
// search request, and drives the space suggestion list while the user types.
package composer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"beecok/internal/model"
)

type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyEnter
	KeyEscape
)

// Action tells the caller what a key did.
type Action int

const (
	ActionNone Action = iota
	ActionMoved
	ActionCommitted
	ActionDismissed
	ActionSubmit
)

// Composer is owned by a single UI loop and is not safe for concurrent use.
type Composer struct {
	text        string
	spaces      []model.Space
	open        bool
	suggestions []model.Space
	highlight   int
	scope       *model.Space
}

func New(spaces []model.Space) *Composer {
	return &Composer{spaces: spaces}
}

func (c *Composer) Text() string               { return c.text }
func (c *Composer) Open() bool                 { return c.open }
func (c *Composer) Suggestions() []model.Space { return c.suggestions }
func (c *Composer) Highlighted() int           { return c.highlight }
func (c *Composer) Scope() *model.Space        { return c.scope }

// SetSpaces replaces the known spaces and refreshes any open suggestion list.
func (c *Composer) SetSpaces(spaces []model.Space) {
	c.spaces = spaces
	if c.scope != nil {
		if sp, ok := c.find(c.scope.ID); ok {
			c.scope = &sp
		}
	}
	c.suggest()
}

// SetText records a keystroke. A scope whose annotation has been edited away is dropped,
// and a complete "@Name " typed or pasted for a known space becomes the scope.
func (c *Composer) SetText(text string) {
	c.text = text
	if c.scope != nil {
		if start, _ := annotationAt(text, c.scope.Name); start < 0 {
			c.scope = nil
		}
	}
	if c.scope == nil {
		c.resolve()
	}
	c.suggest()
}

// resolve picks the longest space name written as "@Name" followed by whitespace.
func (c *Composer) resolve() {
	candidates := make([]model.Space, len(c.spaces))
	copy(candidates, c.spaces)
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].Name) > len(candidates[j].Name)
	})
	for _, sp := range candidates {
		if sp.Name == "" {
			continue
		}
		if start, end := annotationAt(c.text, sp.Name); start >= 0 && end < len(c.text) {
			chosen := sp
			c.scope = &chosen
			return
		}
	}
}

// suggest opens the list for a trailing "@prefix" token that has not been committed yet.
// A bare "@" lists every space; otherwise names are matched case-insensitively by substring.
func (c *Composer) suggest() {
	at := strings.LastIndex(c.text, "@")
	if at < 0 {
		c.close()
		return
	}
	token := c.text[at+1:]
	if strings.IndexFunc(token, unicode.IsSpace) >= 0 {
		c.close()
		return
	}
	if c.scope != nil {
		if start, _ := annotationAt(c.text, c.scope.Name); start == at {
			c.close()
			return
		}
	}

	prefix := strings.ToLower(token)
	matches := make([]model.Space, 0, len(c.spaces))
	for _, sp := range c.spaces {
		if strings.Contains(strings.ToLower(sp.Name), prefix) {
			matches = append(matches, sp)
		}
	}
	if len(matches) == 0 {
		c.close()
		return
	}
	if !c.open || c.highlight >= len(matches) {
		c.highlight = 0
	}
	c.suggestions = matches
	c.open = true
}

func (c *Composer) close() {
	c.open = false
	c.suggestions = nil
	c.highlight = 0
}

// Key handles navigation while the list is open. With the list closed, Enter submits.
func (c *Composer) Key(k Key) Action {
	if !c.open {
		if k == KeyEnter {
			return ActionSubmit
		}
		return ActionNone
	}
	n := len(c.suggestions)
	switch k {
	case KeyUp:
		c.highlight = (c.highlight - 1 + n) % n
		return ActionMoved
	case KeyDown:
		c.highlight = (c.highlight + 1) % n
		return ActionMoved
	case KeyEnter:
		if c.Commit() {
			return ActionCommitted
		}
	case KeyEscape:
		c.close()
		return ActionDismissed
	}
	return ActionNone
}

// Commit replaces the text from the triggering @ to the end with "@Name " and scopes the
// search to the highlighted space. A previous scope annotation is removed first.
func (c *Composer) Commit() bool {
	if !c.open || len(c.suggestions) == 0 {
		return false
	}
	chosen := c.suggestions[c.highlight]
	at := strings.LastIndex(c.text, "@")
	head := c.text[:at]
	if c.scope != nil {
		head = stripAnnotation(head, c.scope.Name)
	}
	c.text = head + "@" + chosen.Name + " "
	c.scope = &chosen
	c.close()
	return true
}

// RemoveScope strips the annotation and clears the scope.
func (c *Composer) RemoveScope() {
	if c.scope == nil {
		return
	}
	c.text = strings.TrimSpace(stripAnnotation(c.text, c.scope.Name))
	c.scope = nil
	c.suggest()
}

// SetScope scopes the search to space, showing it as a leading annotation.
func (c *Composer) SetScope(space model.Space) {
	rest := c.text
	if c.scope != nil {
		rest = stripAnnotation(rest, c.scope.Name)
	}
	c.scope = &space
	c.text = "@" + space.Name + " " + strings.TrimSpace(rest)
	c.close()
}

// FocusSpace scopes the search to the known space with the given id.
func (c *Composer) FocusSpace(id string) bool {
	sp, ok := c.find(id)
	if ok {
		c.SetScope(sp)
	}
	return ok
}

func (c *Composer) find(id string) (model.Space, bool) {
	for _, sp := range c.spaces {
		if sp.ID == id {
			return sp, true
		}
	}
	return model.Space{}, false
}

// Query is the trimmed text without the scope annotation.
func (c *Composer) Query() string {
	text := c.text
	if c.scope != nil {
		text = stripAnnotation(text, c.scope.Name)
	}
	return strings.TrimSpace(text)
}

// annotationAt finds "@name" in text, matching the name case-insensitively and requiring
// whitespace or the end of text after it. It returns -1, -1 when absent.
func annotationAt(text, name string) (int, int) {
	for i := 0; i < len(text); i++ {
		if text[i] != '@' {
			continue
		}
		n, ok := foldPrefix(text[i+1:], name)
		if !ok {
			continue
		}
		end := i + 1 + n
		if end == len(text) {
			return i, end
		}
		if r, _ := utf8.DecodeRuneInString(text[end:]); unicode.IsSpace(r) {
			return i, end
		}
	}
	return -1, -1
}

// foldPrefix reports whether s starts with name under case folding, and how many bytes
// of s the match spans. Case pairs such as "İ" and "i" differ in encoded length, so the
// comparison walks runes.
func foldPrefix(s, name string) (int, bool) {
	n := 0
	for _, want := range name {
		if n >= len(s) {
			return 0, false
		}
		got, size := utf8.DecodeRuneInString(s[n:])
		if !sameLetter(got, want) {
			return 0, false
		}
		n += size
	}
	return n, true
}

func sameLetter(a, b rune) bool {
	return a == b ||
		unicode.ToLower(a) == unicode.ToLower(b) ||
		strings.EqualFold(string(a), string(b))
}

func stripAnnotation(text, name string) string {
	start, end := annotationAt(text, name)
	if start < 0 {
		return text
	}
	return text[:start] + text[end:]
}
