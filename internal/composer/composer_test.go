package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beecok/internal/model"
)

var testSpaces = []model.Space{
	{ID: "id-med", Name: "Medical"},
	{ID: "id-law", Name: "Legal"},
	{ID: "id-mech", Name: "Mechanics"},
	{ID: "id-fin", Name: "Finance"},
}

func names(spaces []model.Space) []string {
	out := make([]string, len(spaces))
	for i, sp := range spaces {
		out[i] = sp.Name
	}
	return out
}

func TestComposer_Suggestions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"bare at lists all", "find @", []string{"Medical", "Legal", "Mechanics", "Finance"}},
		{"prefix filter keeps order", "@me", []string{"Medical", "Mechanics"}},
		{"case insensitive substring", "@GAL", []string{"Legal"}},
		{"no match closes", "@zzz", nil},
		{"token ended by space", "@me ", nil},
		{"no at", "plain text", nil},
		{"last at wins", "@Legal x @fin", []string{"Finance"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(testSpaces)
			c.SetText(tt.text)
			assert.Equal(t, tt.want != nil, c.Open())
			if tt.want != nil {
				assert.Equal(t, tt.want, names(c.Suggestions()))
				assert.Zero(t, c.Highlighted())
			} else {
				assert.Empty(t, c.Suggestions())
			}
		})
	}
}

func TestComposer_NavigationWraps(t *testing.T) {
	c := New(testSpaces[:3])
	c.SetText("@")
	require.Len(t, c.Suggestions(), 3)

	assert.Equal(t, ActionMoved, c.Key(KeyUp))
	assert.Equal(t, 2, c.Highlighted())
	assert.Equal(t, ActionMoved, c.Key(KeyDown))
	assert.Equal(t, 0, c.Highlighted())
	c.Key(KeyDown)
	assert.Equal(t, 1, c.Highlighted())
}

func TestComposer_CommitAndEscape(t *testing.T) {
	c := New(testSpaces)
	c.SetText("side effects @me")
	c.Key(KeyDown)

	assert.Equal(t, ActionCommitted, c.Key(KeyEnter))
	assert.Equal(t, "side effects @Mechanics ", c.Text())
	require.NotNil(t, c.Scope())
	assert.Equal(t, "id-mech", c.Scope().ID)
	assert.False(t, c.Open())

	// typing on does not reopen the list, and deleting the trailing space keeps it shut
	c.SetText("side effects @Mechanics")
	assert.False(t, c.Open())
	assert.NotNil(t, c.Scope())

	c.SetText("side effects @Mechanics @")
	assert.True(t, c.Open())
	assert.Equal(t, ActionDismissed, c.Key(KeyEscape))
	assert.False(t, c.Open())
	assert.Equal(t, "side effects @Mechanics @", c.Text())
}

func TestComposer_EnterSubmitsWhenClosed(t *testing.T) {
	c := New(testSpaces)
	c.SetText("hello")
	assert.Equal(t, ActionSubmit, c.Key(KeyEnter))
	assert.Equal(t, ActionNone, c.Key(KeyUp))
	assert.Equal(t, "hello", c.Text())
}

func TestComposer_ScopedQuery(t *testing.T) {
	t.Run("picked from the list", func(t *testing.T) {
		c := New(testSpaces)
		c.SetText("@Med")
		require.Equal(t, ActionCommitted, c.Key(KeyEnter))
		c.SetText(c.Text() + "side effects")

		assert.Equal(t, "@Medical side effects", c.Text())
		assert.Equal(t, "side effects", c.Query())
		assert.Equal(t, "id-med", c.Scope().ID)
	})

	t.Run("typed in full", func(t *testing.T) {
		c := New(testSpaces)
		c.SetText("@Medical side effects")
		assert.Equal(t, "side effects", c.Query())
		require.NotNil(t, c.Scope())
		assert.Equal(t, "id-med", c.Scope().ID)
	})

	t.Run("prefix of a longer name is not a scope", func(t *testing.T) {
		c := New(testSpaces)
		c.SetText("@Medicalish dose")
		assert.Nil(t, c.Scope())
		assert.Equal(t, "@Medicalish dose", c.Query())
	})

	t.Run("case pairs of different byte length", func(t *testing.T) {
		spaces := []model.Space{{ID: "id-ist", Name: "İstanbul"}, {ID: "id-kel", Name: "Kelvin"}}
		tests := []struct {
			text  string
			scope string
			query string
		}{
			{"@istanbul ferry times", "id-ist", "ferry times"},
			{"ferry times @İSTANBUL now", "id-ist", "ferry times  now"},
			// U+212A KELVIN SIGN folds to k but takes three bytes
			{"@Kelvin scale", "id-kel", "scale"},
		}
		for _, tt := range tests {
			c := New(spaces)
			c.SetText(tt.text)
			require.NotNil(t, c.Scope(), tt.text)
			assert.Equal(t, tt.scope, c.Scope().ID)
			assert.Equal(t, tt.query, c.Query())
		}

		c := New(spaces)
		c.SetText("@istanbul ferry")
		c.RemoveScope()
		assert.Equal(t, "ferry", c.Text())
	})
}

func TestComposer_ScopeRoundTrip(t *testing.T) {
	c := New(testSpaces)
	c.SetText("dosage limits @")
	require.Equal(t, ActionCommitted, c.Key(KeyEnter))
	require.Equal(t, "Medical", c.Scope().Name)

	c.RemoveScope()
	assert.Nil(t, c.Scope())
	assert.Equal(t, "dosage limits", c.Text())
	assert.Equal(t, "dosage limits", c.Query())
}

func TestComposer_EditingAwayAnnotationDropsScope(t *testing.T) {
	c := New(testSpaces)
	c.SetText("@Legal contracts")
	require.NotNil(t, c.Scope())

	c.SetText("@Lega contracts")
	assert.Nil(t, c.Scope())
}

func TestComposer_SetScope(t *testing.T) {
	c := New(testSpaces)
	c.SetText("@Legal   contracts  ")
	require.True(t, c.FocusSpace("id-fin"))

	assert.Equal(t, "@Finance contracts", c.Text())
	assert.Equal(t, "contracts", c.Query())
	assert.Equal(t, "id-fin", c.Scope().ID)
	assert.False(t, c.FocusSpace("missing"))
}

func TestComposer_CommitReplacesEarlierScope(t *testing.T) {
	c := New(testSpaces)
	c.SetText("@Legal terms @fin")
	require.Equal(t, ActionCommitted, c.Key(KeyEnter))

	assert.Equal(t, " terms @Finance ", c.Text())
	assert.Equal(t, "terms", c.Query())
	assert.Equal(t, "id-fin", c.Scope().ID)
}
