package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_ShortText(t *testing.T) {
	s := New(500, 50)
	assert.Equal(t, []string{"hello world"}, s.Split("  hello world \n"))
	assert.Empty(t, s.Split(""))
	assert.Empty(t, s.Split("   \n\n  "))
}

func TestSplit_Paragraphs(t *testing.T) {
	s := New(20, 0)
	got := s.Split("first paragraph\n\nsecond paragraph\n\nthird")
	assert.Equal(t, []string{"first paragraph", "second paragraph", "third"}, got)
}

func TestSplit_WordsWithOverlap(t *testing.T) {
	s := New(10, 5)
	got := s.Split("aaa bbb ccc ddd eee")
	assert.Equal(t, []string{"aaa bbb", "bbb ccc", "ccc ddd", "ddd eee"}, got)
}

func TestSplit_LongWordFallsBackToRunes(t *testing.T) {
	s := New(4, 0)
	got := s.Split("abcdefghij")
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, got)
}

func TestSplit_CountsRunes(t *testing.T) {
	s := New(11, 0)
	assert.Equal(t, []string{"héllo wörld"}, s.Split("héllo wörld"))
}

func TestSplit_BoundsAndOrder(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteString("word")
		if i%25 == 24 {
			b.WriteString(".\n\n")
		} else {
			b.WriteString(" ")
		}
	}
	text := b.String()

	s := New(500, 50)
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 500)
		assert.NotEmpty(t, c)
	}
	assert.True(t, strings.HasPrefix(chunks[0], "word word"))
	assert.True(t, strings.HasSuffix(chunks[len(chunks)-1], "word."))
}
