package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain returns UTF-8 content unchanged and decodes anything else as Latin-1.
func extractPlain(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	var b strings.Builder
	b.Grow(len(content))
	for _, c := range content {
		b.WriteRune(rune(c))
	}
	return b.String()
}
