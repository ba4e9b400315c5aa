package results

import (
	"regexp"
	"strings"
)

var (
	asteriskRun = regexp.MustCompile(`\*{3,}`)
	boldMarker  = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// italMarker needs non-space text at both inner edges, so a "* " list marker never opens
// an italic span.
var italMarker = regexp.MustCompile(`\*([^\s*](?:[^*\n]*?[^\s*])?)\*`)

// Paragraphs turns a generated answer into display paragraphs. Bold and italic markdown
// become <strong> and <em>; stray asterisks and empty lines are dropped.
func Paragraphs(text string) []string {
	text = asteriskRun.ReplaceAllString(text, "")
	text = boldMarker.ReplaceAllString(text, "<strong>$1</strong>")
	text = italMarker.ReplaceAllString(text, "<em>$1</em>")

	var out []string
	for _, p := range strings.Split(text, "\n") {
		p = strings.Trim(strings.TrimSpace(p), "*")
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
