// Package extract turns uploaded document bytes into plain text.
package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned for extensions outside the upload allow-list.
var ErrUnsupported = errors.New("extract: unsupported file format")

// Extractor extracts plain text from PDF, DOCX, PPTX and TXT content.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the text of content. ext is the file extension with or without the
// leading dot, in any case.
func (e *Extractor) Extract(content []byte, ext string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch ext {
	case "pdf":
		return extractPDF(content)
	case "docx":
		return extractDOCX(content)
	case "pptx":
		return extractPPTX(content)
	case "txt":
		return extractPlain(content), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
}
