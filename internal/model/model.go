package model

// Package model contains the domain models shared by the API server and the client.
// Persistence tags follow the document-store field names; SQL repositories map columns explicitly.

import (
	"path/filepath"
	"slices"
	"strings"
)

// MaxFileSize is the largest accepted upload, in bytes.
const MaxFileSize = 50 * 1024 * 1024

// SupportedExtensions is the upload allow-list.
var SupportedExtensions = []string{".pdf", ".docx", ".pptx", ".txt"}

// FileType returns the lower-cased extension of filename without the dot, and whether it
// is on the allow-list.
func FileType(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(SupportedExtensions, ext) {
		return "", false
	}
	return strings.TrimPrefix(ext, "."), true
}
