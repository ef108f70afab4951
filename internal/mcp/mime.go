package mcp

import (
	"path/filepath"
	"strings"
)

// mimeTypes maps the closed set of document extensions this server indexes
// to MIME types. There's no long tail of programming-language extensions
// to cover here, just the document formats the parser registry supports.
var mimeTypes = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".html": "text/html",
	".htm":  "text/html",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".csv":  "text/csv",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// MimeTypeForPath returns the MIME type for a document path based on its
// extension. Returns "application/octet-stream" for anything outside the
// eligible set, since such a path should never have been indexed.
func MimeTypeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
