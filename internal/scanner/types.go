// Package scanner provides file scanning functionality for folder-mcp.
// It discovers indexable files in a project, respecting exclusion patterns,
// .gitignore rules, and sensitive file patterns.
package scanner

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/Aman-CERP/amanmcp/internal/parse"
)

// FileInfo contains metadata about a discovered file.
type FileInfo struct {
	Path        string      // Relative path to project root
	AbsPath     string      // Absolute path
	Size        int64       // File size in bytes
	ModTime     time.Time   // Last modification time
	Format      parse.Format // text, markdown, html, pdf, word, excel, powerpoint
	IsGenerated bool        // Detected as generated file
}

// ScanOptions configures the scanner behavior.
type ScanOptions struct {
	// RootDir is the project root directory to scan.
	RootDir string

	// IncludePatterns specifies patterns to include (empty = all).
	IncludePatterns []string

	// ExcludePatterns specifies patterns to exclude.
	ExcludePatterns []string

	// RespectGitignore enables .gitignore parsing.
	RespectGitignore bool

	// Workers sizes the result channel buffer (Workers*10; 0 = NumCPU).
	// The directory walk itself runs in a single goroutine.
	Workers int

	// MaxFileSize is the maximum file size to include in bytes (0 = 10MB default).
	MaxFileSize int64

	// FollowSymlinks enables following symbolic links (default: false).
	FollowSymlinks bool

	// ProgressFunc is accepted but not called by Scan or ScanSubtree.
	ProgressFunc func(scanned, total int)
}

// ScanResult is returned from the scanner channel.
type ScanResult struct {
	File  *FileInfo
	Error error
}

// DefaultMaxFileSize is the default maximum file size (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// formatRegistry is the closed set of document formats folder-mcp can parse.
// Kept as a package-level registry (stateless) rather than constructed per
// file: extension lookup is the only thing the scanner needs from it.
var formatRegistry = parse.NewRegistry()

// formatOf maps extensions to their parse.Format, mirroring
// parse.Registry's closed extension set one-to-one.
var formatOf = map[string]parse.Format{
	".txt":      parse.FormatText,
	".md":       parse.FormatMarkdown,
	".markdown": parse.FormatMarkdown,
	".html":     parse.FormatHTML,
	".htm":      parse.FormatHTML,
	".pdf":      parse.FormatPDF,
	".docx":     parse.FormatWord,
	".xlsx":     parse.FormatExcel,
	".csv":      parse.FormatExcel,
	".pptx":     parse.FormatPowerPoint,
}

// DetectFormat returns the document format eligible for a path, or ""
// if the extension falls outside the closed set internal/parse supports.
func DetectFormat(path string) parse.Format {
	ext := strings.ToLower(extension(path))
	if !formatRegistry.IsSupported(ext) {
		return ""
	}
	return formatOf[ext]
}

// IsBinaryFormat reports whether a format's files are legitimately
// binary containers (zip-based OOXML, PDF) so the scanner's null-byte
// binary sniff heuristic, aimed at excluding compiled artifacts, doesn't
// also exclude the documents this tool exists to index.
func IsBinaryFormat(f parse.Format) bool {
	switch f {
	case parse.FormatPDF, parse.FormatWord, parse.FormatExcel, parse.FormatPowerPoint:
		return true
	default:
		return false
	}
}

// baseName returns the file name from a path.
func baseName(path string) string {
	return filepath.Base(path)
}

// extension returns the file extension from a path (including the dot).
func extension(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' || path[i] == '\\' {
			break
		}
	}
	return ""
}
