// Package chunk splits parsed document content into retrievable,
// token-budgeted chunks, each carrying the ExtractionParams needed to
// deterministically re-derive its content from the source file.
package chunk

import (
	"context"
	"time"

	"github.com/Aman-CERP/amanmcp/internal/parse"
)

// Chunk size defaults.
const (
	DefaultMaxChunkTokens = 500 // Maximum tokens per chunk
	MinChunkTokens        = 100 // Minimum viable chunk; undershot only on a trailing remainder
	TokensPerChar         = 4   // Token estimator: len(text)/4
)

// Chunk is a retrievable unit of document content.
type Chunk struct {
	ID         string // content-addressable: sha256(file_path + index + content)[:16]
	FilePath   string // Relative to the indexed root
	Content    string // Chunk text, as embedded and returned to callers
	Format     parse.Format
	ChunkIndex int // 0-based position within the document's chunk sequence
	StartLine  int // 1-indexed; meaningful for text/markdown/html, 0 otherwise
	EndLine    int // Inclusive

	// Params lets a chunk's content be re-derived directly from the
	// original file, independent of this chunking pass.
	Params parse.ExtractionParams

	KeyPhrases  []string // Optional, populated by contextual enrichment
	Readability float64  // Flesch reading ease; 0 when not computed

	Metadata  map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FileInput is input for the Chunker interface: a file's parsed content
// plus its format, keyed off the same extension set internal/parse
// supports.
type FileInput struct {
	Path   string
	Parsed *parse.ParsedContent
}

// Chunker splits a parsed file into chunks.
type Chunker interface {
	Chunk(ctx context.Context, file *FileInput) ([]*Chunk, error)

	// SupportedFormats returns the parse.Format values this chunker handles.
	SupportedFormats() []parse.Format
}
