// Package parse converts the heterogeneous document formats folder-mcp
// indexes (plain text, Markdown, HTML, PDF, Word, Excel, PowerPoint) into a
// neutral ParsedContent stream the chunker can split without knowing the
// source format, plus the reverse operation (ExtractByParams) that
// deterministically re-derives a chunk's content from its ExtractionParams.
package parse

import (
	"context"
	"fmt"
	"strings"
)

// Format identifies the document format a parser understands.
type Format string

const (
	FormatText       Format = "text"
	FormatMarkdown   Format = "markdown"
	FormatHTML       Format = "html"
	FormatPDF        Format = "pdf"
	FormatWord       Format = "word"
	FormatExcel      Format = "excel"
	FormatPowerPoint Format = "powerpoint"
)

// ParsedContent is the neutral representation every parser produces.
// Content is the normalized textual stream the chunker splits; Metadata
// carries the format-specific structure (sheets, slides, pages, ...) the
// chunker needs to compute ExtractionParams.
type ParsedContent struct {
	Content      string
	Format       Format
	OriginalPath string
	Metadata     Metadata
}

// Metadata is implemented by each format's metadata variant. It exists
// purely to keep ParsedContent.Metadata a closed, type-switchable sum
// rather than a bag of untyped data.
type Metadata interface {
	isMetadata()
}

// TextMetadata carries nothing beyond line count; text/markdown chunking
// works directly off ParsedContent.Content.
type TextMetadata struct {
	LineCount int
}

func (TextMetadata) isMetadata() {}

// HTMLMetadata records the document title recovered during readability
// extraction, when present.
type HTMLMetadata struct {
	Title     string
	LineCount int
}

func (HTMLMetadata) isMetadata() {}

// SheetInfo describes one worksheet of a parsed workbook.
type SheetInfo struct {
	Name     string
	Rows     int
	Cols     int
	HasFormulas bool
	// CSV is the sheet's content rendered as comma-separated rows
	// (header row included), used both for the chunk stream and for
	// exact round-trip comparison.
	CSV []string // one entry per row, already comma-joined
}

// ExcelMetadata carries one SheetInfo per worksheet (csv files parse to a
// single synthetic "Sheet1").
type ExcelMetadata struct {
	Sheets []SheetInfo
}

func (ExcelMetadata) isMetadata() {}

// SlideInfo describes one slide of a parsed presentation.
type SlideInfo struct {
	Index    int // 1-based
	Text     string
	Notes    string
	Comments []string
}

// PowerPointMetadata carries one SlideInfo per slide, in slide order.
type PowerPointMetadata struct {
	Slides []SlideInfo
}

func (PowerPointMetadata) isMetadata() {}

// PageInfo describes one page of a parsed PDF.
type PageInfo struct {
	Index int // 1-based
	Text  string
}

// PDFMetadata carries one PageInfo per page, in page order.
type PDFMetadata struct {
	Pages []PageInfo
}

func (PDFMetadata) isMetadata() {}

// WordMetadata carries the paragraph boundaries of a parsed .docx,
// paragraph text in document order (1:1 with the original <w:p> elements).
type WordMetadata struct {
	Paragraphs []string
}

func (WordMetadata) isMetadata() {}

// ExtractionParams is the tagged, versioned descriptor that lets
// ExtractByParams re-derive a chunk's content from the original file
// deterministically. Exactly one of the format-specific field groups is
// meaningful, selected by Type.
type ExtractionParams struct {
	Type    string `json:"type"`
	Version int    `json:"version"`

	// text / markdown / html
	StartLine int `json:"start_line,omitempty"`
	EndLine   int `json:"end_line,omitempty"`

	// excel
	Sheet    string `json:"sheet,omitempty"`
	StartRow int    `json:"start_row,omitempty"`
	EndRow   int    `json:"end_row,omitempty"`
	StartCol string `json:"start_col,omitempty"`
	EndCol   string `json:"end_col,omitempty"`

	// powerpoint
	Slide           int  `json:"slide,omitempty"`
	IncludeNotes    bool `json:"include_notes,omitempty"`
	IncludeComments bool `json:"include_comments,omitempty"`

	// pdf
	PageStart int `json:"page_start,omitempty"`
	PageEnd   int `json:"page_end,omitempty"`

	// word
	ParagraphStart int `json:"paragraph_start,omitempty"`
	ParagraphEnd   int `json:"paragraph_end,omitempty"`
}

// CurrentExtractionParamsVersion is bumped whenever a variant's field
// shape changes; ExtractByParams refuses older versions with
// InvalidArgument so format drift is observable instead of silently wrong.
const CurrentExtractionParamsVersion = 1

// ParseError reports that a parser could not interpret a file's bytes.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
}

// ExtractionError reports that ExtractByParams was given out-of-range or
// otherwise invalid parameters.
type ExtractionError struct {
	Params ExtractionParams
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s(%s): %s", e.Params.Type, paramsSummary(e.Params), e.Reason)
}

func paramsSummary(p ExtractionParams) string {
	switch p.Type {
	case "excel":
		return fmt.Sprintf("sheet=%s rows=%d-%d cols=%s-%s", p.Sheet, p.StartRow, p.EndRow, p.StartCol, p.EndCol)
	case "powerpoint":
		return fmt.Sprintf("slide=%d", p.Slide)
	case "pdf":
		return fmt.Sprintf("pages=%d-%d", p.PageStart, p.PageEnd)
	case "word":
		return fmt.Sprintf("paragraphs=%d-%d", p.ParagraphStart, p.ParagraphEnd)
	default:
		return fmt.Sprintf("lines=%d-%d", p.StartLine, p.EndLine)
	}
}

// Parser is implemented by each format's parser.
type Parser interface {
	// Format returns the format this parser produces.
	Format() Format

	// Parse converts raw file bytes into neutral ParsedContent.
	Parse(ctx context.Context, path string, data []byte) (*ParsedContent, error)

	// ExtractByParams re-derives a chunk's content directly from the
	// original file bytes and its ExtractionParams, independent of
	// whatever chunking already happened. Used both for round-trip
	// reconstruction tests and for on-demand deep-link reads (get_pages et al.).
	ExtractByParams(ctx context.Context, path string, data []byte, params ExtractionParams) (string, error)
}

// normalizeNewlines collapses CRLF/CR to LF. Fingerprints are computed over
// raw bytes; chunk content is newline-normalized only, so line-ending churn
// alone never triggers a reindex but never corrupts stored content either.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}
