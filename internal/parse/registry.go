package parse

import (
	"context"
	"fmt"
	"strings"
)

// Registry dispatches by file extension to the parser that understands it.
// It is the single source of truth for "is this extension eligible" —
// internal/scanner's Fileset Service filter calls IsSupported directly so
// the two can never drift.
type Registry struct {
	byExt map[string]Parser
}

// NewRegistry builds the registry with one parser per supported format.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Parser)}
	r.register(NewTextParser(), ".txt")
	r.register(NewMarkdownParser(), ".md")
	r.register(NewHTMLParser(), ".html", ".htm")
	r.register(NewPDFParser(), ".pdf")
	r.register(NewWordParser(), ".docx")
	r.register(NewExcelParser(), ".xlsx", ".csv")
	r.register(NewPowerPointParser(), ".pptx")
	return r
}

func (r *Registry) register(p Parser, exts ...string) {
	for _, ext := range exts {
		r.byExt[ext] = p
	}
}

// IsSupported reports whether ext (including the leading dot, any case) is
// one of the closed set of eligible extensions.
func (r *Registry) IsSupported(ext string) bool {
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}

// SupportedExtensions returns the closed eligible extension set.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}

// ParserFor returns the parser registered for ext, if any.
func (r *Registry) ParserFor(ext string) (Parser, bool) {
	p, ok := r.byExt[strings.ToLower(ext)]
	return p, ok
}

// Parse dispatches to the parser registered for path's extension.
func (r *Registry) Parse(ctx context.Context, path string, data []byte) (*ParsedContent, error) {
	ext := extOf(path)
	p, ok := r.ParserFor(ext)
	if !ok {
		return nil, &ParseError{Path: path, Reason: fmt.Sprintf("unsupported extension %q", ext)}
	}
	return p.Parse(ctx, path, data)
}

// ExtractByParams dispatches to the parser registered for path's
// extension and re-derives content from params against data.
func (r *Registry) ExtractByParams(ctx context.Context, path string, data []byte, params ExtractionParams) (string, error) {
	ext := extOf(path)
	p, ok := r.ParserFor(ext)
	if !ok {
		return "", &ParseError{Path: path, Reason: fmt.Sprintf("unsupported extension %q", ext)}
	}
	if params.Version != CurrentExtractionParamsVersion {
		return "", &ExtractionError{Params: params, Reason: fmt.Sprintf("unsupported extraction params version %d", params.Version)}
	}
	return p.ExtractByParams(ctx, path, data, params)
}

func extOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return strings.ToLower(path[idx:])
}
