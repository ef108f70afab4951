package parse

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFParser handles .pdf files via ledongthuc/pdf, which exposes one
// Page() call per page — exactly the granularity a page_start/page_end
// ExtractionParams re-extraction needs.
type PDFParser struct{}

// NewPDFParser returns the .pdf parser.
func NewPDFParser() *PDFParser { return &PDFParser{} }

func (p *PDFParser) Format() Format { return FormatPDF }

func (p *PDFParser) Parse(_ context.Context, path string, data []byte) (*ParsedContent, error) {
	pages, err := readPDFPages(path, data)
	if err != nil {
		return nil, err
	}

	var content strings.Builder
	for _, pg := range pages {
		content.WriteString(fmt.Sprintf("# Page %d\n", pg.Index))
		content.WriteString(pg.Text)
		content.WriteString("\n\n")
	}

	return &ParsedContent{
		Content:      content.String(),
		Format:       FormatPDF,
		OriginalPath: path,
		Metadata:     PDFMetadata{Pages: pages},
	}, nil
}

func readPDFPages(path string, data []byte) ([]PageInfo, error) {
	reader := bytes.NewReader(data)
	r, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "pdf decode failed: " + err.Error()}
	}

	numPages := r.NumPage()
	pages := make([]PageInfo, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, PageInfo{Index: i, Text: ""})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &ParseError{Path: path, Reason: fmt.Sprintf("page %d extraction failed: %s", i, err.Error())}
		}
		pages = append(pages, PageInfo{Index: i, Text: normalizeNewlines(text)})
	}
	return pages, nil
}

// ExtractByParams returns pages [PageStart,PageEnd] (1-based, inclusive),
// their text joined by blank lines, without the "# Page N" headers Parse adds.
func (p *PDFParser) ExtractByParams(_ context.Context, path string, data []byte, params ExtractionParams) (string, error) {
	if params.Type != "pdf" {
		return "", &ExtractionError{Params: params, Reason: "expected type \"pdf\""}
	}
	pages, err := readPDFPages(path, data)
	if err != nil {
		return "", err
	}
	if params.PageStart < 1 || params.PageEnd < params.PageStart || params.PageEnd > len(pages) {
		return "", &ExtractionError{Params: params, Reason: fmt.Sprintf("page_start/page_end out of range (document has %d pages)", len(pages))}
	}
	var b strings.Builder
	for i := params.PageStart; i <= params.PageEnd; i++ {
		if i > params.PageStart {
			b.WriteString("\n\n")
		}
		b.WriteString(pages[i-1].Text)
	}
	return b.String(), nil
}
