package chunk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Aman-CERP/amanmcp/internal/parse"
)

// DocumentChunkerOptions configures token budgets shared across every
// format. A single budget, rather than one per format, keeps chunk sizing
// predictable across mixed folders of PDFs, spreadsheets, and slides.
type DocumentChunkerOptions struct {
	MaxTokens int
	MinTokens int
}

// DocumentChunker splits parse.ParsedContent into Chunks, dispatching on
// format: text/markdown/html chunk by heading and paragraph boundaries;
// excel chunks per sheet with the header row repeated; powerpoint chunks
// per slide; pdf and word chunk by page/paragraph groups. Every chunk
// carries the ExtractionParams needed to re-derive it directly from the
// source file (see internal/parse).
type DocumentChunker struct {
	opts DocumentChunkerOptions
}

// NewDocumentChunker creates a chunker with the default token budget
// (500 max / 100 min tokens).
func NewDocumentChunker() *DocumentChunker {
	return NewDocumentChunkerWithOptions(DocumentChunkerOptions{})
}

// NewDocumentChunkerWithOptions creates a chunker with custom budgets.
func NewDocumentChunkerWithOptions(opts DocumentChunkerOptions) *DocumentChunker {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxChunkTokens
	}
	if opts.MinTokens == 0 {
		opts.MinTokens = MinChunkTokens
	}
	return &DocumentChunker{opts: opts}
}

// SupportedFormats returns every format internal/parse can produce.
func (c *DocumentChunker) SupportedFormats() []parse.Format {
	return []parse.Format{
		parse.FormatText, parse.FormatMarkdown, parse.FormatHTML,
		parse.FormatPDF, parse.FormatWord, parse.FormatExcel, parse.FormatPowerPoint,
	}
}

// Chunk splits one parsed file according to its format.
func (c *DocumentChunker) Chunk(_ context.Context, file *FileInput) ([]*Chunk, error) {
	if file == nil || file.Parsed == nil {
		return nil, nil
	}
	if strings.TrimSpace(file.Parsed.Content) == "" {
		return nil, nil
	}

	now := time.Now()
	switch file.Parsed.Format {
	case parse.FormatExcel:
		meta, ok := file.Parsed.Metadata.(parse.ExcelMetadata)
		if !ok {
			return nil, fmt.Errorf("chunk: excel file missing ExcelMetadata")
		}
		return c.chunkExcel(file.Path, meta, now), nil
	case parse.FormatPowerPoint:
		meta, ok := file.Parsed.Metadata.(parse.PowerPointMetadata)
		if !ok {
			return nil, fmt.Errorf("chunk: powerpoint file missing PowerPointMetadata")
		}
		return c.chunkPowerPoint(file.Path, meta, now), nil
	case parse.FormatPDF:
		meta, ok := file.Parsed.Metadata.(parse.PDFMetadata)
		if !ok {
			return nil, fmt.Errorf("chunk: pdf file missing PDFMetadata")
		}
		return c.chunkPDF(file.Path, meta, now), nil
	case parse.FormatWord:
		meta, ok := file.Parsed.Metadata.(parse.WordMetadata)
		if !ok {
			return nil, fmt.Errorf("chunk: word file missing WordMetadata")
		}
		return c.chunkWord(file.Path, meta, now), nil
	default:
		// text, markdown, html all chunk by heading/paragraph boundary
		// over the same normalized text stream.
		return c.chunkText(file.Path, file.Parsed.Format, file.Parsed.Content, now), nil
	}
}

// --- text / markdown / html -------------------------------------------------

var headerPattern = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

// section is one heading-delimited region of the document.
type section struct {
	headerPath string
	content    string
	startLine  int // 0-indexed within the document
}

func (c *DocumentChunker) chunkText(path string, format parse.Format, content string, now time.Time) []*Chunk {
	sections := splitSections(content)

	var out []*Chunk
	for _, sec := range sections {
		out = append(out, c.chunkSection(path, format, sec, now, len(out))...)
	}
	return out
}

func splitSections(content string) []*section {
	lines := strings.Split(content, "\n")
	var sections []*section
	var headerStack [6]string
	var current *section
	var builder strings.Builder

	flush := func() {
		if current != nil {
			current.content = builder.String()
			sections = append(sections, current)
			builder.Reset()
		}
	}

	for lineNum, line := range lines {
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			flush()
			level := len(m[1])
			title := strings.TrimSpace(m[2])
			headerStack[level-1] = title
			for i := level; i < 6; i++ {
				headerStack[i] = ""
			}
			var parts []string
			for i := 0; i < level; i++ {
				if headerStack[i] != "" {
					parts = append(parts, headerStack[i])
				}
			}
			current = &section{headerPath: strings.Join(parts, " > "), startLine: lineNum}
		}
		builder.WriteString(line)
		builder.WriteString("\n")
		if current == nil && lineNum == len(lines)-1 {
			current = &section{startLine: 0}
		}
	}
	flush()

	if len(sections) == 0 {
		sections = append(sections, &section{content: content, startLine: 0})
	}
	return sections
}

func (c *DocumentChunker) chunkSection(path string, format parse.Format, sec *section, now time.Time, chunkIndexBase int) []*Chunk {
	trimmed := strings.TrimRight(sec.content, "\n")
	if strings.TrimSpace(trimmed) == "" {
		return nil
	}

	if estimateTokens(trimmed) <= c.opts.MaxTokens {
		start := sec.startLine + 1
		end := start + strings.Count(trimmed, "\n")
		return []*Chunk{c.newTextChunk(path, format, trimmed, start, end, sec.headerPath, chunkIndexBase, now)}
	}

	// Section too large: split on paragraph (blank-line) boundaries.
	paragraphs := strings.Split(trimmed, "\n\n")
	var out []*Chunk
	var buf strings.Builder
	lineCursor := sec.startLine + 1
	bufStart := lineCursor

	flush := func() {
		content := strings.TrimRight(buf.String(), "\n")
		if strings.TrimSpace(content) == "" {
			return
		}
		end := bufStart + strings.Count(content, "\n")
		out = append(out, c.newTextChunk(path, format, content, bufStart, end, sec.headerPath, chunkIndexBase+len(out), now))
		buf.Reset()
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if buf.Len() > 0 && estimateTokens(buf.String())+estimateTokens(para) > c.opts.MaxTokens {
			flush()
			bufStart = lineCursor
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(para)
		lineCursor += strings.Count(para, "\n") + 2
	}
	flush()

	// Merge an undersized trailing chunk into its predecessor rather than
	// emitting a fragment below MinTokens.
	if len(out) > 1 {
		last := out[len(out)-1]
		if estimateTokens(last.Content) < c.opts.MinTokens {
			prev := out[len(out)-2]
			prev.Content = prev.Content + "\n\n" + last.Content
			prev.EndLine = last.EndLine
			prev.Params.EndLine = last.EndLine
			out = out[:len(out)-1]
		}
	}
	return out
}

func (c *DocumentChunker) newTextChunk(path string, format parse.Format, content string, startLine, endLine int, headerPath string, index int, now time.Time) *Chunk {
	meta := map[string]string{}
	if headerPath != "" {
		meta["header_path"] = headerPath
	}
	return &Chunk{
		ID:         generateChunkID(path, index, content),
		FilePath:   path,
		Content:    content,
		Format:     format,
		ChunkIndex: index,
		StartLine:  startLine,
		EndLine:    endLine,
		Params: parse.ExtractionParams{
			Type: "text", Version: parse.CurrentExtractionParamsVersion,
			StartLine: startLine, EndLine: endLine,
		},
		Metadata:  meta,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// --- excel -------------------------------------------------------------

func (c *DocumentChunker) chunkExcel(path string, meta parse.ExcelMetadata, now time.Time) []*Chunk {
	var out []*Chunk
	for _, sheet := range meta.Sheets {
		if sheet.Rows == 0 {
			continue
		}
		endCol := parse.IndexToColumnLetter(sheet.Cols)
		header := sheet.CSV[0]
		dataStart := 2 // row 1 is the header; data begins at row 2
		if sheet.Rows < 2 {
			dataStart = 1 // header-only or single-row sheet
		}

		rowsPerChunk := rowsFittingBudget(sheet.CSV, dataStart, c.opts.MaxTokens, estimateTokens(header))
		for start := dataStart; start <= sheet.Rows; start += rowsPerChunk {
			end := start + rowsPerChunk - 1
			if end > sheet.Rows {
				end = sheet.Rows
			}
			var body strings.Builder
			if dataStart > 1 {
				body.WriteString(header)
				body.WriteString("\n")
			}
			for r := start; r <= end; r++ {
				body.WriteString(sheet.CSV[r-1])
				if r < end {
					body.WriteString("\n")
				}
			}
			content := "# Sheet: " + sheet.Name + "\n" + body.String()
			out = append(out, &Chunk{
				ID:         generateChunkID(path, len(out), content),
				FilePath:   path,
				Content:    content,
				Format:     parse.FormatExcel,
				ChunkIndex: len(out),
				Params: parse.ExtractionParams{
					Type: "excel", Version: parse.CurrentExtractionParamsVersion,
					Sheet: sheet.Name, StartRow: start, EndRow: end,
					StartCol: "A", EndCol: endCol,
				},
				Metadata: map[string]string{
					"sheet":        sheet.Name,
					"has_formulas": fmt.Sprintf("%t", sheet.HasFormulas),
				},
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
	}
	return out
}

// rowsFittingBudget returns how many data rows can share a chunk given
// the token budget, assuming roughly uniform row width.
func rowsFittingBudget(csvRows []string, dataStart, maxTokens, headerTokens int) int {
	if dataStart > len(csvRows) {
		return 1
	}
	avgTokens := estimateTokens(csvRows[dataStart-1])
	if avgTokens == 0 {
		avgTokens = 1
	}
	budget := maxTokens - headerTokens
	if budget <= 0 {
		budget = maxTokens
	}
	n := budget / avgTokens
	if n < 1 {
		n = 1
	}
	return n
}

// --- powerpoint ----------------------------------------------------------

func (c *DocumentChunker) chunkPowerPoint(path string, meta parse.PowerPointMetadata, now time.Time) []*Chunk {
	var out []*Chunk
	for _, slide := range meta.Slides {
		content := fmt.Sprintf("# Slide %d\n%s", slide.Index, slide.Text)
		includeNotes := slide.Notes != ""
		if includeNotes {
			content += "\n[Speaker Notes]\n" + slide.Notes
		}
		out = append(out, &Chunk{
			ID:         generateChunkID(path, len(out), content),
			FilePath:   path,
			Content:    content,
			Format:     parse.FormatPowerPoint,
			ChunkIndex: len(out),
			Params: parse.ExtractionParams{
				Type: "powerpoint", Version: parse.CurrentExtractionParamsVersion,
				Slide: slide.Index, IncludeNotes: includeNotes,
			},
			Metadata:  map[string]string{"slide": fmt.Sprintf("%d", slide.Index)},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return out
}

// --- pdf -----------------------------------------------------------------

func (c *DocumentChunker) chunkPDF(path string, meta parse.PDFMetadata, now time.Time) []*Chunk {
	var out []*Chunk
	start := 0
	for start < len(meta.Pages) {
		end := start
		var buf strings.Builder
		for end < len(meta.Pages) {
			pageContent := fmt.Sprintf("# Page %d\n%s", meta.Pages[end].Index, meta.Pages[end].Text)
			if buf.Len() > 0 && estimateTokens(buf.String())+estimateTokens(pageContent) > c.opts.MaxTokens {
				break
			}
			if buf.Len() > 0 {
				buf.WriteString("\n\n")
			}
			buf.WriteString(pageContent)
			end++
		}
		if end == start {
			end = start + 1 // a single oversized page still gets its own chunk
			buf.WriteString(fmt.Sprintf("# Page %d\n%s", meta.Pages[start].Index, meta.Pages[start].Text))
		}
		out = append(out, &Chunk{
			ID:         generateChunkID(path, len(out), buf.String()),
			FilePath:   path,
			Content:    buf.String(),
			Format:     parse.FormatPDF,
			ChunkIndex: len(out),
			Params: parse.ExtractionParams{
				Type: "pdf", Version: parse.CurrentExtractionParamsVersion,
				PageStart: meta.Pages[start].Index, PageEnd: meta.Pages[end-1].Index,
			},
			CreatedAt: now,
			UpdatedAt: now,
		})
		start = end
	}
	return out
}

// --- word ------------------------------------------------------------------

func (c *DocumentChunker) chunkWord(path string, meta parse.WordMetadata, now time.Time) []*Chunk {
	var out []*Chunk
	start := 0
	for start < len(meta.Paragraphs) {
		end := start
		var buf strings.Builder
		for end < len(meta.Paragraphs) {
			para := meta.Paragraphs[end]
			if buf.Len() > 0 && estimateTokens(buf.String())+estimateTokens(para) > c.opts.MaxTokens {
				break
			}
			if buf.Len() > 0 {
				buf.WriteString("\n\n")
			}
			buf.WriteString(para)
			end++
		}
		if end == start {
			end = start + 1
			buf.WriteString(meta.Paragraphs[start])
		}
		out = append(out, &Chunk{
			ID:         generateChunkID(path, len(out), buf.String()),
			FilePath:   path,
			Content:    buf.String(),
			Format:     parse.FormatWord,
			ChunkIndex: len(out),
			Params: parse.ExtractionParams{
				Type: "word", Version: parse.CurrentExtractionParamsVersion,
				ParagraphStart: start + 1, ParagraphEnd: end,
			},
			CreatedAt: now,
			UpdatedAt: now,
		})
		start = end
	}
	return out
}

// --- shared helpers --------------------------------------------------------

// estimateTokens approximates token count as len(text)/4.
func estimateTokens(text string) int {
	return len(text) / TokensPerChar
}

// generateChunkID derives a content-addressable ID so reindexing an
// unchanged document reproduces identical chunk IDs.
func generateChunkID(path string, index int, content string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", path, index, content)))
	return hex.EncodeToString(h[:])[:16]
}
