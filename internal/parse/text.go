package parse

import (
	"context"
	"strings"
)

// TextParser handles plain .txt files. MarkdownParser reuses it verbatim:
// the chunker treats Markdown structure (headings, fences) itself, so the
// parser stage for both formats is "decode bytes, normalize newlines,
// count lines" — anything fancier here would just be redone by C3.
type TextParser struct {
	format Format
}

// NewTextParser returns the .txt parser.
func NewTextParser() *TextParser { return &TextParser{format: FormatText} }

// NewMarkdownParser returns the .md parser (same pipeline, tagged Markdown
// so the chunker and get_document_outline know to look for headings).
func NewMarkdownParser() *TextParser { return &TextParser{format: FormatMarkdown} }

func (p *TextParser) Format() Format { return p.format }

func (p *TextParser) Parse(_ context.Context, path string, data []byte) (*ParsedContent, error) {
	content := normalizeNewlines(string(data))
	return &ParsedContent{
		Content:      content,
		Format:       p.format,
		OriginalPath: path,
		Metadata:     TextMetadata{LineCount: lineCount(content)},
	}, nil
}

func (p *TextParser) ExtractByParams(_ context.Context, path string, data []byte, params ExtractionParams) (string, error) {
	if params.Type != "text" {
		return "", &ExtractionError{Params: params, Reason: "expected type \"text\""}
	}
	lines := strings.Split(normalizeNewlines(string(data)), "\n")
	return sliceLines(path, lines, params)
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

// sliceLines extracts the inclusive 1-based [StartLine, EndLine] range,
// shared by the text/markdown/html parsers since they all key
// ExtractionParams off line ranges of the normalized content stream.
func sliceLines(path string, lines []string, params ExtractionParams) (string, error) {
	if params.StartLine < 1 || params.EndLine < params.StartLine {
		return "", &ExtractionError{Params: params, Reason: "start_line/end_line out of range"}
	}
	if params.EndLine > len(lines) {
		return "", &ExtractionError{Params: params, Reason: "end_line beyond document length"}
	}
	selected := lines[params.StartLine-1 : params.EndLine]
	return strings.Join(selected, "\n"), nil
}
