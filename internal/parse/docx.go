package parse

import (
	"context"
	"fmt"
	"strings"
)

// WordParser handles .docx files by reading word/document.xml directly
// out of the OOXML zip container (see ooxml.go for why).
type WordParser struct{}

// NewWordParser returns the .docx parser.
func NewWordParser() *WordParser { return &WordParser{} }

func (p *WordParser) Format() Format { return FormatWord }

func (p *WordParser) Parse(_ context.Context, path string, data []byte) (*ParsedContent, error) {
	paras, err := p.paragraphs(path, data)
	if err != nil {
		return nil, err
	}
	return &ParsedContent{
		Content:      strings.Join(paras, "\n\n"),
		Format:       FormatWord,
		OriginalPath: path,
		Metadata:     WordMetadata{Paragraphs: paras},
	}, nil
}

func (p *WordParser) paragraphs(path string, data []byte) ([]string, error) {
	xmlBytes, err := ooxmlPart(data, "word/document.xml")
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "docx container read failed: " + err.Error()}
	}
	if xmlBytes == nil {
		return nil, &ParseError{Path: path, Reason: "word/document.xml missing"}
	}
	paras, err := parseDocxParagraphs(xmlBytes)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "document.xml decode failed: " + err.Error()}
	}
	return paras, nil
}

// ExtractByParams returns paragraphs [ParagraphStart,ParagraphEnd]
// (1-based, inclusive), joined the same way Parse joins them.
func (p *WordParser) ExtractByParams(_ context.Context, path string, data []byte, params ExtractionParams) (string, error) {
	if params.Type != "word" {
		return "", &ExtractionError{Params: params, Reason: "expected type \"word\""}
	}
	paras, err := p.paragraphs(path, data)
	if err != nil {
		return "", err
	}
	if params.ParagraphStart < 1 || params.ParagraphEnd < params.ParagraphStart || params.ParagraphEnd > len(paras) {
		return "", &ExtractionError{Params: params, Reason: fmt.Sprintf("paragraph_start/paragraph_end out of range (document has %d paragraphs)", len(paras))}
	}
	return strings.Join(paras[params.ParagraphStart-1:params.ParagraphEnd], "\n\n"), nil
}
