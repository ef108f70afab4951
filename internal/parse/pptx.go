package parse

import (
	"context"
	"fmt"
	"strings"
)

// PowerPointParser handles .pptx files: one slide part per slide, an
// optional matching notes part, read directly from the OOXML zip (see
// ooxml.go).
type PowerPointParser struct{}

// NewPowerPointParser returns the .pptx parser.
func NewPowerPointParser() *PowerPointParser { return &PowerPointParser{} }

func (p *PowerPointParser) Format() Format { return FormatPowerPoint }

func (p *PowerPointParser) Parse(_ context.Context, path string, data []byte) (*ParsedContent, error) {
	slides, err := p.slides(path, data)
	if err != nil {
		return nil, err
	}

	var content strings.Builder
	for _, s := range slides {
		content.WriteString(fmt.Sprintf("# Slide %d\n", s.Index))
		content.WriteString(s.Text)
		if s.Notes != "" {
			content.WriteString("\n[Speaker Notes]\n")
			content.WriteString(s.Notes)
		}
		content.WriteString("\n\n")
	}

	return &ParsedContent{
		Content:      content.String(),
		Format:       FormatPowerPoint,
		OriginalPath: path,
		Metadata:     PowerPointMetadata{Slides: slides},
	}, nil
}

func (p *PowerPointParser) slides(path string, data []byte) ([]SlideInfo, error) {
	slideNames, err := ooxmlPartNames(data, "ppt/slides/", "slide", ".xml")
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "pptx container read failed: " + err.Error()}
	}
	if len(slideNames) == 0 {
		return nil, &ParseError{Path: path, Reason: "no slides found"}
	}

	slides := make([]SlideInfo, 0, len(slideNames))
	for i, name := range slideNames {
		xmlBytes, err := ooxmlPart(data, name)
		if err != nil || xmlBytes == nil {
			return nil, &ParseError{Path: path, Reason: fmt.Sprintf("slide part %q unreadable", name)}
		}
		text, err := parsePptxSlideText(xmlBytes)
		if err != nil {
			return nil, &ParseError{Path: path, Reason: fmt.Sprintf("slide %d decode failed: %s", i+1, err.Error())}
		}

		notes := ""
		notesName := fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", i+1)
		if notesXML, err := ooxmlPart(data, notesName); err == nil && notesXML != nil {
			if n, err := parsePptxNotesText(notesXML); err == nil {
				notes = n
			}
		}

		slides = append(slides, SlideInfo{Index: i + 1, Text: text, Notes: notes})
	}
	return slides, nil
}

// ExtractByParams returns one slide's text, optionally appending its
// speaker notes under the same "[Speaker Notes]" marker Parse uses.
// IncludeComments is accepted but has no effect: slide comments live in a
// separate OOXML part (ppt/comments/) this reader does not decode, so a
// request with IncludeComments returns the same text as one without it,
// with no error.
func (p *PowerPointParser) ExtractByParams(_ context.Context, path string, data []byte, params ExtractionParams) (string, error) {
	if params.Type != "powerpoint" {
		return "", &ExtractionError{Params: params, Reason: "expected type \"powerpoint\""}
	}
	slides, err := p.slides(path, data)
	if err != nil {
		return "", err
	}
	if params.Slide < 1 || params.Slide > len(slides) {
		return "", &ExtractionError{Params: params, Reason: fmt.Sprintf("slide %d out of range (presentation has %d slides)", params.Slide, len(slides))}
	}
	slide := slides[params.Slide-1]
	out := slide.Text
	if params.IncludeNotes && slide.Notes != "" {
		out += "\n[Speaker Notes]\n" + slide.Notes
	}
	return out, nil
}
