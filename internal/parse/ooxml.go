package parse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ooxmlPart reads one named part out of a .docx/.pptx zip container.
// Returns nil, nil if the part doesn't exist (e.g. a slide with no notes).
func ooxmlPart(data []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("not a valid OOXML zip container: %w", err)
	}
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}

// ooxmlPartNames lists zip entries matching a prefix, sorted by the
// trailing numeric slide/notesSlide index (slide10.xml must sort after
// slide2.xml, not before it).
func ooxmlPartNames(data []byte, dir, prefix, suffix string) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("not a valid OOXML zip container: %w", err)
	}
	var names []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, dir+prefix) && strings.HasSuffix(f.Name, suffix) {
			names = append(names, f.Name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return ooxmlPartIndex(names[i], dir, prefix, suffix) < ooxmlPartIndex(names[j], dir, prefix, suffix)
	})
	return names, nil
}

func ooxmlPartIndex(name, dir, prefix, suffix string) int {
	core := strings.TrimSuffix(strings.TrimPrefix(name, dir+prefix), suffix)
	n, _ := strconv.Atoi(core)
	return n
}

// wordprocessingParagraph and drawingTextRun mirror the small slice of the
// OOXML schema we care about: run text inside a paragraph/shape, in
// document order. Decoding directly with encoding/xml (rather than a
// third-party docx/pptx wrapper) keeps paragraph and slide boundaries
// exactly aligned with the underlying <w:p>/<p:sp> elements, which is what
// an ExtractionParams round-trip needs to reconstruct content byte-for-byte.
type xmlRun struct {
	Text string `xml:",chardata"`
}

type xmlParagraph struct {
	Runs []xmlRun `xml:"r>t"`
}

func joinRuns(runs []xmlRun) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// docxDocument models word/document.xml down to paragraph/run level.
type docxDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    struct {
		Paragraphs []xmlParagraph `xml:"p"`
	} `xml:"body"`
}

func parseDocxParagraphs(xmlBytes []byte) ([]string, error) {
	var doc docxDocument
	if err := xml.Unmarshal(xmlBytes, &doc); err != nil {
		return nil, err
	}
	paras := make([]string, 0, len(doc.Body.Paragraphs))
	for _, p := range doc.Body.Paragraphs {
		paras = append(paras, strings.TrimRight(joinRuns(p.Runs), " "))
	}
	return paras, nil
}

// pptxSlide models a ppt/slides/slideN.xml shape tree down to run level:
// every <a:t> inside any shape's text body, in document order. The root
// element is not pinned, so a notes slide (<p:notes>) decodes the same way.
type pptxSlide struct {
	CSld struct {
		SpTree struct {
			Shapes []struct {
				TxBody struct {
					Paragraphs []struct {
						Runs []xmlRun `xml:"r>t"`
					} `xml:"p"`
				} `xml:"txBody"`
			} `xml:"sp"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

func parsePptxSlideText(xmlBytes []byte) (string, error) {
	var slide pptxSlide
	if err := xml.Unmarshal(xmlBytes, &slide); err != nil {
		return "", err
	}
	var lines []string
	for _, sp := range slide.CSld.SpTree.Shapes {
		for _, p := range sp.TxBody.Paragraphs {
			line := joinRuns(p.Runs)
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

// parsePptxNotesText reads ppt/notesSlides/notesSlideN.xml with the same
// pptxSlide model; notes live in a second placeholder shape, but
// concatenating every shape's text is equivalent and simpler.
func parsePptxNotesText(xmlBytes []byte) (string, error) {
	return parsePptxSlideText(xmlBytes)
}
