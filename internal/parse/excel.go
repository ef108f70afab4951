package parse

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelParser handles .xlsx workbooks and .csv files. CSV is modeled as a
// single-sheet workbook named "Sheet1" so the rest of the pipeline (C3's
// chunker, the get_sheet_data tool) never has to special-case it.
type ExcelParser struct{}

// NewExcelParser returns the .xlsx/.csv parser.
func NewExcelParser() *ExcelParser { return &ExcelParser{} }

func (p *ExcelParser) Format() Format { return FormatExcel }

func (p *ExcelParser) Parse(_ context.Context, path string, data []byte) (*ParsedContent, error) {
	var sheets []SheetInfo
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		rows, err := readCSVRows(data)
		if err != nil {
			return nil, &ParseError{Path: path, Reason: "csv decode failed: " + err.Error()}
		}
		sheets = []SheetInfo{sheetInfoFromRows("Sheet1", rows, false)}
	} else {
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, &ParseError{Path: path, Reason: "xlsx decode failed: " + err.Error()}
		}
		defer f.Close()

		for _, name := range f.GetSheetList() {
			rows, err := f.GetRows(name)
			if err != nil {
				return nil, &ParseError{Path: path, Reason: fmt.Sprintf("sheet %q unreadable: %s", name, err.Error())}
			}
			hasFormulas := sheetHasFormulas(f, name, rows)
			sheets = append(sheets, sheetInfoFromRows(name, rows, hasFormulas))
		}
	}

	var content strings.Builder
	for _, s := range sheets {
		content.WriteString("# Sheet: " + s.Name + "\n")
		content.WriteString(strings.Join(s.CSV, "\n"))
		content.WriteString("\n\n")
	}

	return &ParsedContent{
		Content:      content.String(),
		Format:       FormatExcel,
		OriginalPath: path,
		Metadata:     ExcelMetadata{Sheets: sheets},
	}, nil
}

func sheetHasFormulas(f *excelize.File, sheet string, rows [][]string) bool {
	for r := range rows {
		for c := range rows[r] {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			formula, err := f.GetCellFormula(sheet, cell)
			if err == nil && formula != "" {
				return true
			}
		}
	}
	return false
}

func sheetInfoFromRows(name string, rows [][]string, hasFormulas bool) SheetInfo {
	maxCols := 0
	csvRows := make([]string, len(rows))
	for i, row := range rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
		csvRows[i] = strings.Join(row, ",")
	}
	return SheetInfo{
		Name:        name,
		Rows:        len(rows),
		Cols:        maxCols,
		HasFormulas: hasFormulas,
		CSV:         csvRows,
	}
}

func readCSVRows(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(normalizeCSVBytes(data)))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func normalizeCSVBytes(data []byte) []byte {
	return []byte(normalizeNewlines(string(data)))
}

// ExtractByParams re-derives the exact content of one rectangular range of
// one sheet: rows [StartRow,EndRow] (1-based, header row is row 1) and
// columns [StartCol,EndCol] (A1-style letters), comma-joined per row and
// newline-joined across rows.
func (p *ExcelParser) ExtractByParams(ctx context.Context, path string, data []byte, params ExtractionParams) (string, error) {
	if params.Type != "excel" {
		return "", &ExtractionError{Params: params, Reason: "expected type \"excel\""}
	}
	parsed, err := p.Parse(ctx, path, data)
	if err != nil {
		return "", err
	}
	meta := parsed.Metadata.(ExcelMetadata)

	var sheet *SheetInfo
	for i := range meta.Sheets {
		if meta.Sheets[i].Name == params.Sheet {
			sheet = &meta.Sheets[i]
			break
		}
	}
	if sheet == nil {
		return "", &ExtractionError{Params: params, Reason: fmt.Sprintf("sheet %q not found", params.Sheet)}
	}
	if params.StartRow < 1 || params.EndRow < params.StartRow || params.EndRow > sheet.Rows {
		return "", &ExtractionError{Params: params, Reason: "start_row/end_row out of range"}
	}
	startCol, err := ColumnLetterToIndex(params.StartCol)
	if err != nil {
		return "", &ExtractionError{Params: params, Reason: err.Error()}
	}
	endCol, err := ColumnLetterToIndex(params.EndCol)
	if err != nil {
		return "", &ExtractionError{Params: params, Reason: err.Error()}
	}
	if endCol < startCol {
		return "", &ExtractionError{Params: params, Reason: "end_col before start_col"}
	}

	rawRows, err := reparseRawRows(path, data, params.Sheet)
	if err != nil {
		return "", err
	}

	var lines []string
	for r := params.StartRow; r <= params.EndRow; r++ {
		row := rawRows[r-1]
		var cells []string
		for c := startCol; c <= endCol; c++ {
			if c-1 < len(row) {
				cells = append(cells, row[c-1])
			} else {
				cells = append(cells, "")
			}
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n"), nil
}

func reparseRawRows(path string, data []byte, sheetName string) ([][]string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return readCSVRows(data)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "xlsx decode failed: " + err.Error()}
	}
	defer f.Close()
	return f.GetRows(sheetName)
}

// ColumnLetterToIndex converts an A1-style column letter ("A", "B", ...,
// "AA", ...) to a 1-based column index.
func ColumnLetterToIndex(letters string) (int, error) {
	if letters == "" {
		return 0, fmt.Errorf("empty column letter")
	}
	idx := 0
	for _, ch := range strings.ToUpper(letters) {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column letter %q", letters)
		}
		idx = idx*26 + int(ch-'A') + 1
	}
	return idx, nil
}

// IndexToColumnLetter is the inverse of ColumnLetterToIndex, used by C3
// when it computes ExtractionParams for a chunked range.
func IndexToColumnLetter(idx int) string {
	if idx <= 0 {
		return ""
	}
	var letters []byte
	for idx > 0 {
		idx--
		letters = append([]byte{byte('A' + idx%26)}, letters...)
		idx /= 26
	}
	return string(letters)
}
