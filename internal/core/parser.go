package core

// parser.go turns an uploaded template file into a field list.
//
// Every format is first read into a grid: trimmed header names plus the
// non-blank data rows. Columns are then typed with InferType using the
// first non-empty values of each column.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize is the default upload size limit for templates (10 MiB).
const DefaultMaxFileSize = 10 << 20

// Parser reads CSV and Excel templates.
type Parser struct {
	MaxFileSize int64 // Zero means DefaultMaxFileSize
	SampleSize  int   // Zero means InferSampleSize
}

// NewParser creates a parser with the given size limit.
func NewParser(maxFileSize int64) *Parser {
	return &Parser{MaxFileSize: maxFileSize, SampleSize: InferSampleSize}
}

// TemplateSummary describes the shape of a template without typing it.
type TemplateSummary struct {
	Headers  []string `json:"headers"`
	RowCount int      `json:"rowCount"`
}

// grid is the format-independent content of a template.
type grid struct {
	headers []string
	rows    [][]string

	// kind reports the native kind of a data cell. Nil means all text.
	kind func(row, col int) CellKind
}

// Parse reads the template and infers one field per column. It never
// returns an empty field list without an error.
func (p *Parser) Parse(data []byte, filename string) ([]Field, error) {
	g, err := p.read(data, filename)
	if err != nil {
		return nil, err
	}

	fields := make([]Field, len(g.headers))
	for col, name := range g.headers {
		fields[col] = NewField(name, InferType(name, g.samples(col, p.sampleSize())), col)
	}

	if err := ValidateFields(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Headers reads the template and returns its column names and data row count.
func (p *Parser) Headers(data []byte, filename string) (*TemplateSummary, error) {
	g, err := p.read(data, filename)
	if err != nil {
		return nil, err
	}
	return &TemplateSummary{Headers: g.headers, RowCount: len(g.rows)}, nil
}

func (p *Parser) maxFileSize() int64 {
	if p.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return p.MaxFileSize
}

func (p *Parser) sampleSize() int {
	if p.SampleSize <= 0 {
		return InferSampleSize
	}
	return p.SampleSize
}

func (p *Parser) read(data []byte, filename string) (*grid, error) {
	if len(data) == 0 {
		return nil, parseErrorf("file is empty")
	}
	if int64(len(data)) > p.maxFileSize() {
		return nil, parseErrorf("file too large: %d bytes exceeds the %d byte limit", len(data), p.maxFileSize())
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || ext == "." {
		return nil, parseErrorf("file has no extension")
	}

	var (
		g   *grid
		err error
	)
	switch ext {
	case ".csv":
		g, err = readCSV(data)
	case ".xlsx":
		g, err = readXLSX(data, p.sampleSize())
	case ".xls":
		g, err = readXLS(data)
	default:
		return nil, parseErrorf("unsupported file format %q (use .csv, .xls or .xlsx)", ext)
	}
	if err != nil {
		return nil, err
	}

	if len(g.headers) == 0 {
		return nil, parseErrorf("no valid columns")
	}
	if len(g.rows) == 0 {
		return nil, parseErrorf("no data rows")
	}
	return g, nil
}

// readCSV parses comma-separated text. Every data row must have as many
// cells as the header.
func readCSV(data []byte) (*grid, error) {
	r := csv.NewReader(strings.NewReader(decodeText(data)))
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Reason: "invalid csv", Err: err}
		}
		if isBlankRow(rec) {
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return &grid{}, nil
	}

	width := len(records[0])
	for i, rec := range records[1:] {
		if len(rec) != width {
			return nil, &ParseError{
				Reason: "invalid csv",
				Err:    fmt.Errorf("data row %d has %d fields, header has %d", i+1, len(rec), width),
			}
		}
	}

	return &grid{
		headers: headerNames(records[0], width),
		rows:    records[1:],
	}, nil
}

// fromSheetRows builds a grid from spreadsheet rows of uneven length.
// rowNums receives the zero-based sheet index of every data row kept.
func fromSheetRows(rows [][]string) (g *grid, rowNums []int) {
	var header []string
	headerFound := false
	width := 0

	g = &grid{}
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		width = max(width, len(row))
		if !headerFound {
			header = row
			headerFound = true
			continue
		}
		g.rows = append(g.rows, row)
		rowNums = append(rowNums, i)
	}
	if !headerFound {
		return g, nil
	}

	for i, row := range g.rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			g.rows[i] = padded
		}
	}
	g.headers = headerNames(header, width)
	return g, rowNums
}

// headerNames trims the raw header cells and names blank ones by position.
func headerNames(raw []string, width int) []string {
	names := make([]string, width)
	for i := range names {
		if i < len(raw) {
			names[i] = strings.TrimSpace(raw[i])
		}
		if names[i] == "" {
			names[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	return names
}

// samples returns up to n non-empty cells of a column, top to bottom.
func (g *grid) samples(col, n int) []Cell {
	out := make([]Cell, 0, n)
	for i, row := range g.rows {
		if len(out) == n {
			break
		}
		if col >= len(row) || strings.TrimSpace(row[col]) == "" {
			continue
		}
		c := Cell{Value: row[col], Kind: KindText}
		if g.kind != nil {
			c.Kind = g.kind(i, col)
		}
		out = append(out, c)
	}
	return out
}
