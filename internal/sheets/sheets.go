// Package sheets reads uploaded CSV and XLSX tables and renders tables back
// into either format for download.
package sheets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for anything other than .csv and .xlsx
var ErrUnsupportedFormat = errors.New("only CSV and XLSX files are supported")

// markSuffix flags required columns in XLSX headers. Readers strip it.
const markSuffix = " *"

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ParseFormat accepts "csv" or "xlsx", any case
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", ErrUnsupportedFormat
}

// FormatOf picks the format from a file name's extension
func FormatOf(filename string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Record is one data row. Line is the row number in the file, the header
// being line 1.
type Record struct {
	Line   int
	Fields map[string]string
}

// Get looks a field up by header name, ignoring case
func (r Record) Get(name string) string {
	return r.Fields[strings.ToLower(name)]
}

// Read parses every data row of the first sheet
func Read(r io.Reader, format Format) ([]Record, error) {
	var grid [][]string
	var err error
	switch format {
	case FormatCSV:
		grid, err = readCSV(r)
	case FormatXLSX:
		grid, err = readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, errors.New("file has no header row")
	}
	return toRecords(grid), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	grid, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	return grid, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid XLSX: %w", err)
	}
	defer book.Close()

	sheetNames := book.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	grid, err := book.GetRows(sheetNames[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheetNames[0], err)
	}
	return grid, nil
}

func headerKey(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(h), strings.TrimSpace(markSuffix))))
}

// toRecords keys each row by the normalised header, dropping blank rows and
// cells past the last header.
func toRecords(grid [][]string) []Record {
	keys := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		keys[i] = headerKey(h)
	}

	records := make([]Record, 0, len(grid)-1)
	for i, cells := range grid[1:] {
		fields := make(map[string]string, len(keys))
		blank := true
		for col, key := range keys {
			if col >= len(cells) || key == "" {
				continue
			}
			v := strings.TrimSpace(cells[col])
			if v != "" {
				blank = false
			}
			fields[key] = v
		}
		if blank {
			continue
		}
		records = append(records, Record{Line: i + 2, Fields: fields})
	}
	return records
}

type Column struct {
	Name   string
	Marked bool
	Width  float64
}

// Table is what Write renders: one header row followed by Rows
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

func (t Table) header(marks bool) []string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = col.Name
		if marks && col.Marked {
			out[i] += markSuffix
		}
	}
	return out
}

func Write(w io.Writer, format Format, t Table) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, t)
	case FormatXLSX:
		return writeXLSX(w, t)
	}
	return ErrUnsupportedFormat
}

func writeCSV(w io.Writer, t Table) error {
	out := csv.NewWriter(w)
	if err := out.Write(t.header(false)); err != nil {
		return err
	}
	if err := out.WriteAll(t.Rows); err != nil {
		return err
	}
	return out.Error()
}

func writeXLSX(w io.Writer, t Table) error {
	book := excelize.NewFile()
	defer book.Close()

	sheet := t.Title
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := book.SetSheetName(book.GetSheetName(0), sheet); err != nil {
		return err
	}

	plain, err := book.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2F5597"}},
		Border: []excelize.Border{{Type: "bottom", Color: "1F3864", Style: 2}},
	})
	if err != nil {
		return err
	}
	marked, err := book.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"B4441C"}},
		Border: []excelize.Border{{Type: "bottom", Color: "843C0C", Style: 2}},
	})
	if err != nil {
		return err
	}

	stream, err := book.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	for i, col := range t.Columns {
		width := col.Width
		if width == 0 {
			width = 16
		}
		if err := stream.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}

	headerCells := make([]interface{}, len(t.Columns))
	for i, label := range t.header(true) {
		style := plain
		if t.Columns[i].Marked {
			style = marked
		}
		headerCells[i] = excelize.Cell{StyleID: style, Value: label}
	}
	if err := stream.SetRow("A1", headerCells); err != nil {
		return err
	}

	for r, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		anchor, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := stream.SetRow(anchor, cells); err != nil {
			return err
		}
	}
	if err := stream.Flush(); err != nil {
		return err
	}
	_, err = book.WriteTo(w)
	return err
}
