package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnreadableFile means the upload is neither a workbook nor parseable CSV.
	ErrUnreadableFile = errors.New("unreadable file: not a spreadsheet or CSV")

	// ErrEmptyFile means the file decoded fine but contains no rows.
	ErrEmptyFile = errors.New("empty file: no sheets or rows")
)

// Read decodes uploaded file bytes into a RawGrid. It tries xlsx first and
// falls back to CSV. Native spreadsheet dates (serial day counts with a date
// number format) are converted to Date cells here, at read time.
func Read(data []byte) (RawGrid, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	grid, xlsxErr := readWorkbook(data)
	if xlsxErr == nil {
		return grid, nil
	}
	if errors.Is(xlsxErr, ErrEmptyFile) {
		return nil, ErrEmptyFile
	}

	grid, csvErr := readCSV(data)
	if csvErr == nil {
		return grid, nil
	}
	if errors.Is(csvErr, ErrEmptyFile) {
		return nil, ErrEmptyFile
	}

	return nil, fmt.Errorf("%w: %s", ErrUnreadableFile, xlsxErr)
}

func readWorkbook(data []byte) (RawGrid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	// First sheet with any content wins.
	for _, name := range sheets {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		if len(rows) == 0 {
			continue
		}
		return buildGrid(f, name, rows), nil
	}

	return nil, ErrEmptyFile
}

func buildGrid(f *excelize.File, sheetName string, rows [][]string) RawGrid {
	grid := make(RawGrid, 0, len(rows))
	for ri, row := range rows {
		cells := make([]Cell, 0, len(row))
		for ci, raw := range row {
			cells = append(cells, coerceCell(f, sheetName, ri, ci, raw))
		}
		grid = append(grid, cells)
	}
	return grid
}

// coerceCell classifies one raw cell value. A numeric value styled with a
// date number format is a serial date and converts via the 1900 epoch.
func coerceCell(f *excelize.File, sheetName string, row, col int, raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return EmptyCell()
	}

	num, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return TextCell(trimmed)
	}

	if axis, err := excelize.CoordinatesToCellName(col+1, row+1); err == nil {
		if cellHasDateFormat(f, sheetName, axis) {
			if t, err := excelize.ExcelDateToTime(num, false); err == nil {
				return DateCell(t)
			}
		}
	}

	return NumberCell(num)
}

// Built-in number format IDs 14-22 and 45-47 are the date/time formats.
func cellHasDateFormat(f *excelize.File, sheetName, axis string) bool {
	styleID, err := f.GetCellStyle(sheetName, axis)
	if err != nil {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if (style.NumFmt >= 14 && style.NumFmt <= 22) || (style.NumFmt >= 45 && style.NumFmt <= 47) {
		return true
	}
	if style.CustomNumFmt != nil {
		return customFormatLooksLikeDate(*style.CustomNumFmt)
	}
	return false
}

func customFormatLooksLikeDate(format string) bool {
	lower := strings.ToLower(format)
	for _, verb := range []string{"yy", "mmm", "dd", "d/m", "m/d", "d-m", "m-d"} {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

func readCSV(data []byte) (RawGrid, error) {
	if bytes.ContainsRune(data, 0) {
		return nil, errors.New("read csv: binary content")
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var grid RawGrid
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		cells := make([]Cell, 0, len(record))
		for _, field := range record {
			cells = append(cells, coerceCSVField(field))
		}
		grid = append(grid, cells)
	}

	if len(grid) == 0 {
		return nil, ErrEmptyFile
	}
	return grid, nil
}

// CSV has no native date type, so fields are only ever Text, Number or Empty.
// Date strings stay Text and are resolved by the shared date routine later.
func coerceCSVField(field string) Cell {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return EmptyCell()
	}
	if num, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return NumberCell(num)
	}
	return TextCell(trimmed)
}
