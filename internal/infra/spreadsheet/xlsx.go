// Package spreadsheet converts catalog workbooks to and from CSV text.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
)

var ErrNoSheet = errors.New("spreadsheet: workbook has no sheets")

// IsXLSX reports whether a file name or content type denotes a workbook.
func IsXLSX(nameOrType string) bool {
	s := strings.ToLower(strings.TrimSpace(nameOrType))
	return strings.HasSuffix(s, ".xlsx") ||
		s == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ToCSV renders the first sheet of an xlsx workbook as CSV text.
// Fully empty rows become blank lines so CSV line numbers match sheet row
// numbers; trailing empty cells beyond the header width are trimmed.
func ToCSV(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("spreadsheet: open workbook: %w", err)
	}
	sheet, ok := firstSheet(f.GetSheetMap())
	if !ok {
		return "", ErrNoSheet
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	width := -1
	for _, row := range f.GetRows(sheet) {
		if isEmptyRow(row) {
			if err := w.Write(nil); err != nil {
				return "", fmt.Errorf("spreadsheet: write csv: %w", err)
			}
			continue
		}
		if width < 0 {
			row = trimTrailing(row, 0)
			width = len(row)
		} else {
			row = trimTrailing(row, width)
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("spreadsheet: write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("spreadsheet: write csv: %w", err)
	}
	return buf.String(), nil
}

// FromRecords builds a single-sheet workbook from CSV-style records.
func FromRecords(records [][]string) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Sheet1"
	for i, rec := range records {
		for j, v := range rec {
			f.SetCellValue(sheet, excelize.ToAlphaString(j)+strconv.Itoa(i+1), v)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func firstSheet(m map[int]string) (string, bool) {
	if len(m) == 0 {
		return "", false
	}
	idx := make([]int, 0, len(m))
	for i := range m {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return m[idx[0]], true
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// trimTrailing drops empty cells at the end of row while it is longer than min.
func trimTrailing(row []string, min int) []string {
	n := len(row)
	for n > min && strings.TrimSpace(row[n-1]) == "" {
		n--
	}
	return row[:n]
}
