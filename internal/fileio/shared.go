package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Record is one data row of a sheet keyed by header. Line is the 1-based
// spreadsheet line; Empty marks rows with no non-blank cell.
type Record struct {
	Line  int
	Cells map[string]string
	Empty bool
}

// ReadAnyRows picks a reader by extension and returns the first sheet as
// raw rows, blank rows included.
func ReadAnyRows(r io.Reader, filename string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	case ".csv", ".txt":
		return readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
}

// DetectHeaderRow returns 1 or 2: the row among the first two in which
// known recognizes more cells. Ties go to row 1.
func DetectHeaderRow(rows [][]string, known func(string) bool) int {
	count := func(i int) int {
		if i >= len(rows) {
			return 0
		}
		n := 0
		for _, c := range rows[i] {
			if known(c) {
				n++
			}
		}
		return n
	}
	if count(1) > count(0) {
		return 2
	}
	return 1
}

// Header takes the header row and fills blanks with "Column N".
func Header(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	if len(rows) == 0 {
		return nil
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = strings.TrimSpace(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// Records converts rows below headerRow into keyed records. Blank rows are
// kept and flagged so callers can count them.
func Records(rows [][]string, headerRow int) []Record {
	headers := Header(rows, headerRow)
	var out []Record
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c := 0; c < len(headers); c++ {
			var v string
			if c < len(rec) {
				v = normalizeCell(rec[c])
			}
			m[headers[c]] = v
			if v != "" {
				empty = false
			}
		}
		out = append(out, Record{Line: r + 1, Cells: m, Empty: empty})
	}
	return out
}

// normalizeCell trims a cell and drops non-breaking spaces.
func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "\r", "").Replace(s)
	return strings.TrimSpace(s)
}
