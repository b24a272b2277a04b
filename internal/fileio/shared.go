package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Table: строки файла как map[header]value плюс исходный порядок колонок,
// чтобы файл можно было записать обратно в том же виде.
type Table struct {
	Headers   []string
	Rows      []map[string]string
	Delimiter rune // только для CSV; 0: не CSV

	Preamble   [][]string // строки над шапкой, пишутся обратно как есть
	HeaderLine int        // строка шапки в исходнике (1-based)
	Lines      []int      // Lines[i]: строка исходника для Rows[i] (1-based)
	Format     string     // расширение исходника: ".csv", ".xlsx", ".xls"
}

// ReadAny picks a reader by extension. headerRow is 1-based; rows above it
// are kept in Preamble.
func ReadAny(r io.Reader, filename string, headerRow int) (Table, error) {
	var (
		t   Table
		err error
	)
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		t, err = readXLSX(r, headerRow)
	case ".xls":
		t, err = readXLS(r, headerRow)
	case ".csv":
		t, err = readCSV(r, headerRow)
	default:
		return Table{}, fmt.Errorf("unsupported file: %s", filename)
	}
	if err != nil {
		return Table{}, err
	}
	t.Format = ext
	return t, nil
}

// toTable: ширина шапки не меньше самой широкой строки данных,
// лишние ячейки получают колонки "Column N".
func toTable(rows [][]string, headerRow int) Table {
	if len(rows) == 0 {
		return Table{}
	}
	hdr := min(max(headerRow, 1), len(rows)) - 1
	width := len(rows[hdr])
	for _, rec := range rows[hdr+1:] {
		width = max(width, len(rec))
	}
	header := make([]string, width)
	copy(header, rows[hdr])
	t := Table{Headers: headerNames(header), HeaderLine: hdr + 1}
	for _, rec := range rows[:hdr] {
		t.Preamble = append(t.Preamble, append([]string(nil), rec...))
	}
	for i, rec := range rows[hdr+1:] {
		if row, ok := t.row(rec); ok {
			t.Rows = append(t.Rows, row)
			t.Lines = append(t.Lines, hdr+i+2)
		}
	}
	return t
}

// headerNames: пустые заголовки становятся "Column N", повторы получают суффикс,
// чтобы ни одна колонка не пропала при записи обратно.
func headerNames(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		if n := seen[v]; n > 0 {
			seen[v] = n + 1
			v = fmt.Sprintf("%s (%d)", v, n+1)
		} else {
			seen[v] = 1
		}
		out[i] = v
	}
	return out
}

// row раскладывает запись по заголовкам; полностью пустые строки пропускаются.
func (t Table) row(rec []string) (map[string]string, bool) {
	m := make(map[string]string, len(t.Headers))
	empty := true
	for i, h := range t.Headers {
		var v string
		if i < len(rec) {
			v = rec[i]
		}
		m[h] = v
		if strings.TrimSpace(v) != "" {
			empty = false
		}
	}
	return m, !empty
}
