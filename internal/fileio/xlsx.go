package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	excelize "github.com/xuri/excelize/v2"
)

func readXLSX(r io.Reader, headerRow int) (Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Table{}, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, err
	}
	return toTable(rows, headerRow), nil
}

// writeXLSX собирает новую книгу из таблицы: preamble, шапка, строки.
func writeXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	n := 1
	for _, rec := range t.Preamble {
		if err := writeSheetRow(f, sheet, n, rec); err != nil {
			return err
		}
		n++
	}
	if err := writeSheetRow(f, sheet, n, t.Headers); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := writeSheetRow(f, sheet, n+i+1, t.record(row)); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// PatchXLSX copies the workbook src to w changing only the given columns of
// its first sheet, so other sheets, styles and formulas stay as they were.
// t must come from reading src; column positions follow t.Headers.
// An empty header cell of a patched column gets the column name.
func PatchXLSX(w io.Writer, src io.Reader, t Table, columns ...string) error {
	if len(t.Lines) != len(t.Rows) {
		return errors.New("xlsx: table has no source rows")
	}
	f, err := excelize.OpenReader(src)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	for _, name := range columns {
		i := slices.Index(t.Headers, name)
		if i < 0 {
			return fmt.Errorf("xlsx: column %q not in table", name)
		}
		if err := setCellIfChanged(f, sheet, i+1, max(t.HeaderLine, 1), name, true); err != nil {
			return err
		}
		for k, line := range t.Lines {
			if err := setCellIfChanged(f, sheet, i+1, line, t.Rows[k][name], false); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

// setCellIfChanged не трогает ячейки с тем же значением, чтобы сохранить их тип и стиль.
// onlyEmpty: писать только в пустую ячейку.
func setCellIfChanged(f *excelize.File, sheet string, col, row int, v string, onlyEmpty bool) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	cur, err := f.GetCellValue(sheet, cell)
	if err != nil {
		return err
	}
	if cur == v || (onlyEmpty && cur != "") {
		return nil
	}
	return f.SetCellStr(sheet, cell, v)
}

func writeSheetRow(f *excelize.File, sheet string, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheet, cell, &row)
}
