package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	xls "github.com/extrame/xls"
)

// Старые выгрузки .xls приходят в cp1251, реже в UTF-8 или KOI8-R.
var xlsCharsets = []string{"windows-1251", "utf-8", "koi8-r"}

// колонок дальше этой не бывает даже в широких выгрузках
const xlsMaxCols = 512

// ячейки приходят с NBSP и хвостовыми пробелами
var cellSpaces = strings.NewReplacer("\u00A0", " ", "\u202F", " ")

func normalizeCell(v string) string {
	return strings.TrimSpace(cellSpaces.Replace(v))
}

// readXLS reads the first sheet. Row.LastCol() is unreliable in old exports,
// so the table width is taken from the widest non-empty cell of any row.
func readXLS(r io.Reader, headerRow int) (Table, error) {
	if headerRow < 1 {
		return Table{}, errors.New("xls: header row is 1-based")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return Table{}, err
	}
	wb, err := openWorkbook(b)
	if err != nil {
		return Table{}, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return Table{}, nil
	}
	return toTable(sheetCells(sheet), headerRow), nil
}

func openWorkbook(b []byte) (*xls.WorkBook, error) {
	var lastErr error
	for _, cs := range xlsCharsets {
		wb, err := xls.OpenReader(bytes.NewReader(b), cs)
		if err == nil && wb != nil {
			return wb, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no workbook")
	}
	return nil, fmt.Errorf("xls: %w", lastErr)
}

func sheetCells(sheet *xls.WorkSheet) [][]string {
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	width := 1
	for i := 0; i <= int(sheet.MaxRow); i++ {
		var cells []string
		if row := sheet.Row(i); row != nil {
			for j := 0; j < xlsMaxCols; j++ {
				if v := normalizeCell(row.Col(j)); v != "" {
					for len(cells) < j {
						cells = append(cells, "")
					}
					cells = append(cells, v)
				}
			}
		}
		width = max(width, len(cells))
		rows = append(rows, cells)
	}
	// выравниваем по ширине, иначе хвостовые пустые колонки шапки потеряются
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}
	return rows
}
