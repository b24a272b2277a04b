package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// readCSV reads CSV with headerRow (1-based), auto-detecting encoding and converting to UTF-8.
// It supports UTF-8 and Windows-1251 out of the box; the delimiter (; , or tab)
// is guessed from the first line.
func readCSV(r io.Reader, headerRow int) (Table, error) {
	br := bufio.NewReader(r)

	// Peek a bit to detect encoding
	peek, _ := br.Peek(2048)
	cs := "utf-8"
	if len(peek) > 0 {
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			cs = strings.ToLower(det.Charset)
		}
	}

	var dec io.Reader = br
	switch cs {
	case "windows-1251", "cp1251":
		dec = transform.NewReader(br, charmap.Windows1251.NewDecoder())
	default:
		// assume UTF-8
	}

	db := bufio.NewReader(dec)
	head, _ := db.Peek(2048)
	// BOM из Excel
	if bytes.HasPrefix(head, []byte("\xef\xbb\xbf")) {
		_, _ = db.Discard(3)
		head = head[3:]
	}
	delim := detectDelimiter(head)

	cr := csv.NewReader(db)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, err
		}
		rows = append(rows, rec)
	}
	t := toTable(rows, headerRow)
	t.Delimiter = delim
	return t, nil
}

// detectDelimiter: самый частый из ; , \t в первой строке, где он вообще есть;
// по умолчанию запятая
func detectDelimiter(head []byte) rune {
	for _, line := range bytes.Split(head, []byte("\n")) {
		best, bestN := ',', 0
		for _, d := range []rune{';', ',', '\t'} {
			if n := bytes.Count(line, []byte(string(d))); n > bestN {
				best, bestN = d, n
			}
		}
		if bestN > 0 {
			return best
		}
	}
	return ','
}

func writeCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if t.Delimiter != 0 {
		cw.Comma = t.Delimiter
	}
	for _, rec := range t.Preamble {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(t.record(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t Table) record(row map[string]string) []string {
	rec := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		rec[i] = row[h]
	}
	return rec
}
