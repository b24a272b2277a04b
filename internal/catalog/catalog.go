// Package catalog turns inventory tables into catalog records for the matcher
// and writes assigned resources back into the same table.
package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"catalog-matcher/internal/fileio"
	"catalog-matcher/internal/reconcile/model"
	"catalog-matcher/internal/reconcile/service"
)

type Mapping struct {
	IDKey       string // колонка с ID товара
	CodeKey     string // артикул (опционально)
	NameKey     string // наименование
	ResourceKey string // колонка для картинки; создаётся, если нет
	HeaderRow   int    // строка заголовков (1-based)
}

// DefaultMapping matches the inventory sheet export.
func DefaultMapping() Mapping {
	return Mapping{
		IDKey:       "Item ID",
		CodeKey:     "Item (SKU Owleys)",
		NameKey:     "ITEM NAME|I T E M    N A M E",
		ResourceKey: "BOX Picture",
		HeaderRow:   1,
	}
}

// служебные строки выгрузки (таймеры/даты) в колонке артикула
var reDateRow = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}`)

// Catalog keeps the records together with the table they came from.
type Catalog struct {
	Records    []model.CatalogRecord
	Duplicates []string // ID, встреченные повторно (оставлена первая запись)
	Skipped    int      // строки без ID или служебные

	table       fileio.Table
	rowOf       []int // индекс записи → индекс строки таблицы
	resourceKey string
	source      string // путь, из которого загружен каталог
}

// Load reads a .csv/.xlsx/.xls file and builds the catalog.
func Load(path string, m Mapping) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := fileio.ReadAny(f, path, max(m.HeaderRow, 1))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := FromTable(t, m)
	if err != nil {
		return nil, err
	}
	c.source = path
	return c, nil
}

// FromTable maps table rows to records. Identifiers are compared by
// service.Normalize so "P-3014-10" and "p 3014 10" count as the same item.
func FromTable(t fileio.Table, m Mapping) (*Catalog, error) {
	idKey := resolveKey(t.Headers, m.IDKey)
	if idKey == "" {
		return nil, fmt.Errorf("identifier column %q not found", m.IDKey)
	}
	nameKey := resolveKey(t.Headers, m.NameKey)
	if nameKey == "" {
		return nil, fmt.Errorf("name column %q not found", m.NameKey)
	}
	codeKey := resolveKey(t.Headers, m.CodeKey)
	resKey := resolveKey(t.Headers, m.ResourceKey)
	if resKey == "" {
		resKey = firstAlt(m.ResourceKey)
	}

	c := &Catalog{table: t, resourceKey: resKey}
	seen := make(map[string]struct{}, len(t.Rows))
	for i, row := range t.Rows {
		id := strings.TrimSpace(row[idKey])
		code := ""
		if codeKey != "" {
			code = strings.TrimSpace(row[codeKey])
		}
		if id == "" || reDateRow.MatchString(code) {
			c.Skipped++
			continue
		}
		key := service.Normalize(id)
		if _, dup := seen[key]; dup {
			c.Duplicates = append(c.Duplicates, id)
			continue
		}
		seen[key] = struct{}{}

		c.Records = append(c.Records, model.CatalogRecord{
			Identifier:       id,
			SecondaryCode:    code,
			DisplayName:      strings.TrimSpace(row[nameKey]),
			AssignedResource: strings.TrimSpace(row[resKey]),
		})
		c.rowOf = append(c.rowOf, i)
	}
	return c, nil
}

// Table returns the source table with every record's AssignedResource written
// into the resource column.
func (c *Catalog) Table() fileio.Table {
	t := c.table
	if c.resourceKey != "" && !contains(t.Headers, c.resourceKey) {
		t.Headers = append(append([]string(nil), t.Headers...), c.resourceKey)
	}
	for i, rec := range c.Records {
		t.Rows[c.rowOf[i]][c.resourceKey] = rec.AssignedResource
	}
	return t
}

// Write writes the updated table in the format of filename. When both the
// source table and filename are .xlsx and src holds the source workbook, only
// the resource column of src is rewritten; otherwise the file is rebuilt from
// the table. src may be nil.
func (c *Catalog) Write(w io.Writer, filename string, src io.Reader) error {
	t := c.Table()
	if src != nil && t.Format == ".xlsx" && isXLSX(filename) {
		return fileio.PatchXLSX(w, src, t, c.resourceKey)
	}
	return fileio.WriteAny(w, filename, t)
}

// Save writes the updated table to path (format by extension). A catalog
// loaded from .xlsx and saved as .xlsx keeps the rest of its workbook.
func (c *Catalog) Save(path string) error {
	var src []byte
	if c.source != "" && c.table.Format == ".xlsx" && isXLSX(path) {
		b, err := os.ReadFile(c.source)
		if err != nil {
			return fmt.Errorf("reopen catalog %s: %w", c.source, err)
		}
		src = b
	}
	return fileio.SaveAtomic(path, func(w io.Writer) error {
		if src == nil {
			return c.Write(w, path, nil)
		}
		return c.Write(w, path, bytes.NewReader(src))
	})
}

func isXLSX(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

func firstAlt(s string) string {
	return strings.TrimSpace(strings.Split(s, "|")[0])
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
