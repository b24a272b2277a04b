package fileio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// WriteAny: записывает таблицу в формате по расширению (.csv или .xlsx).
// .xls только читаем: записать его обратно нечем.
func WriteAny(w io.Writer, filename string, t Table) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return writeCSV(w, t)
	case ".xlsx":
		return writeXLSX(w, t)
	default:
		return fmt.Errorf("unsupported output file: %s", filename)
	}
}

// WriteFile writes t to path in the format of its extension, see SaveAtomic.
func WriteFile(path string, t Table) error {
	return SaveAtomic(path, func(w io.Writer) error {
		return WriteAny(w, path, t)
	})
}

// SaveAtomic пишет во временный файл рядом и переименовывает, чтобы не оставить
// полузаписанный каталог.
func SaveAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*"+filepath.Ext(path))
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".svg": true,
}

// IsImage reports whether the file name has a supported image extension.
func IsImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// ListImages returns the image file names (not paths) in dir, sorted.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}
