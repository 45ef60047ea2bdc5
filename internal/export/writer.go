package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/session"
)

// ItemDir is the subdirectory per-item info files are written to.
const ItemDir = "items"

// Writer writes data files into one output directory.
type Writer struct {
	dir    string
	format Format
	log    func(format string, args ...any)
}

// NewWriter creates a Writer. logFn is optional.
func NewWriter(dir string, format Format, logFn func(format string, args ...any)) *Writer {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}
	return &Writer{dir: dir, format: format, log: logFn}
}

// WriteCatalog writes one file per domain and returns the paths written.
func (w *Writer) WriteCatalog(cat *model.Catalog) ([]string, error) {
	domains := []struct {
		name string
		v    any
	}{
		{"items", cat.Items},
		{"recipes", cat.Recipes},
		{"loot", cat.Loot},
		{"farming", cat.Farming},
		{"husbandry", cat.Husbandry},
		{"prefabs", cat.Prefabs},
		{"localizations", cat.Localizations},
	}
	var written []string
	for _, d := range domains {
		path, err := w.write(d.name, d.v)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteItemInfo writes the info file of every item of s.
func (w *Writer) WriteItemInfo(s *session.Session) (int, error) {
	n := 0
	for _, id := range s.ItemIDs() {
		if _, err := w.write(filepath.Join(ItemDir, FileName(id)), s.ItemInfo(id)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// FileName makes an internal id safe to use as a file name.
func FileName(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, id)
}

func (w *Writer) write(name string, v any) (string, error) {
	data, err := Encode(v, w.format)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(w.dir, name+"."+w.format.Ext())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	w.log("  wrote %s", path)
	return path, nil
}
