package store

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// FingerprintTree hashes every .lua file under root. Keys are
// slash-separated paths relative to root.
func FingerprintTree(root string) (map[string]uint64, error) {
	out := make(map[string]uint64)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".lua") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = xxhash.Sum64(content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", root, err)
	}
	return out, nil
}

// Changes lists the differences between two fingerprint sets.
type Changes struct {
	Added    []string `json:"added,omitempty"`
	Modified []string `json:"modified,omitempty"`
	Removed  []string `json:"removed,omitempty"`
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Removed) == 0
}

// Diff compares the stored fingerprints old with current. Each list is
// sorted.
func Diff(old, current map[string]uint64) Changes {
	var c Changes
	for path, sum := range current {
		prev, ok := old[path]
		switch {
		case !ok:
			c.Added = append(c.Added, path)
		case prev != sum:
			c.Modified = append(c.Modified, path)
		}
	}
	for path := range old {
		if _, ok := current[path]; !ok {
			c.Removed = append(c.Removed, path)
		}
	}
	sort.Strings(c.Added)
	sort.Strings(c.Modified)
	sort.Strings(c.Removed)
	return c
}
