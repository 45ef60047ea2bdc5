// Package parsertest provides helpers for testing domain parsers against
// inline Lua fixtures.
package parsertest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/imyousuf/forgewiki/internal/luaast"
	"github.com/imyousuf/forgewiki/internal/parser"
)

// Recorder collects every diagnostic reported to its Env.
type Recorder struct {
	Env   *parser.Env
	Diags []parser.Diagnostic
}

// NewRecorder creates a Recorder whose Env logs through t.
func NewRecorder(t *testing.T) *Recorder {
	t.Helper()
	r := &Recorder{}
	r.Env = &parser.Env{
		Log:    func(format string, args ...any) { t.Logf(format, args...) },
		Report: func(d parser.Diagnostic) { r.Diags = append(r.Diags, d) },
	}
	return r
}

// Count returns the number of diagnostics of severity sev.
func (r *Recorder) Count(sev parser.Severity) int {
	n := 0
	for _, d := range r.Diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// Parse parses src and returns it with a File for domain reporting to a
// new Recorder.
func Parse(t *testing.T, domain parser.Domain, src string) (*parser.File, *luaast.Chunk, *Recorder) {
	t.Helper()
	chunk, err := luaast.ParseString(src)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	rec := NewRecorder(t)
	return rec.Env.File(domain, string(domain)+".lua"), chunk, rec
}

// WriteFiles writes files (slash-separated path -> content) under dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}
