package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/imyousuf/forgewiki/internal/config"
	"github.com/imyousuf/forgewiki/internal/export"
	"github.com/imyousuf/forgewiki/internal/session"
	"github.com/imyousuf/forgewiki/internal/store"
)

const fixtureRoot = "../../testdata/scripts"

func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Source.Root = fixtureRoot
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")
	cfg.Output.Format = "json"
	return cfg
}

func TestWatcherConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Root = "scripts"
	cfg.Source.Exclude = []string{"legacy/**", "broken/*.lua"}
	cfg.Watch.Debounce = 250 * time.Millisecond

	got := watcherConfig(cfg)
	if got.Root != "scripts" || got.Debounce != 250*time.Millisecond {
		t.Errorf("watcherConfig() = %+v", got)
	}
	if want := []string{"prefabs/legacy/**", "prefabs/broken/*.lua"}; !reflect.DeepEqual(got.Exclude, want) {
		t.Errorf("Exclude = %v, want %v", got.Exclude, want)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"legacy/**", []string{"legacy/**"}},
		{" a , ,b,", []string{"a", "b"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	if d, err := parseDuration("  "); err != nil || d != 0 {
		t.Errorf("parseDuration(blank) = %v, %v, want 0", d, err)
	}
	if d, err := parseDuration("1.5s"); err != nil || d != 1500*time.Millisecond {
		t.Errorf("parseDuration(1.5s) = %v, %v", d, err)
	}
	if _, err := parseDuration("soon"); err == nil || !strings.Contains(err.Error(), "watch debounce") {
		t.Errorf("parseDuration(soon) error = %v, want a watch debounce error", err)
	}
}

func TestIsDomainFailure(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{fmt.Errorf("run: %w", context.DeadlineExceeded), false},
		{errors.New("loot: entry function not found"), true},
	}
	for _, tt := range tests {
		if got := isDomainFailure(tt.err); got != tt.want {
			t.Errorf("isDomainFailure(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestRunExtract(t *testing.T) {
	cfg := fixtureConfig(t)
	dbPath := filepath.Join(t.TempDir(), "db")
	var out, errOut bytes.Buffer

	s, err := runExtract(context.Background(), cfg, extractOptions{itemInfo: true, store: dbPath}, &out, &errOut)
	if err != nil {
		t.Fatalf("runExtract() error: %v", err)
	}
	if s.Catalog().Items.Len() != 7 {
		t.Errorf("items = %d, want 7", s.Catalog().Items.Len())
	}
	if !strings.Contains(out.String(), "Wrote 7 domain files and 7 item files") {
		t.Errorf("summary = %s", out.String())
	}
	if !strings.Contains(out.String(), "collision") {
		t.Errorf("summary does not list the collision count:\n%s", out.String())
	}

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	defer st.Close()
	ctx := context.Background()
	meta, err := st.Meta(ctx)
	if err != nil {
		t.Fatalf("Meta() error: %v", err)
	}
	if meta.Root != fixtureRoot || meta.Counts["prefabs"] != 3 {
		t.Errorf("Meta() = %+v", meta)
	}
	fps, err := st.Fingerprints(ctx)
	if err != nil {
		t.Fatal(err)
	}
	current, err := store.FingerprintTree(fixtureRoot)
	if err != nil {
		t.Fatal(err)
	}
	if !store.Diff(fps, current).Empty() {
		t.Error("stored fingerprints differ from the sources just extracted")
	}
}

func TestRunExtractBadFormat(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Output.Format = "xml"
	var out bytes.Buffer
	if _, err := runExtract(context.Background(), cfg, extractOptions{}, &out, &out); err == nil {
		t.Error("runExtract() with an unknown format should fail")
	}
}

func TestRunExtractDomainFailure(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Source.Root = t.TempDir()
	var out, errOut bytes.Buffer

	_, err := runExtract(context.Background(), cfg, extractOptions{}, &out, &errOut)
	if err == nil || !strings.Contains(err.Error(), "extraction incomplete") {
		t.Fatalf("runExtract() error = %v, want extraction incomplete", err)
	}
	if !isDomainFailure(err) {
		t.Error("a missing source file should count as a domain failure")
	}
	// Output is still written for the domains that are empty.
	if !strings.Contains(out.String(), "Wrote 7 domain files") {
		t.Errorf("summary = %s", out.String())
	}
}

func fixtureSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(session.Config{Root: fixtureRoot, Logger: t.Logf})
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return s
}

func TestPrintLookup(t *testing.T) {
	s := fixtureSession(t)

	var out bytes.Buffer
	if err := printLookup(&out, s, "item.stew", export.FormatJSON); err != nil {
		t.Fatalf("printLookup() error: %v", err)
	}
	if !strings.Contains(out.String(), `"producedBy"`) {
		t.Errorf("printLookup() = %s", out.String())
	}

	// Names without an item record are still known.
	out.Reset()
	if err := printLookup(&out, s, "structure.workbench", export.FormatYAML); err != nil {
		t.Errorf("printLookup(structure.workbench) error: %v", err)
	}

	err := printLookup(&out, s, "item.stw", export.FormatJSON)
	if err == nil || !strings.Contains(err.Error(), `did you mean item.stew`) {
		t.Errorf("printLookup(item.stw) error = %v, want a suggestion", err)
	}
	err = printLookup(&out, s, "zzzzzzzzzzzzzzzzzzzzzz", export.FormatJSON)
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("printLookup(far) error = %v, want no suggestion", err)
	}
}

func TestSuggestCapsResults(t *testing.T) {
	s := fixtureSession(t)
	got := suggest(s, "item.ember_pepper_")
	if len(got) == 0 || len(got) > maxSuggestions {
		t.Fatalf("suggest() = %v, want 1 to %d ids", got, maxSuggestions)
	}
	if got[0] != "item.ember_pepper" {
		t.Errorf("suggest()[0] = %q, want the nearest id item.ember_pepper", got[0])
	}
}

func TestPrintStatus(t *testing.T) {
	meta := store.Meta{
		Root:        "scripts",
		LastRun:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Diagnostics: map[string]int{"field": 2},
	}
	stats := &store.Stats{Records: map[string]int{"items": 7, "loot": 2}, Fingerprints: 12}

	var out bytes.Buffer
	printStatus(&out, "db", meta, stats, store.Changes{})
	for _, want := range []string{"scripts", "2026-03-01T12:00:00Z", "up to date", "field"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("printStatus() missing %q:\n%s", want, out.String())
		}
	}

	var added []string
	for i := range 12 {
		added = append(added, fmt.Sprintf("prefabs/p%02d.lua", i))
	}
	out.Reset()
	printStatus(&out, "db", meta, stats, store.Changes{Added: added, Removed: []string{"loot.lua"}})
	s := out.String()
	if !strings.Contains(s, "changed since last run") || !strings.Contains(s, "loot.lua") {
		t.Errorf("printStatus() = %s", s)
	}
	if !strings.Contains(s, "... and 2 more") || strings.Contains(s, "p10.lua") {
		t.Errorf("printStatus() should list ten added paths:\n%s", s)
	}
}
