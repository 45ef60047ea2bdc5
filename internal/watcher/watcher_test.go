package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestExcluded(t *testing.T) {
	root := "/data/scripts"
	w := NewWatcher(Config{Root: root, Exclude: []string{"prefabs/test/**", "scratch", "**/*.bak.lua"}})

	tests := []struct {
		path string
		want bool
	}{
		{"/data/scripts/items.lua", false},
		{"/data/scripts/prefabs/flora/ember_pepper.lua", false},
		{"/data/scripts/prefabs/test/dummy.lua", true},
		{"/data/scripts/scratch", true},
		{"/data/scripts/scratch/notes.lua", true},
		{"/data/scripts/prefabs/flora/old.bak.lua", true},
	}
	for _, tt := range tests {
		if got := w.excluded(tt.path); got != tt.want {
			t.Errorf("excluded(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestRelevant(t *testing.T) {
	w := NewWatcher(Config{Root: "/data", Exclude: []string{"tmp/**"}})
	tests := []struct {
		path string
		want bool
	}{
		{"/data/loot.lua", true},
		{"/data/loot.lua.swp", false},
		{"/data/readme.md", false},
		{"/data/tmp/loot.lua", false},
	}
	for _, tt := range tests {
		if got := w.relevant(tt.path); got != tt.want {
			t.Errorf("relevant(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNewWatcherDefaultDebounce(t *testing.T) {
	w := NewWatcher(Config{Root: t.TempDir()})
	if w.cfg.Debounce != DefaultDebounce {
		t.Errorf("Debounce = %v, want %v", w.cfg.Debounce, DefaultDebounce)
	}
}

func collect(t *testing.T, batches <-chan Batch, wait time.Duration) []Batch {
	t.Helper()
	var collected []Batch
	timeout := time.After(wait)
	for {
		select {
		case b, ok := <-batches:
			if !ok {
				return collected
			}
			collected = append(collected, b)
		case <-timeout:
			return collected
		}
	}
}

func TestBatchDebouncing(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "loot.lua")
	if err := os.WriteFile(testFile, []byte("-- initial"), 0644); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(Config{Root: tmpDir, Debounce: 100 * time.Millisecond})
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batches, err := w.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// Give the watcher time to initialize.
	time.Sleep(200 * time.Millisecond)

	// Rapid writes to two scripts and one unrelated file.
	other := filepath.Join(tmpDir, "items.lua")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(testFile, []byte("-- "+string(rune('0'+i))), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(other, []byte("-- "+string(rune('0'+i))), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	collected := collect(t, batches, 800*time.Millisecond)
	if len(collected) == 0 {
		t.Fatal("expected at least one batch, got none")
	}
	if len(collected) >= 5 {
		t.Errorf("expected debouncing to coalesce writes, got %d batches", len(collected))
	}

	seen := make(map[string]bool)
	for _, b := range collected {
		for _, p := range b.Paths() {
			seen[p] = true
		}
	}
	if !seen[testFile] || !seen[other] {
		t.Errorf("batches missing script changes: %v", seen)
	}
	if seen[filepath.Join(tmpDir, "notes.txt")] {
		t.Error("batch includes a non-script file")
	}
}

func TestWatcherNewDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	w := NewWatcher(Config{Root: tmpDir, Debounce: 50 * time.Millisecond})
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batches, err := w.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	newDir := filepath.Join(tmpDir, "prefabs", "flora")
	if err := os.MkdirAll(newDir, 0755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(newDir, "ember_pepper.lua"), []byte("-- new"), 0644); err != nil {
		t.Fatal(err)
	}

	if collected := collect(t, batches, time.Second); len(collected) == 0 {
		t.Error("expected a batch for a script in a new directory, got none")
	}
}

func TestWatcherExcludedPath(t *testing.T) {
	tmpDir := t.TempDir()

	scratch := filepath.Join(tmpDir, "scratch")
	if err := os.MkdirAll(scratch, 0755); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(Config{Root: tmpDir, Exclude: []string{"scratch"}, Debounce: 50 * time.Millisecond})
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batches, err := w.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(scratch, "draft.lua"), []byte("-- draft"), 0644); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(tmpDir, "farming.lua")
	if err := os.WriteFile(src, []byte("-- farming"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, b := range collect(t, batches, 600*time.Millisecond) {
		for _, p := range b.Paths() {
			if filepath.Dir(p) == scratch {
				t.Errorf("got event from excluded directory: %s", p)
			}
		}
	}
}

func TestConvertOp(t *testing.T) {
	tests := []struct {
		name   string
		op     fsnotify.Op
		want   EventOp
		wantOk bool
	}{
		{"create", fsnotify.Create, Create, true},
		{"write", fsnotify.Write, Write, true},
		{"remove", fsnotify.Remove, Remove, true},
		{"rename", fsnotify.Rename, Rename, true},
		{"chmod only", fsnotify.Chmod, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := convertOp(tt.op)
			if ok != tt.wantOk {
				t.Errorf("convertOp(%v) ok = %v, want %v", tt.op, ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("convertOp(%v) = %v, want %v", tt.op, got, tt.want)
			}
		})
	}
}

func TestEventOpString(t *testing.T) {
	tests := []struct {
		op   EventOp
		want string
	}{
		{Create, "Create"},
		{Write, "Write"},
		{Remove, "Remove"},
		{Rename, "Rename"},
		{EventOp(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.op.String(); got != tt.want {
				t.Errorf("EventOp(%d).String() = %q, want %q", tt.op, got, tt.want)
			}
		})
	}
}
