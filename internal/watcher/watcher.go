package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// EventOp represents the type of file system operation.
type EventOp int

const (
	Create EventOp = iota
	Write
	Remove
	Rename
)

// String returns the string representation of EventOp.
func (op EventOp) String() string {
	switch op {
	case Create:
		return "Create"
	case Write:
		return "Write"
	case Remove:
		return "Remove"
	case Rename:
		return "Rename"
	default:
		return "Unknown"
	}
}

// Event represents a file system change event.
type Event struct {
	Path string
	Op   EventOp
	Time time.Time
}

// Batch is every change seen during one debounce window. Events holds the
// last event per path, sorted by path.
type Batch struct {
	Events []Event
	Time   time.Time
}

// Paths returns the changed paths.
func (b Batch) Paths() []string {
	out := make([]string, len(b.Events))
	for i, e := range b.Events {
		out[i] = e.Path
	}
	return out
}

// Config holds configuration for the watcher.
type Config struct {
	Root     string        // data root, watched recursively
	Exclude  []string      // doublestar patterns relative to Root
	Debounce time.Duration // quiet period before a batch is emitted
}

// Watcher watches a data root for script changes and emits one batch per
// burst of changes, since any change means a full re-extraction.
type Watcher struct {
	cfg    Config
	fsw    *fsnotify.Watcher
	mu     sync.Mutex
	closed bool
}

// NewWatcher creates a new watcher for cfg.
func NewWatcher(cfg Config) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Watcher{cfg: cfg}
}

// Start begins watching and returns a channel of debounced batches. The
// channel is closed when ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) (<-chan Batch, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	if err := w.addRecursive(w.cfg.Root); err != nil {
		fsw.Close()
		return nil, err
	}

	out := make(chan Batch, 1)
	go w.eventLoop(ctx, fsw, out)
	return out, nil
}

// Close shuts down the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.cfg.Root && w.excluded(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// excluded reports whether path matches an exclude pattern.
func (w *Watcher) excluded(path string) bool {
	rel, err := filepath.Rel(w.cfg.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pat := range w.cfg.Exclude {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
		// A directory pattern also excludes everything below it.
		if ok, _ := doublestar.Match(strings.TrimSuffix(pat, "/")+"/**", rel); ok {
			return true
		}
	}
	return false
}

// relevant reports whether a change to path can affect extraction.
func (w *Watcher) relevant(path string) bool {
	return strings.HasSuffix(path, ".lua") && !w.excluded(path)
}

func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Batch) {
	defer close(out)

	pending := make(map[string]Event)
	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		b := Batch{Time: time.Now(), Events: make([]Event, 0, len(pending))}
		for _, e := range pending {
			b.Events = append(b.Events, e)
		}
		sort.Slice(b.Events, func(i, j int) bool { return b.Events[i].Path < b.Events[j].Path })
		pending = make(map[string]Event)
		select {
		case out <- b:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case <-timer.C:
			flush()

		case fsEvent, ok := <-fsw.Events:
			if !ok {
				return
			}

			op, valid := convertOp(fsEvent.Op)
			if !valid {
				continue
			}

			// If a new directory is created, add it to the watcher.
			if op == Create {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					if !w.excluded(fsEvent.Name) {
						_ = w.addRecursive(fsEvent.Name)
					}
					continue
				}
			}
			if !w.relevant(fsEvent.Name) {
				continue
			}

			pending[fsEvent.Name] = Event{Path: fsEvent.Name, Op: op, Time: time.Now()}
			// Debounce: every event restarts the quiet period.
			timer.Reset(w.cfg.Debounce)

		case _, ok := <-fsw.Errors:
			if !ok {
				return
			}
			// Keep watching after errors.
		}
	}
}

func convertOp(op fsnotify.Op) (EventOp, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Remove):
		return Remove, true
	case op.Has(fsnotify.Rename):
		return Rename, true
	default:
		return 0, false
	}
}
