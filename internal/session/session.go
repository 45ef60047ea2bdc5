// Package session runs one extraction over a data root and owns every
// piece of state derived from it: the catalog, the localization table,
// the derived indices and the diagnostics. A new extraction needs a new
// Session.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/imyousuf/forgewiki/internal/index"
	"github.com/imyousuf/forgewiki/internal/linker"
	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/parser"
	"github.com/imyousuf/forgewiki/internal/parser/farming"
	"github.com/imyousuf/forgewiki/internal/parser/husbandry"
	"github.com/imyousuf/forgewiki/internal/parser/items"
	"github.com/imyousuf/forgewiki/internal/parser/locale"
	"github.com/imyousuf/forgewiki/internal/parser/loot"
	"github.com/imyousuf/forgewiki/internal/parser/prefabs"
	"github.com/imyousuf/forgewiki/internal/parser/recipes"
)

// ErrAlreadyRun is returned by Run on a session that has already run.
var ErrAlreadyRun = errors.New("session already run")

// Diagnostic is one problem observed during extraction.
type Diagnostic = parser.Diagnostic

// Config holds configuration for a Session.
type Config struct {
	Root        string            // data root containing items.lua etc.
	PrefabsGlob string            // prefab script pattern, relative to <Root>/prefabs
	Exclude     []string          // prefab paths to skip
	Overrides   map[string]string // display names merged over the built-in overrides
	Registry    *parser.Registry  // optional; defaults to DefaultRegistry
	Verbose     bool
	Logger      func(format string, args ...any) // optional logger, defaults to stderr
}

// Stats summarizes a finished run.
type Stats struct {
	Counts      map[string]int `json:"counts"`
	Diagnostics map[string]int `json:"diagnostics"`
	Duration    time.Duration  `json:"duration"`
	LastRun     time.Time      `json:"last_run"`
}

// Session is one extraction.
type Session struct {
	cfg      Config
	registry *parser.Registry
	log      func(format string, args ...any)

	cat   *model.Catalog
	names *locale.Table
	index *index.Cache
	seeds map[string]string
	stats Stats
	ran   bool

	mu    sync.Mutex
	diags []Diagnostic
}

// DefaultRegistry registers every domain parser. Localization comes first
// and loot precedes farming and husbandry.
func DefaultRegistry(cfg Config) *parser.Registry {
	r := parser.NewRegistry()
	r.Register(locale.NewParser())
	r.Register(items.NewParser())
	r.Register(recipes.NewParser())
	r.Register(loot.NewParser())
	r.Register(farming.NewParser())
	r.Register(husbandry.NewParser())
	r.Register(prefabs.NewParser(cfg.PrefabsGlob, cfg.Exclude))
	return r
}

// New creates a Session for cfg.
func New(cfg Config) *Session {
	logFn := cfg.Logger
	if logFn == nil {
		logFn = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}
	registry := cfg.Registry
	if registry == nil {
		registry = DefaultRegistry(cfg)
	}
	cat := model.NewCatalog()
	return &Session{
		cfg:      cfg,
		registry: registry,
		log:      logFn,
		cat:      cat,
		names:    locale.NewTable(cat.Localizations, cfg.Overrides),
		index:    index.New(cat),
		seeds:    map[string]string{},
	}
}

// Run extracts every registered domain, then links the catalog. A domain
// that fails is recorded as a fatal diagnostic and the others still run;
// the returned error joins every domain failure.
func (s *Session) Run(ctx context.Context) error {
	if s.ran {
		return ErrAlreadyRun
	}
	s.ran = true
	start := time.Now()

	env := &parser.Env{Log: s.log, Report: s.record, Verbose: s.cfg.Verbose}
	var errs []error
	for _, p := range s.registry.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		d := p.Domain()
		if s.cfg.Verbose {
			s.log("Extracting %s...", d)
		}
		if err := p.Parse(ctx, s.cfg.Root, s.cat, env); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.record(Diagnostic{Severity: parser.SeverityFatal, Domain: d, Message: err.Error()})
			errs = append(errs, fmt.Errorf("%s: %w", d, err))
		}
	}

	if err := linker.NewLinker(s.cat, s.log, s.cfg.Verbose).RunAll(ctx); err != nil {
		return err
	}
	for _, e := range s.cat.Farming.Values() {
		if e.SeedID != "" {
			s.seeds[e.Plant] = e.SeedID
		}
	}

	s.stats = Stats{
		Counts:      s.cat.Counts(),
		Diagnostics: s.countDiagnostics(),
		Duration:    time.Since(start),
		LastRun:     start,
	}
	if s.cfg.Verbose {
		s.log("Extraction complete in %s.", s.stats.Duration.Round(time.Millisecond))
	}
	return errors.Join(errs...)
}

func (s *Session) record(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diags = append(s.diags, d)
}

func (s *Session) countDiagnostics() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int)
	for _, d := range s.diags {
		out[string(d.Severity)]++
	}
	return out
}

// Catalog returns the extracted records.
func (s *Session) Catalog() *model.Catalog { return s.cat }

// Index returns the derived indices over the catalog.
func (s *Session) Index() *index.Cache { return s.index }

// Names returns the localization table.
func (s *Session) Names() *locale.Table { return s.names }

// Root returns the data root.
func (s *Session) Root() string { return s.cfg.Root }

// Stats returns the statistics of the last run.
func (s *Session) Stats() Stats { return s.stats }

// Diagnostics returns a copy of every diagnostic recorded so far.
func (s *Session) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	return out
}

// SeedID returns the id of the prefab that plants plant, or plant itself
// when no seed was found.
func (s *Session) SeedID(plant string) string {
	if id, ok := s.seeds[plant]; ok {
		return id
	}
	return plant
}
