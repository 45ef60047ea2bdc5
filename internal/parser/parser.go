package parser

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/imyousuf/forgewiki/internal/luaast"
	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/resolve"
)

// Domain names one family of game data.
type Domain string

const (
	DomainLocale    Domain = "localization"
	DomainItems     Domain = "items"
	DomainRecipes   Domain = "recipes"
	DomainLoot      Domain = "loot"
	DomainFarming   Domain = "farming"
	DomainHusbandry Domain = "husbandry"
	DomainPrefabs   Domain = "prefabs"
)

// SourcePaths maps each domain to its script (or directory, for prefabs)
// relative to the data root.
var SourcePaths = map[Domain]string{
	DomainLocale:    "localizations/en.lua",
	DomainItems:     "items.lua",
	DomainRecipes:   "recipes.lua",
	DomainLoot:      "loot.lua",
	DomainFarming:   "farming.lua",
	DomainHusbandry: "husbandry.lua",
	DomainPrefabs:   "prefabs",
}

// ErrEntryFunctionMissing is returned when a script lacks the top-level
// function its domain is declared in. There is no partial result without it.
var ErrEntryFunctionMissing = errors.New("entry function not found")

// Parser extracts one domain into a Catalog.
type Parser interface {
	// Domain returns which domain this parser handles.
	Domain() Domain

	// Parse reads the domain's sources under root and stores the records
	// in cat. Field-level problems are reported through env and never
	// returned; a returned error means the domain produced nothing usable.
	Parse(ctx context.Context, root string, cat *model.Catalog, env *Env) error
}

// ReadChunk reads and parses one Lua file.
func ReadChunk(ctx context.Context, path string) (*luaast.Chunk, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	chunk, err := luaast.Parse(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return chunk, nil
}

// Severity ranks a diagnostic.
type Severity string

const (
	// SeverityField is an expression that could not be resolved; the field
	// degrades to null.
	SeverityField Severity = "field"
	// SeverityFile is a source file that could not be parsed; its records
	// are skipped.
	SeverityFile Severity = "file"
	// SeverityCollision is a duplicate prefab id; the earlier record wins.
	SeverityCollision Severity = "collision"
	// SeverityFatal is a domain that could not be extracted at all.
	SeverityFatal Severity = "fatal"
)

// Diagnostic is one problem observed during extraction.
type Diagnostic struct {
	Severity Severity   `json:"severity"`
	Domain   Domain     `json:"domain"`
	File     string     `json:"file,omitempty"`
	Pos      luaast.Pos `json:"pos,omitzero"`
	Message  string     `json:"message"`
}

func (d Diagnostic) String() string {
	loc := d.File
	if d.Pos.Line > 0 {
		loc = fmt.Sprintf("%s:%s", d.File, d.Pos)
	}
	if loc == "" {
		return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Domain, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s: %s", d.Severity, d.Domain, loc, d.Message)
}

// Env carries the logging and diagnostic sinks shared by all parsers.
type Env struct {
	// Log is an optional logger.
	Log func(format string, args ...any)
	// Report receives every diagnostic. Optional.
	Report  func(Diagnostic)
	Verbose bool
}

// Logf logs when a logger is configured.
func (e *Env) Logf(format string, args ...any) {
	if e != nil && e.Log != nil {
		e.Log(format, args...)
	}
}

// Debugf logs only in verbose mode.
func (e *Env) Debugf(format string, args ...any) {
	if e != nil && e.Verbose {
		e.Logf(format, args...)
	}
}

// Diag logs d and hands it to Report.
func (e *Env) Diag(d Diagnostic) {
	if e == nil {
		return
	}
	e.Logf("%s", d)
	if e.Report != nil {
		e.Report(d)
	}
}

// File returns a per-file extraction context whose resolver failures are
// reported against domain and path.
func (e *Env) File(domain Domain, path string) *File {
	f := &File{Domain: domain, Path: path, env: e}
	f.r = resolve.New(func(fail resolve.Failure) {
		e.Diag(Diagnostic{
			Severity: SeverityField,
			Domain:   domain,
			File:     path,
			Pos:      fail.Pos,
			Message:  fmt.Sprintf("%s (%s: %s)", fail.Reason, fail.Kind, clip(fail.Text)),
		})
	})
	return f
}

func clip(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
