// Package linker resolves cross-domain references after extraction.
// It runs once every domain map exists, joining loot-table names held by
// farming stages and husbandry foods against the loot domain and
// recovering seed ids from prefab placement data.
package linker

import (
	"context"
	"fmt"

	"github.com/imyousuf/forgewiki/internal/model"
)

// Linker resolves cross-domain relationships in a Catalog.
type Linker struct {
	cat     *model.Catalog
	log     func(format string, args ...any)
	verbose bool
}

// NewLinker creates a new Linker over cat.
func NewLinker(cat *model.Catalog, logFn func(format string, args ...any), verbose bool) *Linker {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}
	return &Linker{
		cat:     cat,
		log:     logFn,
		verbose: verbose,
	}
}

// RunAll executes all linking phases in order. The loot domain must be
// complete before it is called.
func (l *Linker) RunAll(ctx context.Context) error {
	if l.verbose {
		l.log("Running cross-reference linker...")
	}

	// 1. Attach loot tables to farming stages and compute drop rates.
	stageCount, err := l.linkFarming(ctx)
	if err != nil {
		return fmt.Errorf("link farming: %w", err)
	}
	if l.verbose {
		l.log("  Linked %d farming stages to loot tables", stageCount)
	}

	// 2. Attach loot tables to husbandry foods.
	foodCount, err := l.linkHusbandry(ctx)
	if err != nil {
		return fmt.Errorf("link husbandry: %w", err)
	}
	if l.verbose {
		l.log("  Linked %d husbandry foods to loot tables", foodCount)
	}

	// 3. Recover seed ids from prefab placements.
	seedCount, err := l.linkSeeds(ctx)
	if err != nil {
		return fmt.Errorf("link seeds: %w", err)
	}
	if l.verbose {
		l.log("  Recovered %d seed ids", seedCount)
		l.log("Cross-reference linker complete.")
	}

	return nil
}
