// Package index derives item-keyed lookups from a linked Catalog.
//
// Each index is built on its first query and kept for the lifetime of the
// Cache. The catalog must not change after the first query; a new
// extraction gets a new Cache.
package index

import (
	"sync"

	"github.com/imyousuf/forgewiki/internal/model"
)

// Cache holds the derived indices of one catalog.
type Cache struct {
	cat *model.Catalog

	byOutput  lazy[*model.Recipe]
	byInput   lazy[*model.Recipe]
	farming   lazy[*model.FarmingEntry]
	husbandry lazy[*model.HusbandryEntry]
	feeders   lazy[*model.HusbandryEntry]
}

// New creates an empty Cache over cat.
func New(cat *model.Catalog) *Cache {
	return &Cache{cat: cat}
}

// RecipesByOutput returns the recipes that produce item.
func (c *Cache) RecipesByOutput(item string) []*model.Recipe {
	return c.byOutput.lookup(item, func(add func(string, *model.Recipe)) {
		for _, r := range c.cat.Recipes.Values() {
			for _, a := range r.Outputs {
				add(a.Item, r)
			}
		}
	})
}

// RecipesByInput returns the recipes that consume item.
func (c *Cache) RecipesByInput(item string) []*model.Recipe {
	return c.byInput.lookup(item, func(add func(string, *model.Recipe)) {
		for _, r := range c.cat.Recipes.Values() {
			for _, a := range r.Inputs {
				add(a.Item, r)
			}
		}
	})
}

// FarmingUsage returns the plants with a stage whose loot can drop item,
// each plant once.
func (c *Cache) FarmingUsage(item string) []*model.FarmingEntry {
	return c.farming.lookup(item, func(add func(string, *model.FarmingEntry)) {
		for _, e := range c.cat.Farming.Values() {
			for _, s := range e.Stages.Values() {
				if s.LootTable == nil {
					continue
				}
				for _, d := range s.LootTable.Drops {
					add(d.Name, e)
				}
			}
		}
	})
}

// HusbandryUsage returns the animals with a food whose loot can drop item,
// each animal once.
func (c *Cache) HusbandryUsage(item string) []*model.HusbandryEntry {
	return c.husbandry.lookup(item, func(add func(string, *model.HusbandryEntry)) {
		for _, e := range c.cat.Husbandry.Values() {
			for _, f := range e.Foods.Values() {
				if f.LootTable == nil {
					continue
				}
				for _, d := range f.LootTable.Drops {
					add(d.Name, e)
				}
			}
		}
	})
}

// HusbandryFeeders returns the animals that eat item.
func (c *Cache) HusbandryFeeders(item string) []*model.HusbandryEntry {
	return c.feeders.lookup(item, func(add func(string, *model.HusbandryEntry)) {
		for _, e := range c.cat.Husbandry.Values() {
			for _, food := range e.Foods.Keys() {
				add(food, e)
			}
		}
	})
}

// lazy is one item-keyed index, built once.
type lazy[V comparable] struct {
	once sync.Once
	m    map[string][]V
}

// lookup builds the index on first use, then returns a copy of the
// records under item; never nil. build calls add once per (item, record)
// occurrence and add drops repeats of the same record under one item.
func (l *lazy[V]) lookup(item string, build func(add func(string, V))) []V {
	l.once.Do(func() {
		l.m = make(map[string][]V)
		seen := make(map[string]map[V]bool)
		build(func(key string, v V) {
			if key == "" {
				return
			}
			if seen[key] == nil {
				seen[key] = make(map[V]bool)
			}
			if seen[key][v] {
				return
			}
			seen[key][v] = true
			l.m[key] = append(l.m[key], v)
		})
	})
	out := make([]V, len(l.m[item]))
	copy(out, l.m[item])
	return out
}
