package loot

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/imyousuf/forgewiki/internal/luaast"
	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/parser"
)

// EntryFunction is the function loot.lua declares its tables in.
const EntryFunction = "addLoot"

// LootParser extracts loot tables from loot.lua.
type LootParser struct{}

// NewParser creates a new loot parser.
func NewParser() *LootParser {
	return &LootParser{}
}

func (p *LootParser) Domain() parser.Domain {
	return parser.DomainLoot
}

func (p *LootParser) Parse(ctx context.Context, root string, cat *model.Catalog, env *parser.Env) error {
	path := filepath.Join(root, parser.SourcePaths[parser.DomainLoot])
	chunk, err := parser.ReadChunk(ctx, path)
	if err != nil {
		return err
	}
	entries, err := Extract(env.File(parser.DomainLoot, path), chunk)
	if err != nil {
		return err
	}
	for _, e := range entries.Values() {
		cat.Loot.Set(e.Name, e)
	}
	return nil
}

// Extract reads the groups declared with LootSystem.addGroup, then every
// LootSystem.addBatch table, inlining group references. Groups are
// collected first so a batch may reference a group declared after it.
func Extract(f *parser.File, chunk *luaast.Chunk) (*model.OrderedMap[*model.LootEntry], error) {
	fn := parser.FindFunction(chunk.Body, EntryFunction)
	if fn == nil {
		return nil, fmt.Errorf("%w: %s in %s", parser.ErrEntryFunctionMissing, EntryFunction, f.Path)
	}

	groups := extractGroups(f, parser.FilterCalls(fn.Body, "LootSystem", "addGroup"))

	out := model.NewOrderedMap[*model.LootEntry]()
	for _, call := range parser.FilterCalls(fn.Body, "LootSystem", "addBatch") {
		name := f.String(parser.Arg(call, 0))
		if name == "" {
			f.Warn(call, "loot batch name did not resolve to a string; skipping")
			continue
		}
		out.Set(name, &model.LootEntry{
			Name:   name,
			Origin: f.String(parser.Arg(call, 1)),
			Drops:  batchDrops(f, parser.ArgTable(call, 2), groups),
		})
	}
	return out, nil
}

// extractGroups reads `LootSystem.addGroup(name, X({ {Drop(_, item,
// {{min}, ..., {max}})}, ... }))` into name -> drops.
func extractGroups(f *parser.File, calls []*luaast.Call) map[string][]model.LootDrop {
	groups := make(map[string][]model.LootDrop, len(calls))
	for _, call := range calls {
		name := f.String(parser.Arg(call, 0))
		if name == "" {
			f.Warn(call, "loot group name did not resolve to a string; skipping")
			continue
		}
		list := parser.ArgTable(parser.ArgCall(call, 1), 0)
		if list == nil {
			f.Warn(call, "loot group %q has no drop list", name)
			continue
		}
		drops := make([]model.LootDrop, 0, len(list.Fields))
		for _, field := range list.Fields {
			d := parser.AsCall(parser.FieldAt(parser.AsTable(field.Value), 0))
			if d == nil {
				f.Warn(field, "loot group %q has a malformed drop", name)
				continue
			}
			lo, hi := bounds(f, parser.ArgTable(d, 2))
			drops = append(drops, model.LootDrop{
				Name:        f.String(parser.Arg(d, 1)),
				MinQuantity: lo,
				MaxQuantity: hi,
				IsBonus:     model.Some(false),
				EmptyChance: model.Some(0.0),
				Kind:        model.DropGroup,
				GroupName:   name,
			})
		}
		groups[name] = drops
	}
	return groups
}

// batchDrops partitions a batch's drop calls by kind and concatenates
// them as items, entries, fluids, then groups.
func batchDrops(f *parser.File, t *luaast.Table, groups map[string][]model.LootDrop) []model.LootDrop {
	var items, entries, fluids, grouped []model.LootDrop
	if t == nil {
		return []model.LootDrop{}
	}
	for _, field := range t.Fields {
		c := parser.AsCall(field.Value)
		switch parser.MethodName(field.Value) {
		case "item":
			items = append(items, model.LootDrop{
				Name:        f.String(parser.Arg(c, 0)),
				MinQuantity: f.Number(parser.Arg(c, 1)),
				MaxQuantity: f.Number(parser.Arg(c, 1)),
				IsBonus:     f.Bool(parser.Arg(c, 2)),
				EmptyChance: f.Number(parser.Arg(c, 3)),
				Kind:        model.DropItem,
			})
		case "entry":
			inner := parser.ArgCall(c, 0)
			if inner == nil {
				f.Warn(c, "loot entry drop without an inner drop call")
				continue
			}
			lo, hi := bounds(f, parser.ArgTable(inner, 2))
			bonus := parser.FieldAt(parser.AsTable(parser.FieldAt(parser.ArgTable(inner, 3), 0)), 0)
			entries = append(entries, model.LootDrop{
				Name:        f.String(parser.Arg(inner, 1)),
				MinQuantity: lo,
				MaxQuantity: hi,
				IsBonus:     f.Bool(bonus),
				EmptyChance: f.Number(parser.Arg(c, 1)),
				Kind:        model.DropEntry,
			})
		case "fluid":
			fluids = append(fluids, model.LootDrop{
				Name:        f.String(parser.Arg(c, 0)),
				MinQuantity: f.Number(parser.Arg(c, 1)),
				MaxQuantity: f.Number(parser.Arg(c, 1)),
				IsBonus:     model.Some(false),
				EmptyChance: f.Number(parser.Arg(c, 2)),
				Kind:        model.DropFluid,
			})
		case "group":
			name := f.String(parser.Arg(c, 1))
			g, ok := groups[name]
			if !ok {
				f.Warn(c, "unknown loot group %q", name)
				continue
			}
			grouped = append(grouped, g...)
		default:
			f.Warn(field, "unrecognized loot drop %s", luaast.Kind(field.Value))
		}
	}

	out := make([]model.LootDrop, 0, len(items)+len(entries)+len(fluids)+len(grouped))
	out = append(out, items...)
	out = append(out, entries...)
	out = append(out, fluids...)
	return append(out, grouped...)
}

// bounds reads the min and max of a `{{min}, ..., {max}}` quantity table:
// the first value of its first and last rows.
func bounds(f *parser.File, t *luaast.Table) (lo, hi model.Field[float64]) {
	if t == nil {
		return lo, hi
	}
	first := parser.FieldAt(parser.AsTable(parser.FieldAt(t, 0)), 0)
	last := parser.FieldAt(parser.AsTable(parser.FieldAt(t, -1)), 0)
	return f.Number(first), f.Number(last)
}
