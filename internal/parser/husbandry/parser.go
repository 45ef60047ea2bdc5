package husbandry

import (
	"context"
	"path/filepath"

	"github.com/imyousuf/forgewiki/internal/luaast"
	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/parser"
)

// NutritionFunction is the global call that attaches foods to an animal.
const NutritionFunction = "addNutritions"

// HusbandryParser extracts animals and their foods from husbandry.lua.
type HusbandryParser struct{}

// NewParser creates a new husbandry parser.
func NewParser() *HusbandryParser {
	return &HusbandryParser{}
}

func (p *HusbandryParser) Domain() parser.Domain {
	return parser.DomainHusbandry
}

func (p *HusbandryParser) Parse(ctx context.Context, root string, cat *model.Catalog, env *parser.Env) error {
	path := filepath.Join(root, parser.SourcePaths[parser.DomainHusbandry])
	chunk, err := parser.ReadChunk(ctx, path)
	if err != nil {
		return err
	}
	entries := Extract(env.File(parser.DomainHusbandry, path), chunk)
	for _, e := range entries.Values() {
		cat.Husbandry.Set(e.Name, e)
	}
	return nil
}

// Extract runs two passes: `data.set(name, { incubation=, lifetime= })`
// declares the animals, then `addNutritions(_, name, { {food=, ...}, ... })`
// attaches foods. Foods for an animal that was never declared are dropped.
func Extract(f *parser.File, chunk *luaast.Chunk) *model.OrderedMap[*model.HusbandryEntry] {
	out := model.NewOrderedMap[*model.HusbandryEntry]()
	for _, call := range parser.FilterCalls(chunk.Body, "data", "set") {
		name := f.String(parser.Arg(call, 0))
		if name == "" {
			f.Warn(call, "animal name did not resolve to a string; skipping")
			continue
		}
		entry := &model.HusbandryEntry{
			Name:  name,
			Foods: model.NewOrderedMap[*model.HusbandryFood](),
		}
		if details := parser.ArgTable(call, 1); details != nil {
			for _, kv := range details.Fields {
				switch kv.Name {
				case "incubation":
					entry.Incubation = f.Number(kv.Value)
				case "lifetime":
					entry.Lifetime = f.Number(kv.Value)
				default:
					f.Env().Debugf("husbandry: %s: ignoring field %q", name, kv.Name)
				}
			}
		}
		out.Set(name, entry)
	}

	for _, call := range parser.FilterGlobalCalls(chunk.Body, NutritionFunction) {
		animal := f.String(parser.Arg(call, 1))
		foods := parser.ArgTable(call, 2)
		if foods == nil {
			f.Warn(call, "%s for %q has no food list", NutritionFunction, animal)
			continue
		}
		entry, ok := out.Get(animal)
		if !ok {
			f.Env().Debugf("husbandry: dropping %d foods for undeclared animal %q", len(foods.Fields), animal)
			continue
		}
		for _, field := range foods.Fields {
			t := parser.AsTable(field.Value)
			if t == nil {
				f.Warn(field, "food for %q is not a table", animal)
				continue
			}
			food := extractFood(f, t)
			if food.Food == "" {
				f.Warn(field, "food for %q has no food id", animal)
				continue
			}
			entry.Foods.Set(food.Food, food)
		}
	}
	return out
}

func extractFood(f *parser.File, t *luaast.Table) *model.HusbandryFood {
	food := &model.HusbandryFood{}
	for _, kv := range t.Fields {
		switch kv.Name {
		case "food":
			food.Food = f.String(kv.Value)
		case "frequency":
			food.Frequency = f.Number(kv.Value)
		case "fatal":
			// Either a flag or a probability.
			v := f.Value(kv.Value)
			if b, ok := v.AsBool(); ok {
				food.Fatal = model.Some(b)
			} else if n, ok := v.AsNumber(); ok {
				food.Fatal = model.Some(n > 0)
				food.FatalChance = model.Some(n)
			} else if !v.IsNull() {
				f.Warn(kv.Value, "fatal is neither boolean nor number: %s", v)
				food.Fatal = model.Bad[bool]()
			}
		case "loot":
			food.Loot = f.String(kv.Value)
		}
	}
	return food
}
