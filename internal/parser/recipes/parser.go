package recipes

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/imyousuf/forgewiki/internal/luaast"
	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/parser"
)

// EntryFunction is the function recipes.lua declares its recipes in.
const EntryFunction = "addRecipes"

// fluidMarker is the identifier that flags a fluid amount in a recipe.
const fluidMarker = "FluidItem"

// RecipesParser extracts crafting recipes from recipes.lua.
type RecipesParser struct{}

// NewParser creates a new recipes parser.
func NewParser() *RecipesParser {
	return &RecipesParser{}
}

func (p *RecipesParser) Domain() parser.Domain {
	return parser.DomainRecipes
}

func (p *RecipesParser) Parse(ctx context.Context, root string, cat *model.Catalog, env *parser.Env) error {
	path := filepath.Join(root, parser.SourcePaths[parser.DomainRecipes])
	chunk, err := parser.ReadChunk(ctx, path)
	if err != nil {
		return err
	}
	recipes, err := Extract(env.File(parser.DomainRecipes, path), chunk)
	if err != nil {
		return err
	}
	for _, r := range recipes.Values() {
		cat.Recipes.Set(r.Name, r)
	}
	return nil
}

// Extract reads every `CraftManager.add(Recipe(_, name, inputs, outputs,
// duration, machines))` inside addRecipes.
func Extract(f *parser.File, chunk *luaast.Chunk) (*model.OrderedMap[*model.Recipe], error) {
	fn := parser.FindFunction(chunk.Body, EntryFunction)
	if fn == nil {
		return nil, fmt.Errorf("%w: %s in %s", parser.ErrEntryFunctionMissing, EntryFunction, f.Path)
	}

	out := model.NewOrderedMap[*model.Recipe]()
	for _, call := range parser.FilterCalls(fn.Body, "CraftManager", "add") {
		inner := parser.ArgCall(call, 0)
		if inner == nil {
			f.Warn(call, "CraftManager.add without a recipe call; skipping")
			continue
		}
		name := f.String(parser.Arg(inner, 1))
		if name == "" {
			f.Warn(inner, "recipe name did not resolve to a string; skipping")
			continue
		}
		out.Set(name, &model.Recipe{
			Name:     name,
			Inputs:   amounts(f, parser.ArgTable(inner, 2)),
			Outputs:  amounts(f, parser.ArgTable(inner, 3)),
			Duration: f.Number(parser.Arg(inner, 4)),
			Machines: f.Strings(parser.Arg(inner, 5)),
		})
	}
	return out, nil
}

// amounts reads a table of `Amount(item, qty)` or
// `Amount(FluidItem, fluid, qty)` calls.
func amounts(f *parser.File, t *luaast.Table) model.Amounts {
	out := model.Amounts{}
	if t == nil {
		return out
	}
	for _, field := range t.Fields {
		c := parser.AsCall(field.Value)
		if c == nil {
			f.Warn(field, "recipe amount is not a call")
			continue
		}
		itemArg, qtyArg := 0, 1
		if marker, ok := parser.Arg(c, 0).(*luaast.Ident); ok && marker.Name == fluidMarker {
			itemArg, qtyArg = 1, 2
		}
		item := f.String(parser.Arg(c, itemArg))
		if item == "" {
			f.Warn(c, "recipe amount has no item id")
			continue
		}
		out.Set(item, f.Number(parser.Arg(c, qtyArg)))
	}
	return out
}
