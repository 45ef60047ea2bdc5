package items

import (
	"context"
	"testing"

	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/parser"
	"github.com/imyousuf/forgewiki/internal/parser/parsertest"
)

func TestExtract(t *testing.T) {
	f, chunk, rec := parsertest.Parse(t, parser.DomainItems, `
items.set("item.copper_ore", { ItemCategory.RawMaterial, stack = 50 })
items.set("item.iron_gear_ii", { ItemCategory.Component })
items.set("material.lava", {})
items.set(someVariable, { ItemCategory.Food })
other.set("item.ignored", { ItemCategory.Food })
`)
	got := Extract(f, chunk)

	if got.Len() != 3 {
		t.Fatalf("Extract() = %d items, want 3 (keys %v)", got.Len(), got.Keys())
	}

	tests := []model.Item{
		{ID: "item.copper_ore", Category: "Raw Material", Type: "item", ShortName: "Copper Ore"},
		{ID: "item.iron_gear_ii", Category: "Component", Type: "item", ShortName: "Iron Gear II"},
		{ID: "material.lava", Category: "", Type: "material", ShortName: "Lava"},
	}
	for i, want := range tests {
		if k := got.Keys()[i]; k != want.ID {
			t.Errorf("Keys()[%d] = %q, want %q", i, k, want.ID)
		}
		item, _ := got.Get(want.ID)
		if item == nil || *item != want {
			t.Errorf("item %s = %+v, want %+v", want.ID, item, want)
		}
	}

	// The unresolvable id is reported by the resolver and then skipped.
	if rec.Count(parser.SeverityField) != 2 {
		t.Errorf("field diagnostics = %d, want 2: %v", rec.Count(parser.SeverityField), rec.Diags)
	}
}

func TestParseMissingFile(t *testing.T) {
	cat := model.NewCatalog()
	rec := parsertest.NewRecorder(t)
	if err := NewParser().Parse(context.Background(), t.TempDir(), cat, rec.Env); err == nil {
		t.Error("Parse() error = nil for a missing items.lua")
	}
	if cat.Items.Len() != 0 {
		t.Errorf("Items = %d, want 0", cat.Items.Len())
	}
}

func TestParse(t *testing.T) {
	root := t.TempDir()
	parsertest.WriteFiles(t, root, map[string]string{
		"items.lua": `items.set("item.stew", { ItemCategory.Food })`,
	})
	cat := model.NewCatalog()
	if err := NewParser().Parse(context.Background(), root, cat, parsertest.NewRecorder(t).Env); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if item, ok := cat.Items.Get("item.stew"); !ok || item.Category != "Food" {
		t.Errorf("Items[item.stew] = %+v, %v", item, ok)
	}
}
