package husbandry

import (
	"reflect"
	"testing"

	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/parser"
	"github.com/imyousuf/forgewiki/internal/parser/parsertest"
)

const husbandrySource = `
data.set("animal.slime", { incubation = 120, lifetime = 600, color = "green" })
data.set("egg.slime", {})

addNutritions(nil, "animal.slime", {
  { food = "item.ember_pepper", frequency = 2, loot = "loot.slime" },
  { food = "item.copper_ore", fatal = 0.25 },
  { food = "item.stew", fatal = true },
  { food = "item.slime_gel", fatal = "sometimes" },
  { frequency = 1 },
})
addNutritions(nil, "animal.ghost", {
  { food = "item.stew" },
})
`

func TestExtract(t *testing.T) {
	f, chunk, rec := parsertest.Parse(t, parser.DomainHusbandry, husbandrySource)
	got := Extract(f, chunk)

	// Foods for the undeclared ghost are dropped without a diagnostic.
	if want := []string{"animal.slime", "egg.slime"}; !reflect.DeepEqual(got.Keys(), want) {
		t.Fatalf("Keys() = %v, want %v", got.Keys(), want)
	}

	slime, _ := got.Get("animal.slime")
	if slime.Incubation.Or(0) != 120 || slime.Lifetime.Or(0) != 600 {
		t.Errorf("slime = %+v, want incubation 120, lifetime 600", slime)
	}
	wantFoods := []string{"item.ember_pepper", "item.copper_ore", "item.stew", "item.slime_gel"}
	if !reflect.DeepEqual(slime.Foods.Keys(), wantFoods) {
		t.Fatalf("foods = %v, want %v", slime.Foods.Keys(), wantFoods)
	}

	tests := []struct {
		food string
		want *model.HusbandryFood
	}{
		{"item.ember_pepper", &model.HusbandryFood{Food: "item.ember_pepper", Frequency: model.Some(2.0), Loot: "loot.slime"}},
		{"item.copper_ore", &model.HusbandryFood{Food: "item.copper_ore", Fatal: model.Some(true), FatalChance: model.Some(0.25)}},
		{"item.stew", &model.HusbandryFood{Food: "item.stew", Fatal: model.Some(true)}},
		{"item.slime_gel", &model.HusbandryFood{Food: "item.slime_gel", Fatal: model.Bad[bool]()}},
	}
	for _, tt := range tests {
		got, _ := slime.Foods.Get(tt.food)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("food %s = %+v, want %+v", tt.food, got, tt.want)
		}
	}

	egg, _ := got.Get("egg.slime")
	if egg.Foods.Len() != 0 || egg.Incubation.Ok() {
		t.Errorf("egg.slime = %+v, want no foods and no incubation", egg)
	}

	// The string fatal and the food without an id.
	if n := rec.Count(parser.SeverityField); n != 2 {
		t.Errorf("field diagnostics = %d, want 2: %v", n, rec.Diags)
	}
}
