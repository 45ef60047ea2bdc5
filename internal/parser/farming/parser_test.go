package farming

import (
	"reflect"
	"testing"

	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/parser"
	"github.com/imyousuf/forgewiki/internal/parser/parsertest"
)

func TestExtractStages(t *testing.T) {
	f, chunk, rec := parsertest.Parse(t, parser.DomainFarming, `
data.set("plant.ember_pepper", {
  Plant(nil, nil, nil, {
    { type = PlantHarvestTypes.Manual, totalTime = 30000, loot = "loot.ember_pepper" },
    { type = PlantHarvestTypes.Automatic, fluid = FluidType.Water, totalTime = 60000, loot = "loot.ember_pepper" },
    { type = PlantHarvestTypes.Planter, fluid = FluidType.None, totalTime = 45000 },
  }),
})
data.set("plant.bare", { Something(1) })
`)
	got := Extract(f, chunk)
	if want := []string{"plant.ember_pepper", "plant.bare"}; !reflect.DeepEqual(got.Keys(), want) {
		t.Fatalf("Keys() = %v, want %v", got.Keys(), want)
	}

	pepper, _ := got.Get("plant.ember_pepper")
	wantKeys := []string{"Manual", "Automatic+material.water", "structure.planter_box"}
	if !reflect.DeepEqual(pepper.Stages.Keys(), wantKeys) {
		t.Errorf("stage keys = %v, want %v", pepper.Stages.Keys(), wantKeys)
	}

	manual, _ := pepper.Stages.Get("Manual")
	want := &model.FarmingStage{
		PlantName: "plant.ember_pepper",
		Type:      "Manual",
		Fluid:     model.NoFluid,
		TotalTime: model.Some(30000.0),
		Loot:      "loot.ember_pepper",
	}
	if !reflect.DeepEqual(manual, want) {
		t.Errorf("Manual stage = %+v, want %+v", manual, want)
	}

	planter, _ := pepper.Stages.Get("structure.planter_box")
	if planter.Loot != "" || planter.Fluid != model.NoFluid {
		t.Errorf("planter stage = %+v, want no loot and no fluid", planter)
	}

	// A plant without a stage list is kept with no stages and a warning.
	bare, _ := got.Get("plant.bare")
	if bare.Stages == nil || bare.Stages.Len() != 0 {
		t.Errorf("plant.bare stages = %v, want empty", bare.Stages)
	}
	if n := rec.Count(parser.SeverityField); n != 1 {
		t.Errorf("field diagnostics = %d, want 1: %v", n, rec.Diags)
	}
}

func TestExtractDuplicateStageKeepsLast(t *testing.T) {
	f, chunk, _ := parsertest.Parse(t, parser.DomainFarming, `
data.set("plant.a", { Plant(nil, nil, nil, {
  { type = PlantHarvestTypes.Manual, totalTime = 1 },
  { type = PlantHarvestTypes.Manual, totalTime = 2 },
}) })
`)
	a, _ := Extract(f, chunk).Get("plant.a")
	if a.Stages.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", a.Stages.Len())
	}
	s, _ := a.Stages.Get("Manual")
	if s.TotalTime.Or(0) != 2 {
		t.Errorf("TotalTime = %v, want 2", s.TotalTime)
	}
}
