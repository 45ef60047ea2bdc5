package resolve

import (
	"reflect"
	"strings"
	"testing"

	"github.com/imyousuf/forgewiki/internal/luaast"
)

// resolveArg parses `f(<expr>)` and resolves the argument, collecting
// failures.
func resolveArg(t *testing.T, expr string) (Value, []Failure) {
	t.Helper()
	chunk, err := luaast.ParseString("f(" + expr + ")")
	if err != nil {
		t.Fatalf("ParseString(%q) error: %v", expr, err)
	}
	if len(chunk.Body) != 1 {
		t.Fatalf("%q parsed into %d statements, want 1", expr, len(chunk.Body))
	}
	cs, ok := chunk.Body[0].(*luaast.CallStmt)
	if !ok {
		t.Fatalf("%q parsed into %s, want call_statement", expr, luaast.Kind(chunk.Body[0]))
	}
	call := cs.Call
	if len(call.Args) != 1 {
		t.Fatalf("%q parsed into %d arguments, want 1", expr, len(call.Args))
	}
	var failures []Failure
	r := New(func(f Failure) { failures = append(failures, f) })
	return r.Resolve(call.Args[0]), failures
}

func TestResolveLiterals(t *testing.T) {
	tests := []struct {
		expr string
		want Value
	}{
		{`"item.copper_ore"`, StringValue("item.copper_ore")},
		{`5`, NumberValue(5)},
		{`-5`, NumberValue(-5)},
		{`2.5`, NumberValue(2.5)},
		{`true`, BoolValue(true)},
		{`false`, BoolValue(false)},
		{`nil`, Value{}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, failures := resolveArg(t, tt.expr)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%s) = %v, want %v", tt.expr, got, tt.want)
			}
			if len(failures) != 0 {
				t.Errorf("Resolve(%s) reported %v", tt.expr, failures)
			}
		})
	}
}

func TestResolveNamespaces(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"FluidType.Lava", "material.lava"},
		{"FluidType.MoltenCopper", "material.molten_copper"},
		{"CraftSite.Refiner", "structure.refiner"},
		{"CraftSite.PlanterBox", "structure.planter_box"},
		{"PlantHarvestTypes.Manual", "Manual"},
		{"PlantHarvestTypes.Automatic", "Automatic"},
		{"PlantHarvestTypes.Planter", "structure.planter_box"},
		{"PlantHarvestTypes.Sickle", "material.sickle"},
		{"LootOrigin.Farming", "Farming"},
		{"ItemCategory.RawMaterial", "RawMaterial"},
		{"PlacementFeatures.Rotatable", "PlacementFeatures.Rotatable"},
		{"FuelTypes.Biofuel", "FuelTypes.Biofuel"},
		{"MatterType.Metal", "MatterType.Metal"},
		{"TransportTileType.Belt", "TransportTileType.Belt"},
		{"fmod.PepperCrunch", "PepperCrunch"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, failures := resolveArg(t, tt.expr)
			if s, ok := got.AsString(); !ok || s != tt.want {
				t.Errorf("Resolve(%s) = %v, want %q", tt.expr, got, tt.want)
			}
			if len(failures) != 0 {
				t.Errorf("Resolve(%s) reported %v", tt.expr, failures)
			}
		})
	}
}

func TestResolveUnknownNamespace(t *testing.T) {
	got, failures := resolveArg(t, "FluidTyp.Lava")
	if s, ok := got.AsString(); !ok || s != "Lava" {
		t.Errorf("Resolve(FluidTyp.Lava) = %v, want raw member %q", got, "Lava")
	}
	if len(failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(failures))
	}
	f := failures[0]
	if !strings.Contains(f.Reason, `unknown namespace "FluidTyp"`) {
		t.Errorf("Reason = %q, want unknown namespace", f.Reason)
	}
	if !strings.Contains(f.Reason, `did you mean "FluidType"`) {
		t.Errorf("Reason = %q, want a FluidType suggestion", f.Reason)
	}
	if f.Kind != "member" || f.Text != "FluidTyp.Lava" {
		t.Errorf("Failure = %+v, want member FluidTyp.Lava", f)
	}
	if f.Pos.Line != 1 || f.Pos.Col != 3 {
		t.Errorf("Pos = %s, want 1:3", f.Pos)
	}
}

func TestResolveWrappers(t *testing.T) {
	tests := []struct {
		expr string
		want Value
	}{
		{`seconds(30)`, NumberValue(30)},
		{`getFluidUse(nil, nil, 12)`, NumberValue(12)},
		{`Prefab.getID("flora.ember_pepper")`, StringValue("flora.ember_pepper")},
		{`bit.bor(CraftSite.Smelter, CraftSite.Refiner)`, ListValue(StringValue("structure.smelter"), StringValue("structure.refiner"))},
		{`seconds(seconds(2))`, NumberValue(2)},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, failures := resolveArg(t, tt.expr)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%s) = %v, want %v", tt.expr, got, tt.want)
			}
			if len(failures) != 0 {
				t.Errorf("Resolve(%s) reported %v", tt.expr, failures)
			}
		})
	}
}

func TestResolveUnsupported(t *testing.T) {
	tests := []struct {
		expr   string
		reason string
	}{
		{`someVariable`, "unsupported expression"},
		{`{ 1, 2 }`, "unsupported expression"},
		{`1 + 2`, "unsupported expression"},
		{`-x`, "negation of a non-numeric literal"},
		{`not true`, "unsupported unary operator"},
		{`mystery(1)`, "unsupported call"},
		{`getFluidUse(1)`, "wrapper call missing argument 3"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, failures := resolveArg(t, tt.expr)
			if !got.IsNull() {
				t.Errorf("Resolve(%s) = %v, want null", tt.expr, got)
			}
			if len(failures) != 1 {
				t.Fatalf("got %d failures, want 1", len(failures))
			}
			if !strings.Contains(failures[0].Reason, tt.reason) {
				t.Errorf("Reason = %q, want %q", failures[0].Reason, tt.reason)
			}
		})
	}
}

func TestResolveNilReporter(t *testing.T) {
	r := New(nil)
	if got := r.Resolve(nil); !got.IsNull() {
		t.Errorf("Resolve(nil) = %v, want null", got)
	}
	if got := r.Resolve(&luaast.Ident{Name: "x"}); !got.IsNull() {
		t.Errorf("Resolve(ident) = %v, want null", got)
	}
}

func TestSuggestNamespace(t *testing.T) {
	tests := []struct {
		name   string
		want   Namespace
		wantOk bool
	}{
		{"CraftSit", CraftSite, true},
		{"Fmod", Fmod, true},
		{"LootOrigins", LootOrigin, true},
		{"Completely", "", false},
	}
	for _, tt := range tests {
		got, ok := SuggestNamespace(tt.name)
		if ok != tt.wantOk || got != tt.want {
			t.Errorf("SuggestNamespace(%q) = %q, %v, want %q, %v", tt.name, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestValueStrings(t *testing.T) {
	tests := []struct {
		v    Value
		want []string
	}{
		{StringValue("structure.hand"), []string{"structure.hand"}},
		{ListValue(StringValue("a"), NumberValue(1), ListValue(StringValue("b"))), []string{"a", "b"}},
		{NumberValue(3), nil},
		{Value{}, nil},
	}
	for _, tt := range tests {
		if got := tt.v.Strings(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%v.Strings() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestSnakeCaseAndLabel(t *testing.T) {
	snake := []struct{ in, want string }{
		{"Lava", "lava"},
		{"EmberPepper", "ember_pepper"},
		{"RawMaterial", "raw_material"},
		{"HPBoost", "h_p_boost"},
		{"Tier2", "tier2"},
		{"", ""},
	}
	for _, tt := range snake {
		if got := SnakeCase(tt.in); got != tt.want {
			t.Errorf("SnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	labels := []struct{ in, want string }{
		{"copper_ore", "Copper Ore"},
		{"iron_gear_ii", "Iron Gear II"},
		{"sword_iii", "Sword III"},
		{"stew", "Stew"},
	}
	for _, tt := range labels {
		if got := Label(tt.in); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
