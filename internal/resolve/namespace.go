package resolve

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// Namespace is one of the qualified-name prefixes the data scripts use as
// enumerations, e.g. the `FluidType` in `FluidType.Lava`.
type Namespace string

const (
	FluidType         Namespace = "FluidType"
	CraftSite         Namespace = "CraftSite"
	PlantHarvestTypes Namespace = "PlantHarvestTypes"
	LootOrigin        Namespace = "LootOrigin"
	ItemCategory      Namespace = "ItemCategory"
	PlacementFeatures Namespace = "PlacementFeatures"
	FuelTypes         Namespace = "FuelTypes"
	MatterType        Namespace = "MatterType"
	TransportTileType Namespace = "TransportTileType"
	Fmod              Namespace = "fmod"
)

// Namespaces lists every recognized namespace.
var Namespaces = []Namespace{
	FluidType,
	CraftSite,
	PlantHarvestTypes,
	LootOrigin,
	ItemCategory,
	PlacementFeatures,
	FuelTypes,
	MatterType,
	TransportTileType,
	Fmod,
}

var namespaceSet = func() map[string]Namespace {
	m := make(map[string]Namespace, len(Namespaces))
	for _, ns := range Namespaces {
		m[string(ns)] = ns
	}
	return m
}()

// LookupNamespace maps a receiver name to a known namespace.
func LookupNamespace(name string) (Namespace, bool) {
	ns, ok := namespaceSet[name]
	return ns, ok
}

// Member resolves ns.member to its tagged string.
func (ns Namespace) Member(member string) string {
	switch ns {
	case FluidType:
		return "material." + SnakeCase(member)
	case CraftSite:
		return "structure." + SnakeCase(member)
	case PlantHarvestTypes:
		switch member {
		case "Manual", "Automatic":
			return member
		case "Planter":
			return "structure.planter_box"
		default:
			return "material." + SnakeCase(member)
		}
	case LootOrigin, ItemCategory, Fmod:
		return member
	case PlacementFeatures, FuelTypes, MatterType, TransportTileType:
		return string(ns) + "." + member
	}
	// Unreachable for values from LookupNamespace.
	return member
}

// SuggestNamespace returns the closest known namespace to name, if any is
// within a small edit distance.
func SuggestNamespace(name string) (Namespace, bool) {
	type scored struct {
		ns   Namespace
		dist int
	}
	var candidates []scored
	for _, ns := range Namespaces {
		dist := levenshtein.ComputeDistance(name, string(ns))
		if dist <= suggestLimit(len(ns)) {
			candidates = append(candidates, scored{ns: ns, dist: dist})
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist == candidates[j].dist {
			return candidates[i].ns < candidates[j].ns
		}
		return candidates[i].dist < candidates[j].dist
	})
	return candidates[0].ns, true
}

func suggestLimit(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 10:
		return 2
	default:
		return 3
	}
}
