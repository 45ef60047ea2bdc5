// Package model defines the typed records extracted from the game's data
// scripts and the Catalog that holds one map per domain.
package model

import "strings"

// NoFluid is the fluid tag of a farming stage that needs no fluid.
const NoFluid = "material.none"

// Item is one entry declared in items.lua.
type Item struct {
	ID        string `json:"id"`
	Category  string `json:"category,omitempty"`
	Type      string `json:"type"`
	ShortName string `json:"shortName,omitempty"`
}

// ItemType returns the first dot-segment of an internal id.
func ItemType(id string) string {
	head, _, _ := strings.Cut(id, ".")
	return head
}

// Amount is one item or fluid quantity in a recipe.
type Amount struct {
	Item     string         `json:"item"`
	Quantity Field[float64] `json:"quantity,omitzero"`
}

// Amounts is an ordered item-to-quantity mapping. Setting an item twice
// keeps its first position and the last quantity.
type Amounts []Amount

// Set stores q for item.
func (a *Amounts) Set(item string, q Field[float64]) {
	for i := range *a {
		if (*a)[i].Item == item {
			(*a)[i].Quantity = q
			return
		}
	}
	*a = append(*a, Amount{Item: item, Quantity: q})
}

// Has reports whether item is listed.
func (a Amounts) Has(item string) bool {
	for _, x := range a {
		if x.Item == item {
			return true
		}
	}
	return false
}

// Quantity returns the quantity for item.
func (a Amounts) Quantity(item string) (Field[float64], bool) {
	for _, x := range a {
		if x.Item == item {
			return x.Quantity, true
		}
	}
	return Field[float64]{}, false
}

// Recipe is one CraftManager.add entry.
type Recipe struct {
	Name     string         `json:"name"`
	Inputs   Amounts        `json:"inputs"`
	Outputs  Amounts        `json:"outputs"`
	Duration Field[float64] `json:"duration,omitzero"`
	Machines []string       `json:"machines"`
}

// DropKind tags how a loot drop was declared.
type DropKind string

const (
	DropItem  DropKind = "item"
	DropGroup DropKind = "group"
	DropEntry DropKind = "entry"
	DropFluid DropKind = "fluid"
)

// LootDrop is one possible output of a loot table.
type LootDrop struct {
	Name        string         `json:"name"`
	MinQuantity Field[float64] `json:"minQuantity,omitzero"`
	MaxQuantity Field[float64] `json:"maxQuantity,omitzero"`
	IsBonus     Field[bool]    `json:"isBonus,omitzero"`
	EmptyChance Field[float64] `json:"emptyChance,omitzero"`
	Kind        DropKind       `json:"type"`
	GroupName   string         `json:"groupName,omitempty"`
	PerMinute   Field[float64] `json:"perMinute,omitzero"`
}

// LootEntry is one named loot table.
type LootEntry struct {
	Name   string     `json:"name"`
	Origin string     `json:"origin,omitempty"`
	Drops  []LootDrop `json:"items"`
}

// DropsItem reports whether any drop of the entry produces item.
func (e *LootEntry) DropsItem(item string) bool {
	if e == nil {
		return false
	}
	for _, d := range e.Drops {
		if d.Name == item {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the entry.
func (e *LootEntry) Clone() *LootEntry {
	if e == nil {
		return nil
	}
	c := *e
	c.Drops = make([]LootDrop, len(e.Drops))
	copy(c.Drops, e.Drops)
	return &c
}

// FarmingStage is one harvest stage of a plant.
type FarmingStage struct {
	PlantName string         `json:"plantName"`
	Type      string         `json:"type"`
	Fluid     string         `json:"fluid"`
	TotalTime Field[float64] `json:"totalTime,omitzero"`
	Loot      string         `json:"loot,omitempty"`
	// LootTable is set by the linker.
	LootTable *LootEntry `json:"lootTable,omitempty"`
}

// Key returns the stage's key within its plant: the tool type, suffixed
// with "+<fluid>" when the stage requires a fluid.
func (s *FarmingStage) Key() string {
	if s.Fluid == "" || s.Fluid == NoFluid {
		return s.Type
	}
	return s.Type + "+" + s.Fluid
}

// FarmingEntry is every stage of one plant, keyed by stage key.
type FarmingEntry struct {
	Plant  string                     `json:"plant"`
	Stages *OrderedMap[*FarmingStage] `json:"stages"`
	// SeedID is set by the linker.
	SeedID string `json:"seedId,omitempty"`
}

// HusbandryFood is one food an animal accepts.
type HusbandryFood struct {
	Food        string         `json:"food"`
	Frequency   Field[float64] `json:"frequency,omitzero"`
	Fatal       Field[bool]    `json:"fatal,omitzero"`
	FatalChance Field[float64] `json:"fatalChance,omitzero"`
	Loot        string         `json:"loot,omitempty"`
	// LootTable is set by the linker.
	LootTable *LootEntry `json:"lootTable,omitempty"`
}

// HusbandryEntry is one animal (or egg) and its foods.
type HusbandryEntry struct {
	Name       string                      `json:"name"`
	Incubation Field[float64]              `json:"incubation,omitzero"`
	Lifetime   Field[float64]              `json:"lifetime,omitzero"`
	Foods      *OrderedMap[*HusbandryFood] `json:"foods"`
}

// Power is the idle and active draw of a consumer prefab.
type Power struct {
	Idle   Field[float64] `json:"idle,omitzero"`
	Active Field[float64] `json:"active,omitzero"`
}

// Matter is what a prefab refines into.
type Matter struct {
	Type   string         `json:"type"`
	Amount Field[float64] `json:"amount,omitzero"`
}

// Transport describes a transport tile.
type Transport struct {
	Type  string         `json:"type,omitempty"`
	Speed Field[float64] `json:"speed,omitzero"`
}

// Prefab is the capability summary of one placeable-object script.
type Prefab struct {
	ID         string         `json:"id"`
	Creates    string         `json:"creates,omitempty"`
	Icon       string         `json:"icon,omitempty"`
	Stack      Field[float64] `json:"stack,omitzero"`
	HP         Field[float64] `json:"hp,omitzero"`
	ATK        Field[float64] `json:"atk,omitzero"`
	DEF        Field[float64] `json:"def,omitzero"`
	Power      Power          `json:"power,omitzero"`
	Bio        Field[float64] `json:"bio,omitzero"`
	Mana       Field[float64] `json:"mana,omitzero"`
	Matter     *Matter        `json:"matter,omitempty"`
	Transport  *Transport     `json:"transport,omitempty"`
	PlantName  string         `json:"plantName,omitempty"`
	DrillSpeed Field[float64] `json:"drillSpeed,omitzero"`
	Collector  Field[bool]    `json:"collector,omitzero"`
	// Source is the script path relative to the prefabs directory.
	Source string `json:"source,omitempty"`
}

// Localization is the English name and description of an internal id.
type Localization struct {
	ID          string        `json:"id"`
	Name        Field[string] `json:"name,omitzero"`
	Description Field[string] `json:"desc,omitzero"`
}
