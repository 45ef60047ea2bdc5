package model

// Catalog holds one map per domain, each in source discovery order.
type Catalog struct {
	Items         *OrderedMap[*Item]           `json:"items"`
	Recipes       *OrderedMap[*Recipe]         `json:"recipes"`
	Loot          *OrderedMap[*LootEntry]      `json:"loot"`
	Farming       *OrderedMap[*FarmingEntry]   `json:"farming"`
	Husbandry     *OrderedMap[*HusbandryEntry] `json:"husbandry"`
	Prefabs       *OrderedMap[*Prefab]         `json:"prefabs"`
	Localizations *OrderedMap[*Localization]   `json:"localizations"`
}

// NewCatalog creates a Catalog with every map empty.
func NewCatalog() *Catalog {
	return &Catalog{
		Items:         NewOrderedMap[*Item](),
		Recipes:       NewOrderedMap[*Recipe](),
		Loot:          NewOrderedMap[*LootEntry](),
		Farming:       NewOrderedMap[*FarmingEntry](),
		Husbandry:     NewOrderedMap[*HusbandryEntry](),
		Prefabs:       NewOrderedMap[*Prefab](),
		Localizations: NewOrderedMap[*Localization](),
	}
}

// Counts returns the number of records per domain.
func (c *Catalog) Counts() map[string]int {
	return map[string]int{
		"items":         c.Items.Len(),
		"recipes":       c.Recipes.Len(),
		"loot":          c.Loot.Len(),
		"farming":       c.Farming.Len(),
		"husbandry":     c.Husbandry.Len(),
		"prefabs":       c.Prefabs.Len(),
		"localizations": c.Localizations.Len(),
	}
}
