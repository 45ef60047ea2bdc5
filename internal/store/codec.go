package store

import (
	"encoding/json"
	"fmt"

	"github.com/imyousuf/forgewiki/internal/model"
)

// codec stores one domain of the catalog.
type codec struct {
	domain string
	each   func(cat *model.Catalog, fn func(id string, v any) error) error
	load   func(cat *model.Catalog, id string, data []byte) error
}

func newCodec[V any](domain string, field func(*model.Catalog) *model.OrderedMap[V]) codec {
	return codec{
		domain: domain,
		each: func(cat *model.Catalog, fn func(string, any) error) error {
			m := field(cat)
			for _, id := range m.Keys() {
				v, _ := m.Get(id)
				if err := fn(id, v); err != nil {
					return err
				}
			}
			return nil
		},
		load: func(cat *model.Catalog, id string, data []byte) error {
			var v V
			if err := json.Unmarshal(data, &v); err != nil {
				return fmt.Errorf("unmarshal %s %q: %w", domain, id, err)
			}
			field(cat).Set(id, v)
			return nil
		},
	}
}

// codecs lists the domains in the order they are saved and exported.
var codecs = []codec{
	newCodec("localizations", func(c *model.Catalog) *model.OrderedMap[*model.Localization] { return c.Localizations }),
	newCodec("items", func(c *model.Catalog) *model.OrderedMap[*model.Item] { return c.Items }),
	newCodec("recipes", func(c *model.Catalog) *model.OrderedMap[*model.Recipe] { return c.Recipes }),
	newCodec("loot", func(c *model.Catalog) *model.OrderedMap[*model.LootEntry] { return c.Loot }),
	newCodec("farming", func(c *model.Catalog) *model.OrderedMap[*model.FarmingEntry] { return c.Farming }),
	newCodec("husbandry", func(c *model.Catalog) *model.OrderedMap[*model.HusbandryEntry] { return c.Husbandry }),
	newCodec("prefabs", func(c *model.Catalog) *model.OrderedMap[*model.Prefab] { return c.Prefabs }),
}

func codecFor(domain string) (codec, bool) {
	for _, c := range codecs {
		if c.domain == domain {
			return c, true
		}
	}
	return codec{}, false
}
