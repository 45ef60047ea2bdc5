package linker

import (
	"context"
	"sort"

	"github.com/imyousuf/forgewiki/internal/model"
)

// SeedIDs maps plant names to the id of the prefab that plants them.
//
// A plant prefab carries the plant name; its seed is the prefab whose
// placement creates that plant prefab. A seed that creates the plant name
// directly also counts. When several seeds qualify the smallest id wins.
func SeedIDs(prefabs *model.OrderedMap[*model.Prefab]) map[string]string {
	plantOf := make(map[string]string) // plant prefab id -> plant name
	for _, p := range prefabs.Values() {
		if p.PlantName != "" {
			plantOf[p.ID] = p.PlantName
		}
	}

	candidates := make(map[string][]string)
	for _, p := range prefabs.Values() {
		if p.Creates == "" {
			continue
		}
		if plant, ok := plantOf[p.Creates]; ok {
			candidates[plant] = append(candidates[plant], p.ID)
		} else {
			candidates[p.Creates] = append(candidates[p.Creates], p.ID)
		}
	}

	out := make(map[string]string, len(candidates))
	for plant, ids := range candidates {
		sort.Strings(ids)
		out[plant] = ids[0]
	}
	return out
}

func (l *Linker) linkSeeds(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	seeds := SeedIDs(l.cat.Prefabs)
	count := 0
	for _, entry := range l.cat.Farming.Values() {
		if id, ok := seeds[entry.Plant]; ok {
			entry.SeedID = id
			count++
		}
	}
	return count, nil
}
