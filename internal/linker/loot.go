package linker

import (
	"context"
	"math"

	"github.com/imyousuf/forgewiki/internal/model"
)

// msPerMinute converts stage times, which are in milliseconds.
const msPerMinute = 60000

// PerMinute returns how many of a drop a stage yields per minute,
// rounded to three decimals.
func PerMinute(minQuantity, totalTimeMs float64) float64 {
	rate := minQuantity / (totalTimeMs / msPerMinute)
	return math.Round(rate*1000) / 1000
}

// linkFarming attaches each stage's loot table. Every stage gets its own
// copy of the table because the per-minute rates depend on the stage's
// time and several plants may share one table.
func (l *Linker) linkFarming(ctx context.Context) (int, error) {
	count := 0
	for _, entry := range l.cat.Farming.Values() {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		for _, stage := range entry.Stages.Values() {
			if stage.Loot == "" {
				continue
			}
			table, ok := l.cat.Loot.Get(stage.Loot)
			if !ok {
				if l.verbose {
					l.log("  %s/%s: no loot table %q", entry.Plant, stage.Key(), stage.Loot)
				}
				continue
			}
			linked := table.Clone()
			if ms, ok := stage.TotalTime.Get(); ok && ms > 0 {
				for i := range linked.Drops {
					if lo, ok := linked.Drops[i].MinQuantity.Get(); ok {
						linked.Drops[i].PerMinute = model.Some(PerMinute(lo, ms))
					}
				}
			}
			stage.LootTable = linked
			count++
		}
	}
	return count, nil
}

// linkHusbandry attaches each food's loot table. Foods have no timing so
// the shared table is attached as is.
func (l *Linker) linkHusbandry(ctx context.Context) (int, error) {
	count := 0
	for _, entry := range l.cat.Husbandry.Values() {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		for _, food := range entry.Foods.Values() {
			if food.Loot == "" {
				continue
			}
			table, ok := l.cat.Loot.Get(food.Loot)
			if !ok {
				if l.verbose {
					l.log("  %s/%s: no loot table %q", entry.Name, food.Food, food.Loot)
				}
				continue
			}
			food.LootTable = table
			count++
		}
	}
	return count, nil
}
