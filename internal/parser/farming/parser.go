package farming

import (
	"context"
	"path/filepath"

	"github.com/imyousuf/forgewiki/internal/luaast"
	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/parser"
)

// FarmingParser extracts plant harvest stages from farming.lua.
type FarmingParser struct{}

// NewParser creates a new farming parser.
func NewParser() *FarmingParser {
	return &FarmingParser{}
}

func (p *FarmingParser) Domain() parser.Domain {
	return parser.DomainFarming
}

func (p *FarmingParser) Parse(ctx context.Context, root string, cat *model.Catalog, env *parser.Env) error {
	path := filepath.Join(root, parser.SourcePaths[parser.DomainFarming])
	chunk, err := parser.ReadChunk(ctx, path)
	if err != nil {
		return err
	}
	entries := Extract(env.File(parser.DomainFarming, path), chunk)
	for _, e := range entries.Values() {
		cat.Farming.Set(e.Plant, e)
	}
	return nil
}

// Extract reads every `data.set(plant, { Plant(_, _, _, stages), ... })`.
// The stage list is the fourth argument of the first field whose value
// is a call carrying one.
func Extract(f *parser.File, chunk *luaast.Chunk) *model.OrderedMap[*model.FarmingEntry] {
	out := model.NewOrderedMap[*model.FarmingEntry]()
	for _, call := range parser.FilterCalls(chunk.Body, "data", "set") {
		plant := f.String(parser.Arg(call, 0))
		if plant == "" {
			f.Warn(call, "plant name did not resolve to a string; skipping")
			continue
		}

		entry := &model.FarmingEntry{
			Plant:  plant,
			Stages: model.NewOrderedMap[*model.FarmingStage](),
		}
		list := stageList(parser.ArgTable(call, 1))
		if list == nil {
			f.Warn(call, "plant %q declares no stage list", plant)
			out.Set(plant, entry)
			continue
		}

		stages := make([]*model.FarmingStage, 0, len(list.Fields))
		for _, field := range list.Fields {
			t := parser.AsTable(field.Value)
			if t == nil {
				f.Warn(field, "plant %q has a stage that is not a table", plant)
				continue
			}
			stages = append(stages, stage(f, plant, t))
		}
		// Keys depend on the fluid, so they are composed once every field
		// of a stage is known.
		for _, s := range stages {
			entry.Stages.Set(s.Key(), s)
		}
		out.Set(plant, entry)
	}
	return out
}

func stageList(def *luaast.Table) *luaast.Table {
	if def == nil {
		return nil
	}
	for _, field := range def.Fields {
		if t := parser.ArgTable(parser.AsCall(field.Value), 3); t != nil {
			return t
		}
	}
	return nil
}

func stage(f *parser.File, plant string, t *luaast.Table) *model.FarmingStage {
	s := &model.FarmingStage{PlantName: plant, Fluid: model.NoFluid}
	for _, kv := range t.Fields {
		switch kv.Name {
		case "type":
			s.Type = f.String(kv.Value)
		case "fluid":
			if fluid := f.String(kv.Value); fluid != "" {
				s.Fluid = fluid
			}
		case "totalTime":
			s.TotalTime = f.Number(kv.Value)
		case "loot":
			s.Loot = f.String(kv.Value)
		case "":
			f.Warn(kv, "plant %q has an unkeyed stage field", plant)
		default:
			f.Env().Debugf("farming: %s: ignoring stage field %q", plant, kv.Name)
		}
	}
	return s
}
