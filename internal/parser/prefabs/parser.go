package prefabs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/imyousuf/forgewiki/internal/luaast"
	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/parser"
)

// DefaultPattern selects every script under the prefabs directory.
const DefaultPattern = "**/*.lua"

// rootParent stands in for the parent directory name of scripts that sit
// directly in the prefabs directory.
const rootParent = "prefabs"

var matterTypes = map[string]string{
	"MatterType.Mineral": "material.mineral",
	"MatterType.Biomass": "material.biomass",
	"MatterType.Metal":   "material.metal",
	"MatterType.Mana":    "material.mana",
}

// PrefabsParser walks the prefabs directory and summarizes each script.
type PrefabsParser struct {
	pattern string
	exclude []string
}

// NewParser creates a prefabs parser matching pattern (DefaultPattern when
// empty) and skipping paths that match any exclude pattern.
func NewParser(pattern string, exclude []string) *PrefabsParser {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &PrefabsParser{pattern: pattern, exclude: exclude}
}

func (p *PrefabsParser) Domain() parser.Domain {
	return parser.DomainPrefabs
}

// Files returns the script paths, relative to dir and slash-separated,
// in sorted order.
func (p *PrefabsParser) Files(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), p.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s in %s: %w", p.pattern, dir, err)
	}
	out := matches[:0]
	for _, rel := range matches {
		if !p.excluded(rel) {
			out = append(out, rel)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (p *PrefabsParser) excluded(rel string) bool {
	for _, pat := range p.exclude {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

func (p *PrefabsParser) Parse(ctx context.Context, root string, cat *model.Catalog, env *parser.Env) error {
	dir := filepath.Join(root, parser.SourcePaths[parser.DomainPrefabs])
	files, err := p.Files(dir)
	if err != nil {
		return err
	}

	fsys := os.DirFS(dir)
	set := NewSet(env)
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		f := env.File(parser.DomainPrefabs, path.Join(dir, rel))
		chunk, err := readChunk(ctx, fsys, rel)
		if err != nil {
			f.Report(parser.SeverityFile, "skipping: %v", err)
			continue
		}
		pf, explicit := Extract(f, chunk, rel)
		set.Add(pf, explicit)
	}

	for _, pf := range set.Merge().Values() {
		cat.Prefabs.Set(pf.ID, pf)
	}
	env.Debugf("prefabs: %d scripts, %d records", len(files), set.main.Len())
	return nil
}

func readChunk(ctx context.Context, fsys fs.FS, rel string) (*luaast.Chunk, error) {
	content, err := fs.ReadFile(fsys, rel)
	if err != nil {
		return nil, err
	}
	return luaast.Parse(ctx, content)
}

// SynthesizeID returns `<parentDir>.<baseName>` for a slash-separated
// script path relative to the prefabs directory.
func SynthesizeID(rel string) string {
	parent := path.Base(path.Dir(rel))
	if parent == "." || parent == "/" {
		parent = rootParent
	}
	return parent + "." + strings.TrimSuffix(path.Base(rel), path.Ext(rel))
}

// Extract assembles one prefab from the capability calls of a script.
// explicit reports whether the id came from the placement declaration
// rather than the script's path.
func Extract(f *parser.File, chunk *luaast.Chunk, rel string) (pf *model.Prefab, explicit bool) {
	first := func(method string) *luaast.Call {
		calls := parser.FilterCalls(chunk.Body, "prefab", method)
		if len(calls) == 0 {
			return nil
		}
		return calls[0]
	}
	// Every capability takes a single table argument.
	arg := func(method string) *luaast.Table {
		return parser.ArgTable(first(method), 0)
	}

	pf = &model.Prefab{ID: SynthesizeID(rel), Source: rel}

	if t := arg("addPlacement"); t != nil {
		for _, field := range t.Fields {
			if c := parser.AsCall(field.Value); c != nil && field.Positional() {
				pf.Creates = f.String(parser.Arg(c, 0))
				break
			}
		}
		if id := f.String(parser.Keyed(t, "id")); id != "" {
			pf.ID, explicit = id, true
		}
	}

	if t := arg("addFuel"); t != nil {
		kind := f.String(parser.FieldAt(t, 0))
		switch kind {
		case "FuelTypes.Biofuel":
			pf.Bio = f.Number(parser.FieldAt(t, 1))
		case "FuelTypes.Mana":
			pf.Mana = f.Number(parser.FieldAt(t, 1))
		default:
			f.Warn(t, "unknown fuel type %q", kind)
		}
	}

	if t := arg("addTransport"); t != nil {
		pf.Transport = &model.Transport{
			Type:  f.String(parser.FieldAt(t, 0)),
			Speed: f.Number(parser.FieldAt(t, 1)),
		}
	}

	if t := arg("addMatter"); t != nil {
		kind := f.String(parser.FieldAt(t, 0))
		if tag, ok := matterTypes[kind]; ok {
			pf.Matter = &model.Matter{Type: tag, Amount: f.Number(parser.FieldAt(t, 1))}
		} else {
			f.Warn(t, "unknown matter type %q", kind)
		}
	}

	if t := arg("addItem"); t != nil {
		pf.Icon = f.String(parser.FieldAt(t, 0))
		pf.Stack = f.Number(parser.FieldAt(t, 1))
	}

	if t := arg("addStats"); t != nil {
		stats := parser.ArgTable(parser.AsCall(parser.FieldAt(t, 0)), 1)
		for _, field := range fieldsOf(stats) {
			row := parser.AsTable(field.Value)
			label, ok := parser.FieldAt(row, 0).(*luaast.StringLit)
			if !ok {
				continue
			}
			value := parser.Arg(parser.AsCall(parser.FieldAt(row, 1)), 0)
			switch label.Value {
			case "HP":
				pf.HP = f.Number(value)
			case "ATK":
				pf.ATK = f.Number(value)
			case "DEF":
				pf.DEF = f.Number(value)
			}
		}
	}

	if t := arg("addCollector"); t != nil {
		pf.Collector = f.Bool(parser.FieldAt(t, 0))
	}

	if t := arg("addPlant"); t != nil {
		pf.PlantName = f.String(parser.Arg(parser.AsCall(parser.FieldAt(t, 0)), 0))
	}

	if t := arg("addDrill"); t != nil {
		pf.DrillSpeed = f.Number(parser.FieldAt(t, 0))
	}

	if t := arg("addConsumer"); t != nil {
		pf.Power.Idle = f.Number(parser.Keyed(t, "idlePower"))
		pf.Power.Active = f.Number(parser.Keyed(t, "activePower"))
	}

	return pf, explicit
}

func fieldsOf(t *luaast.Table) []*luaast.Field {
	if t == nil {
		return nil
	}
	return t.Fields
}

// Set accumulates prefabs in two buckets. Explicit ids go straight to the
// main bucket, last write wins, and a replaced record is reported as a
// collision. Synthesized ids are held as extras and
// only merged where the id is still free; every rejected extra is
// reported as a collision and the earlier record is kept.
type Set struct {
	env    *parser.Env
	main   *model.OrderedMap[*model.Prefab]
	extras *model.OrderedMap[*model.Prefab]
}

// NewSet creates an empty Set reporting to env.
func NewSet(env *parser.Env) *Set {
	return &Set{
		env:    env,
		main:   model.NewOrderedMap[*model.Prefab](),
		extras: model.NewOrderedMap[*model.Prefab](),
	}
}

// Add registers pf.
func (s *Set) Add(pf *model.Prefab, explicit bool) {
	if explicit {
		if prev, ok := s.main.Get(pf.ID); ok {
			s.collision(prev, pf)
		}
		s.main.Set(pf.ID, pf)
		return
	}
	if prev, ok := s.extras.Get(pf.ID); ok {
		s.collision(pf, prev)
		return
	}
	s.extras.Set(pf.ID, pf)
}

// Merge folds the extras into the main bucket and returns it.
func (s *Set) Merge() *model.OrderedMap[*model.Prefab] {
	for _, pf := range s.extras.Values() {
		if prev, ok := s.main.Get(pf.ID); ok {
			s.collision(pf, prev)
			continue
		}
		s.main.Set(pf.ID, pf)
	}
	s.extras = model.NewOrderedMap[*model.Prefab]()
	return s.main
}

func (s *Set) collision(dropped, kept *model.Prefab) {
	s.env.Diag(parser.Diagnostic{
		Severity: parser.SeverityCollision,
		Domain:   parser.DomainPrefabs,
		File:     dropped.Source,
		Message:  fmt.Sprintf("id collision %q: keeping %s", dropped.ID, kept.Source),
	})
}
