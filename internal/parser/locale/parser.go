package locale

import (
	"context"
	"maps"
	"path/filepath"

	"github.com/imyousuf/forgewiki/internal/luaast"
	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/parser"
)

// Message kinds carried in the third argument of locale.add.
const (
	KindName = "ItemName"
	KindDesc = "ItemDesc"
)

// suffixLen is the length of the "Name"/"Desc" suffix on message keys.
const suffixLen = 4

// DefaultOverrides names ids the localization file never covers.
var DefaultOverrides = map[string]string{
	"character.player":      "Player",
	"structure.planter_box": "Planter Box",
	"structure.hand":        "Hand",
	"structure.workbench":   "Workbench",
}

// LocaleParser extracts English names and descriptions.
type LocaleParser struct{}

// NewParser creates a new localization parser.
func NewParser() *LocaleParser {
	return &LocaleParser{}
}

func (p *LocaleParser) Domain() parser.Domain {
	return parser.DomainLocale
}

func (p *LocaleParser) Parse(ctx context.Context, root string, cat *model.Catalog, env *parser.Env) error {
	path := filepath.Join(root, parser.SourcePaths[parser.DomainLocale])
	chunk, err := parser.ReadChunk(ctx, path)
	if err != nil {
		return err
	}
	entries := Extract(env.File(parser.DomainLocale, path), chunk)
	for _, e := range entries.Values() {
		cat.Localizations.Set(e.ID, e)
	}
	return nil
}

// Extract reads `locale.add(key, text, ItemName|ItemDesc)` calls. The id
// is the key without its four-character suffix; other message kinds are
// ignored.
func Extract(f *parser.File, chunk *luaast.Chunk) *model.OrderedMap[*model.Localization] {
	out := model.NewOrderedMap[*model.Localization]()
	for _, call := range parser.FilterCalls(chunk.Body, "locale", "add") {
		kind := f.String(parser.Arg(call, 2))
		if kind != KindName && kind != KindDesc {
			continue
		}
		key := f.String(parser.Arg(call, 0))
		if len(key) <= suffixLen {
			f.Warn(call, "localization key %q is too short", key)
			continue
		}
		id := key[:len(key)-suffixLen]

		loc, ok := out.Get(id)
		if !ok {
			loc = &model.Localization{ID: id}
			out.Set(id, loc)
		}
		text := f.StringField(parser.Arg(call, 1))
		if kind == KindName {
			loc.Name = text
		} else {
			loc.Description = text
		}
	}
	return out
}

// Table answers display-name lookups for internal ids.
type Table struct {
	entries   *model.OrderedMap[*model.Localization]
	overrides map[string]string
}

// NewTable creates a Table over entries. DefaultOverrides apply first,
// then overrides; both take precedence over entries.
func NewTable(entries *model.OrderedMap[*model.Localization], overrides map[string]string) *Table {
	merged := maps.Clone(DefaultOverrides)
	maps.Copy(merged, overrides)
	return &Table{entries: entries, overrides: merged}
}

// Name returns the display name of id, falling back to id itself.
func (t *Table) Name(id string) string {
	if name, ok := t.overrides[id]; ok {
		return name
	}
	if loc, ok := t.entries.Get(id); ok {
		if name, ok := loc.Name.Get(); ok {
			return name
		}
	}
	return id
}

// Description returns the description of id, or "".
func (t *Table) Description(id string) string {
	if loc, ok := t.entries.Get(id); ok {
		return loc.Description.Or("")
	}
	return ""
}

// Has reports whether id has a name of its own.
func (t *Table) Has(id string) bool {
	if _, ok := t.overrides[id]; ok {
		return true
	}
	loc, ok := t.entries.Get(id)
	return ok && loc.Name.Ok()
}
