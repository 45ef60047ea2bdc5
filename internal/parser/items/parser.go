package items

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/imyousuf/forgewiki/internal/luaast"
	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/parser"
	"github.com/imyousuf/forgewiki/internal/resolve"
)

// ItemsParser extracts item declarations from items.lua.
type ItemsParser struct{}

// NewParser creates a new items parser.
func NewParser() *ItemsParser {
	return &ItemsParser{}
}

func (p *ItemsParser) Domain() parser.Domain {
	return parser.DomainItems
}

func (p *ItemsParser) Parse(ctx context.Context, root string, cat *model.Catalog, env *parser.Env) error {
	path := filepath.Join(root, parser.SourcePaths[parser.DomainItems])
	chunk, err := parser.ReadChunk(ctx, path)
	if err != nil {
		return err
	}
	items := Extract(env.File(parser.DomainItems, path), chunk)
	for _, item := range items.Values() {
		cat.Items.Set(item.ID, item)
	}
	return nil
}

// Extract returns one Item per `items.set(id, { category, ... })` call.
func Extract(f *parser.File, chunk *luaast.Chunk) *model.OrderedMap[*model.Item] {
	out := model.NewOrderedMap[*model.Item]()
	for _, call := range parser.FilterCalls(chunk.Body, "items", "set") {
		id := f.String(parser.Arg(call, 0))
		if id == "" {
			f.Warn(call, "item id did not resolve to a string; skipping")
			continue
		}

		category := ""
		if c := f.String(parser.FieldAt(parser.ArgTable(call, 1), 0)); c != "" {
			category = resolve.Label(resolve.SnakeCase(c))
		}
		_, short, _ := strings.Cut(id, ".")

		out.Set(id, &model.Item{
			ID:        id,
			Category:  category,
			Type:      model.ItemType(id),
			ShortName: resolve.Label(short),
		})
	}
	return out
}
