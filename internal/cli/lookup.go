package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"

	"github.com/imyousuf/forgewiki/internal/config"
	"github.com/imyousuf/forgewiki/internal/export"
	"github.com/imyousuf/forgewiki/internal/session"
)

// maxSuggestions caps the "did you mean" list of an unknown id.
const maxSuggestions = 3

func newLookupCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "lookup <id>",
		Short: "Show everything known about one item",
		Long: `Extract the catalog and print the info record of one internal id:
display name, item and prefab data, the recipes producing and consuming it,
and the plants and animals that drop or eat it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if format != "" {
				cfg.Output.Format = format
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			f, err := export.ParseFormat(cfg.Output.Format)
			if err != nil {
				return err
			}

			s := session.New(sessionConfig(cfg, newLogger(cmd.ErrOrStderr())))
			if err := s.Run(cmd.Context()); err != nil {
				if !isDomainFailure(err) {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}
			return printLookup(cmd.OutOrStdout(), s, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: yaml, json or toml")

	return cmd
}

// printLookup writes the info record of id, or fails with suggestions when
// the session knows nothing about it.
func printLookup(out io.Writer, s *session.Session, id string, f export.Format) error {
	if !known(s, id) {
		if near := suggest(s, id); len(near) > 0 {
			return fmt.Errorf("unknown id %q (did you mean %s?)", id, strings.Join(near, ", "))
		}
		return fmt.Errorf("unknown id %q", id)
	}
	data, err := export.Encode(s.ItemInfo(id), f)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func known(s *session.Session, id string) bool {
	cat := s.Catalog()
	_, item := cat.Items.Get(id)
	_, prefab := cat.Prefabs.Get(id)
	return item || prefab || s.Names().Has(id)
}

// suggest returns the closest item ids to id, nearest first.
func suggest(s *session.Session, id string) []string {
	type candidate struct {
		id   string
		dist int
	}
	limit := len(id)/3 + 1
	var cands []candidate
	for _, other := range s.Catalog().Items.Keys() {
		if d := levenshtein.ComputeDistance(id, other); d <= limit {
			cands = append(cands, candidate{other, d})
		}
	}
	slices.SortStableFunc(cands, func(a, b candidate) int { return a.dist - b.dist })
	out := make([]string, 0, maxSuggestions)
	for _, c := range cands {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, c.id)
	}
	return out
}
