package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/imyousuf/forgewiki/internal/config"
	"github.com/imyousuf/forgewiki/internal/store"
)

// maxListedChanges caps the paths listed per change kind.
const maxListedChanges = 10

func newStatusCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored snapshot and whether sources changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dbPath == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				dbPath = cfg.StorePath(wd)
			}

			out := cmd.OutOrStdout()
			if _, err := os.Stat(dbPath); err != nil {
				fmt.Fprintf(out, "No snapshot at %s; run 'forgewiki extract --store' first.\n", dbPath)
				return nil
			}

			st, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open snapshot store: %w", err)
			}
			defer st.Close()

			ctx := cmd.Context()
			meta, err := st.Meta(ctx)
			if errors.Is(err, store.ErrNoSnapshot) {
				fmt.Fprintf(out, "Snapshot store %s is empty; run 'forgewiki extract --store' first.\n", dbPath)
				return nil
			}
			if err != nil {
				return fmt.Errorf("read snapshot metadata: %w", err)
			}
			stats, err := st.Stats(ctx)
			if err != nil {
				return fmt.Errorf("get stats: %w", err)
			}
			stored, err := st.Fingerprints(ctx)
			if err != nil {
				return fmt.Errorf("read fingerprints: %w", err)
			}

			root := meta.Root
			if root == "" {
				root = cfg.Source.Root
			}
			current, err := store.FingerprintTree(root)
			if err != nil {
				return fmt.Errorf("fingerprint sources: %w", err)
			}

			printStatus(out, dbPath, meta, stats, store.Diff(stored, current))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db-path", "", "snapshot store path (default: store.path)")

	return cmd
}

func printStatus(out io.Writer, dbPath string, meta store.Meta, stats *store.Stats, changes store.Changes) {
	fmt.Fprintln(out)
	printSection(out, "Snapshot")
	printKV(out, "Store", dbPath)
	printKV(out, "Data root", meta.Root)
	printKV(out, "Last run", meta.LastRun.Format(time.RFC3339))
	printKV(out, "Sources", fmt.Sprintf("%d", stats.Fingerprints))
	fmt.Fprintln(out)

	printSection(out, "Records")
	for _, domain := range slices.Sorted(maps.Keys(stats.Records)) {
		printKV(out, domain, fmt.Sprintf("%d", stats.Records[domain]))
	}
	fmt.Fprintln(out)

	if len(meta.Diagnostics) > 0 {
		printSection(out, "Diagnostics")
		for _, sev := range slices.Sorted(maps.Keys(meta.Diagnostics)) {
			printKV(out, sev, fmt.Sprintf("%d", meta.Diagnostics[sev]))
		}
		fmt.Fprintln(out)
	}

	printSection(out, "Sources")
	if changes.Empty() {
		printKV(out, "State", "up to date")
		fmt.Fprintln(out)
		return
	}
	printKV(out, "State", warnStyle.Render("changed since last run"))
	printChanges(out, "Added", changes.Added)
	printChanges(out, "Modified", changes.Modified)
	printChanges(out, "Removed", changes.Removed)
	fmt.Fprintln(out)
}

func printChanges(out io.Writer, label string, paths []string) {
	if len(paths) == 0 {
		return
	}
	printKV(out, label, fmt.Sprintf("%d", len(paths)))
	for i, p := range paths {
		if i == maxListedChanges {
			fmt.Fprintf(out, "      ... and %d more\n", len(paths)-i)
			break
		}
		fmt.Fprintf(out, "      %s\n", p)
	}
}
