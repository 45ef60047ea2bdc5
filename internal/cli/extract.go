package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/imyousuf/forgewiki/internal/config"
	"github.com/imyousuf/forgewiki/internal/export"
	"github.com/imyousuf/forgewiki/internal/parser"
	"github.com/imyousuf/forgewiki/internal/session"
	"github.com/imyousuf/forgewiki/internal/store"
)

// extractOptions selects what an extraction writes besides the catalog.
type extractOptions struct {
	itemInfo bool   // write one info file per item
	store    string // snapshot path; empty skips the snapshot
}

func newExtractCmd() *cobra.Command {
	var (
		outDir  string
		format  string
		save    bool
		noItems bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the catalog and write data files",
		Long: `Parse every data script under source.root, link the records and
write one data file per domain plus one info file per item into output.dir.

A domain whose script is missing its entry function is reported and
skipped; the other domains are still written and the command fails at the
end. With --store the catalog is also saved as a snapshot for 'status'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if outDir != "" {
				cfg.Output.Dir = outDir
			}
			if format != "" {
				cfg.Output.Format = format
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			opts := extractOptions{itemInfo: !noItems}
			if save {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				opts.store = cfg.StorePath(wd)
			}
			_, err = runExtract(cmd.Context(), cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (overrides output.dir)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: yaml, json or toml (overrides output.format)")
	cmd.Flags().BoolVar(&save, "store", false, "save the catalog to the snapshot store")
	cmd.Flags().BoolVar(&noItems, "no-items", false, "skip the per-item info files")

	return cmd
}

// newLogger returns a logger writing one line per call to w.
func newLogger(w io.Writer) func(format string, args ...any) {
	return func(format string, args ...any) {
		fmt.Fprintf(w, format+"\n", args...)
	}
}

// sessionConfig builds the session configuration for cfg.
func sessionConfig(cfg *config.Config, logFn func(format string, args ...any)) session.Config {
	return session.Config{
		Root:        cfg.Source.Root,
		PrefabsGlob: cfg.Source.PrefabsGlob,
		Exclude:     cfg.Source.Exclude,
		Overrides:   cfg.Localization.OverrideMap(),
		Verbose:     verbose,
		Logger:      logFn,
	}
}

// runExtract runs one session over cfg and writes its output. Domain
// failures do not stop the writing; they are returned once everything
// else is done.
func runExtract(ctx context.Context, cfg *config.Config, opts extractOptions, out, errOut io.Writer) (*session.Session, error) {
	format, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	logFn := newLogger(errOut)
	s := session.New(sessionConfig(cfg, logFn))
	runErr := s.Run(ctx)
	if runErr != nil && ctx.Err() != nil {
		return nil, runErr
	}

	w := export.NewWriter(cfg.Output.Dir, format, logFn)
	files, err := w.WriteCatalog(s.Catalog())
	if err != nil {
		return s, fmt.Errorf("write catalog: %w", err)
	}
	itemFiles := 0
	if opts.itemInfo {
		if itemFiles, err = w.WriteItemInfo(s); err != nil {
			return s, fmt.Errorf("write item info: %w", err)
		}
	}

	if opts.store != "" {
		if err := saveSnapshot(ctx, opts.store, s); err != nil {
			return s, err
		}
	}

	printRunSummary(out, s)
	fmt.Fprintf(out, "  Wrote %d domain files and %d item files to %s\n", len(files), itemFiles, cfg.Output.Dir)
	if opts.store != "" {
		fmt.Fprintf(out, "  Snapshot saved to %s\n", opts.store)
	}

	if runErr != nil {
		return s, fmt.Errorf("extraction incomplete: %w", runErr)
	}
	return s, nil
}

// saveSnapshot stores the catalog of s with the fingerprints of its sources.
func saveSnapshot(ctx context.Context, path string, s *session.Session) error {
	fps, err := store.FingerprintTree(s.Root())
	if err != nil {
		return fmt.Errorf("fingerprint sources: %w", err)
	}

	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer st.Close()

	if err := st.SaveCatalog(ctx, s.Catalog()); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	if err := st.SaveFingerprints(ctx, fps); err != nil {
		return fmt.Errorf("save fingerprints: %w", err)
	}
	stats := s.Stats()
	meta := store.Meta{
		Root:        s.Root(),
		LastRun:     stats.LastRun,
		Counts:      stats.Counts,
		Diagnostics: stats.Diagnostics,
	}
	if err := st.SaveMeta(ctx, meta); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}

// printRunSummary prints record counts and diagnostics of a finished run.
// Individual diagnostics are listed in verbose mode; fatal ones always.
func printRunSummary(out io.Writer, s *session.Session) {
	stats := s.Stats()

	fmt.Fprintln(out)
	printSection(out, "Records")
	for _, domain := range slices.Sorted(maps.Keys(stats.Counts)) {
		printKV(out, domain, fmt.Sprintf("%d", stats.Counts[domain]))
	}
	fmt.Fprintln(out)

	if len(stats.Diagnostics) > 0 {
		printSection(out, "Diagnostics")
		for _, sev := range slices.Sorted(maps.Keys(stats.Diagnostics)) {
			printKV(out, sev, fmt.Sprintf("%d", stats.Diagnostics[sev]))
		}
		for _, d := range s.Diagnostics() {
			if verbose || d.Severity == parser.SeverityFatal {
				fmt.Fprintf(out, "    %s\n", warnStyle.Render(d.String()))
			}
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "  Extracted in %s\n", stats.Duration.Round(time.Millisecond))
}

// isDomainFailure reports whether err only records failed domains, as
// opposed to an aborted run.
func isDomainFailure(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
