package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imyousuf/forgewiki/internal/config"
	"github.com/imyousuf/forgewiki/internal/parser"
	"github.com/imyousuf/forgewiki/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var (
		save    bool
		noItems bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-extract whenever a script changes",
		Long: `Run an extraction, then watch source.root and run a fresh extraction
after every burst of script changes. A failing run is reported and the
watch continues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			opts := extractOptions{itemInfo: !noItems}
			if save {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				opts.store = cfg.StorePath(wd)
			}

			// Set up signal handling.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
					cancel()
				case <-ctx.Done():
				}
			}()

			w := watcher.NewWatcher(watcherConfig(cfg))
			defer w.Close()
			batches, err := w.Start(ctx)
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			fmt.Fprintf(out, "Watching %s (debounce %s)...\n", cfg.Source.Root, cfg.Watch.Debounce)

			runs := 0
			rerun := func() error {
				runs++
				if _, err := runExtract(ctx, cfg, opts, out, errOut); err != nil {
					if !isDomainFailure(err) {
						return err
					}
					fmt.Fprintf(errOut, "Warning: %v\n", err)
				}
				return nil
			}

			if err := rerun(); err != nil {
				return err
			}
			for batch := range batches {
				fmt.Fprintf(out, "\n%d script(s) changed at %s\n", len(batch.Events), batch.Time.Format("15:04:05"))
				if verbose {
					for _, e := range batch.Events {
						fmt.Fprintf(out, "  %-7s %s\n", e.Op, e.Path)
					}
				}
				if err := rerun(); err != nil {
					if ctx.Err() != nil {
						break
					}
					return err
				}
			}

			fmt.Fprintf(out, "\nStopped after %d extraction(s).\n", runs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "store", false, "save every extraction to the snapshot store")
	cmd.Flags().BoolVar(&noItems, "no-items", false, "skip the per-item info files")

	return cmd
}

// watcherConfig builds the watcher configuration. Exclude patterns are
// written relative to the prefabs directory, the watcher matches them
// relative to the data root.
func watcherConfig(cfg *config.Config) watcher.Config {
	exclude := make([]string, len(cfg.Source.Exclude))
	for i, pat := range cfg.Source.Exclude {
		exclude[i] = path.Join(parser.SourcePaths[parser.DomainPrefabs], pat)
	}
	return watcher.Config{
		Root:     cfg.Source.Root,
		Exclude:  exclude,
		Debounce: cfg.Watch.Debounce,
	}
}
