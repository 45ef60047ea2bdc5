package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imyousuf/forgewiki/internal/config"
)

func newInitCmd() *cobra.Command {
	var (
		root        string
		format      string
		interactive bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .forgewiki.yaml config file",
		Long: `Create a forgewiki configuration file in the current directory.

Without flags the defaults are written; --root and --format adjust them.
Use --interactive to fill the configuration in with a form.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}

			cfg := config.Default()
			if root != "" {
				cfg.Source.Root = root
			}
			if format != "" {
				cfg.Output.Format = format
			}

			if interactive {
				saved, err := runConfigForm(cfg, "Write configuration?")
				if err != nil {
					return err
				}
				if !saved {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			} else if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			if err := config.WriteConfig(cfg, path); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}
			fmt.Fprintf(out, "Created %s\n", path)

			// Print next steps.
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintf(out, "  1. Check that source.root (%s) points at the game's data scripts\n", cfg.Source.Root)
			fmt.Fprintln(out, "  2. Add to .gitignore:")
			fmt.Fprintf(out, "       %s\n", cfg.Store.Path)
			fmt.Fprintf(out, "       %s/\n", cfg.Output.Dir)
			fmt.Fprintln(out, "  3. Run 'forgewiki extract --store' to build the first snapshot")
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "data scripts root")
	cmd.Flags().StringVar(&format, "format", "", "output format (yaml, json or toml)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "fill the configuration in interactively")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}
