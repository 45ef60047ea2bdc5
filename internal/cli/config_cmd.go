package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/imyousuf/forgewiki/internal/config"
	"github.com/imyousuf/forgewiki/internal/export"
)

// Style definitions for config and status views.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	labelStyle = lipgloss.NewStyle().
			Faint(true).
			Width(18)
	valueStyle = lipgloss.NewStyle()
	warnStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#FB923C"})
)

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// configPath returns the file the configuration is read from and written to.
func configPath() string {
	if p := viper.GetString("config_file"); p != "" {
		return p
	}
	return config.DefaultConfigFile + "." + config.DefaultConfigType
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit the configuration",
		Long: `View or edit forgewiki configuration.

By default, displays the effective configuration: defaults, overlaid by
.forgewiki.yaml, overlaid by FORGEWIKI_* environment variables.
Use 'config edit' to edit configuration interactively.`,
		RunE: runConfigView,
	}

	cmd.AddCommand(newConfigEditCmd())

	return cmd
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := cmd.OutOrStdout()
	path := configPath()
	if _, err := os.Stat(path); err != nil {
		path += " (not found, using defaults)"
	}

	fmt.Fprintln(out)
	printSection(out, "Config File")
	printKV(out, "Path", path)
	fmt.Fprintln(out)

	printSection(out, "Source")
	printKV(out, "Root", cfg.Source.Root)
	printKV(out, "Prefabs glob", cfg.Source.PrefabsGlob)
	printKV(out, "Exclude", joinOrNone(cfg.Source.Exclude))
	fmt.Fprintln(out)

	printSection(out, "Output")
	printKV(out, "Directory", cfg.Output.Dir)
	printKV(out, "Format", cfg.Output.Format)
	fmt.Fprintln(out)

	printSection(out, "Store")
	printKV(out, "Path", cfg.Store.Path)
	fmt.Fprintln(out)

	printSection(out, "Localization")
	if len(cfg.Localization.Overrides) == 0 {
		printKV(out, "Overrides", "(none)")
	}
	for _, o := range cfg.Localization.Overrides {
		printKV(out, o.ID, o.Name)
	}
	fmt.Fprintln(out)

	printSection(out, "Watch")
	printKV(out, "Debounce", cfg.Watch.Debounce.String())
	fmt.Fprintln(out)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "  %s\n\n", warnStyle.Render("invalid: "+err.Error()))
	}
	return nil
}

func printSection(out io.Writer, title string) {
	fmt.Fprintf(out, "  %s\n", headerStyle.Render(title))
}

func printKV(out io.Writer, label, value string) {
	fmt.Fprintf(out, "    %s%s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "(none)"
	}
	return strings.Join(s, ", ")
}

func newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the configuration interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			saved, err := runConfigForm(cfg, "Save changes?")
			if err != nil {
				return err
			}
			if !saved {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
			path := configPath()
			if err := config.WriteConfig(cfg, path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(out, "Configuration saved to %s\n", path)
			return nil
		},
	}
}

// runConfigForm edits cfg in place through an interactive form and reports
// whether the user confirmed.
func runConfigForm(cfg *config.Config, confirmTitle string) (bool, error) {
	root := cfg.Source.Root
	glob := cfg.Source.PrefabsGlob
	exclude := strings.Join(cfg.Source.Exclude, ", ")
	outDir := cfg.Output.Dir
	format := cfg.Output.Format
	storePath := cfg.Store.Path
	debounce := cfg.Watch.Debounce.String()
	var confirm bool

	formatOptions := make([]huh.Option[string], len(export.Formats))
	for i, f := range export.Formats {
		formatOptions[i] = huh.NewOption(strings.ToUpper(string(f)), string(f))
	}

	notEmpty := func(what string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s cannot be empty", what)
			}
			return nil
		}
	}

	form := huh.NewForm(
		// Group 1: Sources
		huh.NewGroup(
			huh.NewInput().
				Title("Data scripts root").
				Description("Directory holding items.lua, loot.lua and prefabs/").
				Value(&root).
				Validate(notEmpty("data root")),
			huh.NewInput().
				Title("Prefab pattern").
				Value(&glob).
				Placeholder("**/*.lua"),
			huh.NewInput().
				Title("Exclude patterns").
				Description("Comma separated, relative to the prefabs directory").
				Value(&exclude),
		).Title("Sources"),

		// Group 2: Output
		huh.NewGroup(
			huh.NewInput().
				Title("Output directory").
				Value(&outDir).
				Validate(notEmpty("output directory")),
			huh.NewSelect[string]().
				Title("Output format").
				Options(formatOptions...).
				Value(&format),
			huh.NewInput().
				Title("Snapshot store").
				Value(&storePath),
			huh.NewInput().
				Title("Watch debounce").
				Value(&debounce).
				Placeholder("300ms"),
		).Title("Output"),

		// Group 3: Confirm
		huh.NewGroup(
			huh.NewNote().
				Title("Summary").
				DescriptionFunc(func() string {
					return fmt.Sprintf(
						"Root:      %s\n"+
							"Prefabs:   %s\n"+
							"Output:    %s (%s)\n"+
							"Store:     %s",
						root, glob, outDir, format, storePath,
					)
				}, &format),
			huh.NewConfirm().
				Title(confirmTitle).
				Value(&confirm).
				Affirmative("Save").
				Negative("Cancel"),
		).Title("Confirm"),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return false, nil
		}
		return false, fmt.Errorf("interactive config: %w", err)
	}
	if !confirm {
		return false, nil
	}

	cfg.Source.Root = root
	cfg.Source.PrefabsGlob = glob
	cfg.Source.Exclude = splitList(exclude)
	cfg.Output.Dir = outDir
	cfg.Output.Format = format
	cfg.Store.Path = storePath
	d, err := parseDuration(debounce)
	if err != nil {
		return false, err
	}
	cfg.Watch.Debounce = d
	if err := cfg.Validate(); err != nil {
		return false, fmt.Errorf("invalid config: %w", err)
	}
	return true, nil
}

// parseDuration parses a debounce value; blank means the default.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("watch debounce: %w", err)
	}
	return d, nil
}

// splitList splits a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
