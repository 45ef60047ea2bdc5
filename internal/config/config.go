// Package config handles configuration loading and validation for forgewiki.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile is the default configuration file name (without extension).
	DefaultConfigFile = ".forgewiki"
	// DefaultConfigType is the default configuration file type.
	DefaultConfigType = "yaml"
	// EnvPrefix prefixes environment variable overrides, e.g. FORGEWIKI_SOURCE_ROOT.
	EnvPrefix = "FORGEWIKI"
)

// Config holds all configuration for forgewiki.
type Config struct {
	// Source locates the game's data scripts.
	Source SourceConfig `mapstructure:"source" yaml:"source"`
	// Output controls the exported data files.
	Output OutputConfig `mapstructure:"output" yaml:"output"`
	// Store locates the snapshot database.
	Store StoreConfig `mapstructure:"store" yaml:"store"`
	// Localization adjusts display names.
	Localization LocalizationConfig `mapstructure:"localization" yaml:"localization"`
	// Watch contains file watching configuration.
	Watch WatchConfig `mapstructure:"watch" yaml:"watch"`
}

// SourceConfig locates the data scripts.
type SourceConfig struct {
	// Root is the directory holding items.lua, loot.lua and the rest.
	Root string `mapstructure:"root" yaml:"root"`
	// PrefabsGlob selects prefab scripts, relative to <root>/prefabs.
	PrefabsGlob string `mapstructure:"prefabs_glob" yaml:"prefabs_glob"`
	// Exclude lists prefab glob patterns to skip.
	Exclude []string `mapstructure:"exclude" yaml:"exclude,omitempty"`
}

// OutputConfig controls exported files.
type OutputConfig struct {
	// Dir is the directory data files are written to.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Format is yaml, json or toml.
	Format string `mapstructure:"format" yaml:"format"`
}

// StoreConfig locates the snapshot database.
type StoreConfig struct {
	// Path is the BadgerDB directory.
	Path string `mapstructure:"path" yaml:"path"`
}

// LocalizationConfig adjusts display names.
type LocalizationConfig struct {
	// Overrides name internal ids, taking precedence over the localization
	// file. A list rather than a map: viper splits map keys on dots and
	// internal ids are dotted.
	Overrides []NameOverride `mapstructure:"overrides" yaml:"overrides,omitempty"`
}

// NameOverride fixes the display name of one internal id.
type NameOverride struct {
	ID   string `mapstructure:"id" yaml:"id"`
	Name string `mapstructure:"name" yaml:"name"`
}

// OverrideMap returns the overrides keyed by id; later entries win.
func (l LocalizationConfig) OverrideMap() map[string]string {
	out := make(map[string]string, len(l.Overrides))
	for _, o := range l.Overrides {
		out[o.ID] = o.Name
	}
	return out
}

// WatchConfig holds file watching configuration.
type WatchConfig struct {
	// Debounce is the quiet period before a change triggers a re-run.
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// Load loads configuration from file, environment variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Check if a specific config file was set via CLI flag (stored in global viper)
	globalViper := viper.GetViper()
	if configFile := globalViper.GetString("config_file"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// Config file settings for default paths
		v.SetConfigName(DefaultConfigFile)
		v.SetConfigType(DefaultConfigType)

		// Look for config in current directory
		v.AddConfigPath(".")
	}

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Source.Root == "" {
		return fmt.Errorf("source.root is required")
	}

	if c.Source.PrefabsGlob != "" && !doublestar.ValidatePattern(c.Source.PrefabsGlob) {
		return fmt.Errorf("source.prefabs_glob: invalid pattern %q", c.Source.PrefabsGlob)
	}
	for i, pat := range c.Source.Exclude {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("source.exclude %d: invalid pattern %q", i, pat)
		}
	}

	switch c.Output.Format {
	case "", "yaml", "json", "toml":
	default:
		return fmt.Errorf("output format must be 'yaml', 'json' or 'toml', got %q", c.Output.Format)
	}

	for i, o := range c.Localization.Overrides {
		if o.ID == "" {
			return fmt.Errorf("localization override %d: id is required", i)
		}
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}

	return nil
}

// StorePath returns the snapshot path, resolved against base when it is
// relative.
func (c *Config) StorePath(base string) string {
	if c.Store.Path == "" || filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(base, c.Store.Path)
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("source.root", "data/scripts")
	v.SetDefault("source.prefabs_glob", "**/*.lua")
	v.SetDefault("source.exclude", []string{})

	v.SetDefault("output.dir", "out")
	v.SetDefault("output.format", "yaml")

	v.SetDefault("store.path", ".forgewiki/snapshot.db")

	v.SetDefault("watch.debounce", "300ms")
}
