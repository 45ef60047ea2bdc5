package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// yamlConfig mirrors Config for writing; durations are written in their
// string form so viper can read them back.
type yamlConfig struct {
	Source       SourceConfig       `yaml:"source"`
	Output       OutputConfig       `yaml:"output"`
	Store        StoreConfig        `yaml:"store"`
	Localization LocalizationConfig `yaml:"localization,omitempty"`
	Watch        struct {
		Debounce string `yaml:"debounce"`
	} `yaml:"watch"`
}

// WriteConfig serializes the given Config to YAML and writes it to path.
func WriteConfig(cfg *Config, path string) error {
	out := yamlConfig{
		Source:       cfg.Source,
		Output:       cfg.Output,
		Store:        cfg.Store,
		Localization: cfg.Localization,
	}
	out.Watch.Debounce = cfg.Watch.Debounce.String()

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	content := "# forgewiki configuration\n" + string(data)
	return os.WriteFile(path, []byte(content), 0644)
}
