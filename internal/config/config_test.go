package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// chdir switches to dir for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("failed to restore working directory: %v", err)
		}
	})
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `source:
  root: /games/autoforge/data/scripts
  prefabs_glob: "**/*.lua"
  exclude:
    - "test/**"

output:
  dir: /tmp/wiki
  format: json

store:
  path: /tmp/snapshot.db

localization:
  overrides:
    - id: structure.hand
      name: Bare Hands

watch:
  debounce: 2s
`
	configPath := filepath.Join(tmpDir, DefaultConfigFile+"."+DefaultConfigType)
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	chdir(t, tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Source.Root != "/games/autoforge/data/scripts" {
		t.Errorf("Source.Root = %q, want %q", cfg.Source.Root, "/games/autoforge/data/scripts")
	}
	if len(cfg.Source.Exclude) != 1 || cfg.Source.Exclude[0] != "test/**" {
		t.Errorf("Source.Exclude = %v, want [test/**]", cfg.Source.Exclude)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "json")
	}
	if cfg.Store.Path != "/tmp/snapshot.db" {
		t.Errorf("Store.Path = %q, want %q", cfg.Store.Path, "/tmp/snapshot.db")
	}
	if got := cfg.Localization.OverrideMap()["structure.hand"]; got != "Bare Hands" {
		t.Errorf("Overrides[structure.hand] = %q, want %q", got, "Bare Hands")
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Watch.Debounce = %v, want 2s", cfg.Watch.Debounce)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Source.Root != "data/scripts" {
		t.Errorf("Source.Root = %q, want %q", cfg.Source.Root, "data/scripts")
	}
	if cfg.Source.PrefabsGlob != "**/*.lua" {
		t.Errorf("Source.PrefabsGlob = %q, want %q", cfg.Source.PrefabsGlob, "**/*.lua")
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "yaml")
	}
	if cfg.Store.Path != ".forgewiki/snapshot.db" {
		t.Errorf("Store.Path = %q, want %q", cfg.Store.Path, ".forgewiki/snapshot.db")
	}
	if cfg.Watch.Debounce != 300*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 300ms", cfg.Watch.Debounce)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FORGEWIKI_OUTPUT_FORMAT", "toml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Output.Format != "toml" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "toml")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := *Default()
		c.Source.Root = "/data"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "no source root",
			mutate:  func(c *Config) { c.Source.Root = "" },
			wantErr: true,
			errMsg:  "source.root is required",
		},
		{
			name:    "invalid format",
			mutate:  func(c *Config) { c.Output.Format = "xml" },
			wantErr: true,
			errMsg:  "output format must be",
		},
		{
			name:    "invalid prefabs glob",
			mutate:  func(c *Config) { c.Source.PrefabsGlob = "[" },
			wantErr: true,
			errMsg:  "source.prefabs_glob",
		},
		{
			name:    "invalid exclude",
			mutate:  func(c *Config) { c.Source.Exclude = []string{"ok/**", "{bad"} },
			wantErr: true,
			errMsg:  "source.exclude 1",
		},
		{
			name:    "override without id",
			mutate:  func(c *Config) { c.Localization.Overrides = []NameOverride{{Name: "Hand"}} },
			wantErr: true,
			errMsg:  "localization override 0",
		},
		{
			name:    "negative debounce",
			mutate:  func(c *Config) { c.Watch.Debounce = -time.Second },
			wantErr: true,
			errMsg:  "watch.debounce",
		},
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Validate() error = nil, want error containing %q", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %q, want error containing %q", err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestStorePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"/abs/snapshot.db", "/abs/snapshot.db"},
		{".forgewiki/snapshot.db", filepath.Join("/work", ".forgewiki/snapshot.db")},
	}
	for _, tt := range tests {
		c := Config{Store: StoreConfig{Path: tt.path}}
		if got := c.StorePath("/work"); got != tt.want {
			t.Errorf("StorePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := Default()
	cfg.Source.Root = "/games/data"
	cfg.Output.Format = "toml"
	cfg.Watch.Debounce = 750 * time.Millisecond
	cfg.Localization.Overrides = []NameOverride{{ID: "character.player", Name: "You"}}

	path := filepath.Join(tmpDir, DefaultConfigFile+"."+DefaultConfigType)
	if err := WriteConfig(cfg, path); err != nil {
		t.Fatalf("WriteConfig() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# forgewiki configuration\n") {
		t.Errorf("config file missing header:\n%s", data)
	}

	chdir(t, tmpDir)
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Source.Root != "/games/data" {
		t.Errorf("Source.Root = %q, want %q", got.Source.Root, "/games/data")
	}
	if got.Output.Format != "toml" {
		t.Errorf("Output.Format = %q, want %q", got.Output.Format, "toml")
	}
	if got.Watch.Debounce != 750*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 750ms", got.Watch.Debounce)
	}
	if got.Localization.OverrideMap()["character.player"] != "You" {
		t.Errorf("Overrides = %v, want character.player=You", got.Localization.Overrides)
	}
}
