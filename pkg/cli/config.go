package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfig represents ~/.sqleval/config.yaml.
type UserConfig struct {
	CurrentProfile string             `yaml:"current-profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile represents a single named configuration profile. Empty fields
// leave the environment or the built-in default in effect.
type Profile struct {
	Output      string `yaml:"output,omitempty" json:"output,omitempty"`
	OutputDir   string `yaml:"output-dir,omitempty" json:"output_dir,omitempty"`
	Workers     int    `yaml:"workers,omitempty" json:"workers,omitempty"`
	ParsePolicy string `yaml:"parse-policy,omitempty" json:"parse_policy,omitempty"`
	Ledger      string `yaml:"ledger,omitempty" json:"ledger,omitempty"`
	DuckDB      string `yaml:"duckdb,omitempty" json:"duckdb,omitempty"`
	LogLevel    string `yaml:"log-level,omitempty" json:"log_level,omitempty"`
}

func newUserConfig() *UserConfig {
	return &UserConfig{
		CurrentProfile: "default",
		Profiles:       map[string]Profile{},
	}
}

// ActiveProfile returns the profile to use based on the override or
// current-profile. A missing current profile yields an empty profile; a
// missing override is an error.
func (c *UserConfig) ActiveProfile(override string) (Profile, error) {
	if override != "" {
		p, ok := c.Profiles[override]
		if !ok {
			return Profile{}, fmt.Errorf("profile %q not found", override)
		}
		return p, nil
	}
	return c.Profiles[c.CurrentProfile], nil
}

// ConfigDir returns the path to ~/.sqleval/.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sqleval")
}

// ConfigPath returns the path to ~/.sqleval/config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadUserConfig reads ~/.sqleval/config.yaml.
func LoadUserConfig() (*UserConfig, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return &cfg, nil
}

// loadUserConfigOrDefault treats a missing config file as an empty one.
// A file that exists but cannot be parsed is still an error.
func loadUserConfigOrDefault() (*UserConfig, error) {
	cfg, err := LoadUserConfig()
	if err == nil {
		return cfg, nil
	}
	if _, statErr := os.Stat(ConfigPath()); os.IsNotExist(statErr) {
		return newUserConfig(), nil
	}
	return nil, err
}

// SaveUserConfig writes ~/.sqleval/config.yaml.
func SaveUserConfig(cfg *UserConfig) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(ConfigPath(), data, 0o600)
}
