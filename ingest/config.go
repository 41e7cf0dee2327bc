package ingest

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full scribe configuration.
type Config struct {
	InboxDir     string `yaml:"inbox_dir"`
	OutputDir    string `yaml:"output_dir"`
	AssetDir     string `yaml:"asset_dir"`
	AssetBaseURL string `yaml:"asset_base_url"`
	DebounceMS   int    `yaml:"debounce_ms"`
	InitialScan  *bool  `yaml:"initial_scan"`
	JournalDB    string `yaml:"journal_db"`  // empty disables the journal
	StatusAddr   string `yaml:"status_addr"` // empty disables the status server
	LogLevel     string `yaml:"log_level"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		InboxDir:     "inbox",
		OutputDir:    "docs/generated",
		AssetDir:     "static/assets",
		AssetBaseURL: "/assets",
		DebounceMS:   2000,
		LogLevel:     "info",
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig
// merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.InboxDir == "" {
		return fmt.Errorf("inbox_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.AssetDir == "" {
		return fmt.Errorf("asset_dir is required")
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must be >= 0")
	}
	return nil
}

// Debounce returns the quiet window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ScanOnStart reports whether pre-existing inbox files are processed when
// the watcher starts. Unset means yes.
func (c *Config) ScanOnStart() bool {
	return c.InitialScan == nil || *c.InitialScan
}
