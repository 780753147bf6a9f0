package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/payerlink/accumfeed/internal/layout"
	"github.com/payerlink/accumfeed/internal/x12"
)

// Config holds all runtime configuration for an accumfeed run.
type Config struct {
	DSN       string
	LogFormat string // "text" or "json"

	// generate
	SchemaPath  string // X12 segment schema JSON
	RequestPath string // encoding request JSON
	OutPath     string // wire file destination ("" = stdout)

	// decode
	FilePath   string // inbound fixed-width response file
	LayoutPath string // fixed-width layout table CSV
	ExportPath string // optional parquet export destination
	Force      bool
	DryRun     bool

	// yaml-backed deployment settings
	Separators    x12.Separators `yaml:"separators"`
	LayoutColumns []string       `yaml:"layout_columns"` // header names for the four layout roles
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Separators    *x12.Separators `yaml:"separators"`
	LayoutColumns []string        `yaml:"layout_columns"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if yc.Separators != nil {
		c.Separators = *yc.Separators
	}
	c.LayoutColumns = yc.LayoutColumns
	return c.validate()
}

// validate applies defaults and checks the yaml-backed settings.
func (c *Config) validate() error {
	if c.Separators == (x12.Separators{}) {
		c.Separators = x12.DefaultSeparators
	}
	if err := c.Separators.Validate(); err != nil {
		return fmt.Errorf("config separators: %w", err)
	}
	if len(c.LayoutColumns) == 0 {
		c.LayoutColumns = layout.DefaultColumns
	}
	if len(c.LayoutColumns) != len(layout.DefaultColumns) {
		return fmt.Errorf("config layout_columns: want %d names, got %d",
			len(layout.DefaultColumns), len(c.LayoutColumns))
	}
	return nil
}

// ApplyDefaults fills in defaults when no config file was given.
func (c *Config) ApplyDefaults() error {
	return c.validate()
}

// ValidateGenerate checks the fields the generate command needs.
func (c *Config) ValidateGenerate() error {
	if c.SchemaPath == "" {
		return fmt.Errorf("--schema is required")
	}
	if c.RequestPath == "" {
		return fmt.Errorf("--request is required")
	}
	for _, p := range []string{c.SchemaPath, c.RequestPath} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("file not accessible: %w", err)
		}
	}
	return nil
}

// ValidateDecode checks the fields the decode command needs.
func (c *Config) ValidateDecode() error {
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if c.LayoutPath == "" {
		return fmt.Errorf("--layout is required")
	}
	for _, p := range []string{c.FilePath, c.LayoutPath} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("file not accessible: %w", err)
		}
	}
	return nil
}

// ValidateDecodeWithDSN checks decode fields plus the DSN, which dry runs
// do not need.
func (c *Config) ValidateDecodeWithDSN() error {
	if err := c.ValidateDecode(); err != nil {
		return err
	}
	if !c.DryRun && c.DSN == "" {
		return fmt.Errorf("--dsn or ACCUMFEED_DB_URL is required")
	}
	return nil
}
