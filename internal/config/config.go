package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents ~/.csvpatch/config.yaml.
type Config struct {
	LogLevel   string `yaml:"log-level,omitempty"`
	SeqURL     string `yaml:"seq-url,omitempty"`
	NoMatch    string `yaml:"no-match,omitempty"`
	Ragged     string `yaml:"ragged,omitempty"`
	BOM        string `yaml:"bom,omitempty"`
	LineEnding string `yaml:"line-ending,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:   "info",
		NoMatch:    "warn",
		Ragged:     "reject",
		BOM:        "preserve",
		LineEnding: "crlf",
	}
}

// Dir returns the path to ~/.csvpatch/.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".csvpatch")
}

// Path returns the path to ~/.csvpatch/config.yaml.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file at path over the defaults.
// A missing file is not an error when optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.merge(file)
	return cfg, nil
}

// ApplyEnv overrides settings from CSVPATCH_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.merge(Config{
		LogLevel:   getenv("CSVPATCH_LOG_LEVEL"),
		SeqURL:     getenv("CSVPATCH_SEQ_URL"),
		NoMatch:    getenv("CSVPATCH_NO_MATCH"),
		Ragged:     getenv("CSVPATCH_RAGGED"),
		BOM:        getenv("CSVPATCH_BOM"),
		LineEnding: getenv("CSVPATCH_LINE_ENDING"),
	})
}

// merge copies every non-empty field of o onto c.
func (c *Config) merge(o Config) {
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.SeqURL != "" {
		c.SeqURL = o.SeqURL
	}
	if o.NoMatch != "" {
		c.NoMatch = o.NoMatch
	}
	if o.Ragged != "" {
		c.Ragged = o.Ragged
	}
	if o.BOM != "" {
		c.BOM = o.BOM
	}
	if o.LineEnding != "" {
		c.LineEnding = o.LineEnding
	}
}
