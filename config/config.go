// Package config aggregates the configuration of a coffee deployment: the
// database with its connections and the repository with its storages.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/dbms"
	"github.com/ciscoruiz/coffee-sub002/persistence"
)

// Config holds initialization parameters for every subsystem. Each section
// is handed to that subsystem's config driven constructor.
type Config struct {
	Database   dbms.Config                  `yaml:"database"`
	Repository persistence.RepositoryConfig `yaml:"repository"`
	LogLevel   string                       `yaml:"log_level,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Database:   dbms.DefaultConfig(),
		Repository: persistence.DefaultRepositoryConfig(),
		LogLevel:   "info",
	}
}

// Merge applies non-zero values from source into c, delegating to each
// section's Merge method.
func (c *Config) Merge(source *Config) {
	c.Database.Merge(&source.Database)
	c.Repository.Merge(&source.Repository)
	if source.LogLevel != "" {
		c.LogLevel = source.LogLevel
	}
}

// LoadConfig reads a YAML config file, merges it with defaults and checks
// the result.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse is LoadConfig over an in-memory document. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	var loaded Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&loaded); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to parse config file: %w", coffee.ErrConfiguration, err)
	}

	cfg.Merge(&loaded)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks what can be checked before opening anything: connection
// names, storage classes and the log level.
func (c *Config) Validate() error {
	if len(c.Database.Connections) == 0 {
		return coffee.ConfigurationError("database %s: no connections", c.Database.Name)
	}
	seen := make(map[string]bool, len(c.Database.Connections))
	for _, cc := range c.Database.Connections {
		if cc.Name == "" {
			return coffee.ConfigurationError("database %s: connection without name", c.Database.Name)
		}
		if seen[cc.Name] {
			return coffee.ConfigurationError("database %s: connection %q defined twice", c.Database.Name, cc.Name)
		}
		seen[cc.Name] = true
	}
	for _, sc := range c.Repository.Storages {
		if _, err := sc.Class(); err != nil {
			return fmt.Errorf("storage %q: %w", sc.Name, err)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel; empty means info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, coffee.ConfigurationError("log level %q: %v", c.LogLevel, err)
	}
	return level, nil
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
