package dbms

import (
	"github.com/ciscoruiz/coffee-sub002"
)

// ConnectionConfig describes one connection to create at start up.
type ConnectionConfig struct {
	Name             string `yaml:"name"`
	User             string `yaml:"user,omitempty"`
	Password         string `yaml:"password,omitempty"`
	MaxCommitPending int    `yaml:"max_commit_pending,omitempty"`
}

// Config holds database initialization parameters. Driver and DSN are read by
// whoever picks the driver; the Database itself only uses Name and
// Connections.
type Config struct {
	Name        string             `yaml:"name"`
	Driver      string             `yaml:"driver"`
	DSN         string             `yaml:"dsn,omitempty"`
	Connections []ConnectionConfig `yaml:"connections,omitempty"`
}

// DefaultConfig returns a single connection SQLite configuration.
func DefaultConfig() Config {
	return Config{
		Name:        "default",
		Driver:      "sqlite",
		DSN:         "coffee.db",
		Connections: []ConnectionConfig{{Name: "default"}},
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.Driver != "" {
		c.Driver = source.Driver
	}
	if source.DSN != "" {
		c.DSN = source.DSN
	}
	if len(source.Connections) > 0 {
		c.Connections = source.Connections
	}
}

func (c ConnectionConfig) Parameters() ConnectionParameters {
	return ConnectionParameters{
		User:             c.User,
		Password:         c.Password,
		MaxCommitPending: c.MaxCommitPending,
	}
}

// CreateConnections creates every connection listed in cfg.
func (db *Database) CreateConnections(cfg *Config) error {
	for _, cc := range cfg.Connections {
		if cc.Name == "" {
			return coffee.ConfigurationError("%s: connection without name", db.name)
		}
		if _, err := db.CreateConnection(cc.Name, cc.Parameters()); err != nil {
			return err
		}
	}
	return nil
}
