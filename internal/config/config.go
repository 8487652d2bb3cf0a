// Package config loads and validates the service configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Limits  LimitsConfig  `yaml:"limits"`
	Index   IndexConfig   `yaml:"index"`
	Store   StoreConfig   `yaml:"store"`
	Events  EventsConfig  `yaml:"events"`
}

// LimitsConfig bounds query traversal.
type LimitsConfig struct {
	// ReadLimit is the hard traversal cap per query; 0 disables it.
	ReadLimit int64 `yaml:"read_limit"`
	// TraversalWarning is the number of reads between limit checks and
	// warnings.
	TraversalWarning int `yaml:"traversal_warning"`
}

// IndexConfig locates the index definitions.
type IndexConfig struct {
	// Definitions is the path of the index definitions YAML file.
	Definitions string `yaml:"definitions"`
	// TypeTag selects the index type this service plans against.
	TypeTag string `yaml:"type_tag"`
}

// StoreConfig configures the base document store.
type StoreConfig struct {
	MongoURI   string `yaml:"mongo_uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// EventsConfig configures index lifecycle event delivery.
type EventsConfig struct {
	// URL is the NATS server URL; empty disables the watcher.
	URL string `yaml:"url"`
	// Subject is the lifecycle event subject.
	Subject string `yaml:"subject"`
}

// Load reads, defaults, and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in missing values with defaults.
func (c *Config) ApplyDefaults() {
	c.Logging.ApplyDefaults()
	if c.Limits.TraversalWarning <= 0 {
		c.Limits.TraversalWarning = 10000
	}
	if c.Index.TypeTag == "" {
		c.Index.TypeTag = "fulltext"
	}
	if c.Store.Database == "" {
		c.Store.Database = "quarry"
	}
	if c.Store.Collection == "" {
		c.Store.Collection = "documents"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "quarry.index.lifecycle"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Limits.ReadLimit < 0 {
		return fmt.Errorf("read_limit cannot be negative")
	}
	if c.Index.Definitions == "" {
		return fmt.Errorf("index.definitions is required")
	}
	return nil
}
