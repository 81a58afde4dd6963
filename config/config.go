// Package config loads the YAML configuration of the dynschema command.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Konsultn-Engineering/dynschema/connector"
	"github.com/Konsultn-Engineering/dynschema/schema"
)

type Config struct {
	Log      LogConfig         `yaml:"log"`
	Registry RegistryConfig    `yaml:"registry"`
	Database *connector.Config `yaml:"database,omitempty"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type RegistryConfig struct {
	// IDGenerator is one of ulid, uuid or sequence.
	IDGenerator string `yaml:"id_generator"`
	// TableNaming is one of snake_plural, snake_singular or camel_plural.
	TableNaming string `yaml:"table_naming"`
	CacheSize   int    `yaml:"cache_size"`
}

// Default returns the configuration used when no file is given. Instance
// ids default to a sequence so scripts can refer to them by number.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Registry: RegistryConfig{
			IDGenerator: "sequence",
			TableNaming: "snake_plural",
			CacheSize:   256,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := schema.NewIDGenerator(c.Registry.IDGenerator); err != nil {
		return fmt.Errorf("registry.id_generator: %w", err)
	}
	if c.Registry.CacheSize < 0 {
		return fmt.Errorf("registry.cache_size must not be negative, got %d", c.Registry.CacheSize)
	}
	if c.Database != nil {
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	return nil
}

// NewLogger builds a zap logger from the log section.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// RegistryOptions translates the registry section into schema options.
func (c Config) RegistryOptions() ([]schema.Option, error) {
	ids, err := schema.NewIDGenerator(c.Registry.IDGenerator)
	if err != nil {
		return nil, err
	}
	return []schema.Option{
		schema.WithIDGenerator(ids),
		schema.WithNamingStrategy(schema.NewNamingStrategy(schema.ParseTableNaming(c.Registry.TableNaming))),
		schema.WithCacheSize(c.Registry.CacheSize),
	}, nil
}
