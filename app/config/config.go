// Package config loads service configuration from defaults, an optional YAML
// file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the variable that points at a YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPath is tried when CONFIG_PATH is unset.
const DefaultConfigPath = "config.yaml"

type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Search      SearchConfig      `koanf:"search"`
	Association AssociationConfig `koanf:"association"`
	API         APIConfig         `koanf:"api"`
	Logging     LoggingConfig     `koanf:"logging"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig locates the Post Record Store.
type DatabaseConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// SearchConfig locates the Search Document Store.
type SearchConfig struct {
	IndexPath string `koanf:"index_path"`
	InMemory  bool   `koanf:"in_memory"`
	// MinShouldMatch is the share of keyword terms, in percent, a field must contain.
	MinShouldMatch int `koanf:"min_should_match" validate:"gte=1,lte=100"`
}

// AssociationConfig points at the tag association collaborator.
type AssociationConfig struct {
	URL     string        `koanf:"url" validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	// Mock swaps the HTTP client for a fixed in-process answer.
	Mock bool `koanf:"mock"`

	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests" validate:"gte=1"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests" validate:"gte=1"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio" validate:"gt=0,lte=1"`
}

// APIConfig bounds paging on the HTTP surface.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size" validate:"gte=1"`
	MaxPageSize     int `koanf:"max_page_size" validate:"gtefield=DefaultPageSize"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "photoshare.db",
		},
		Search: SearchConfig{
			IndexPath:      "photoshare.bleve",
			MinShouldMatch: 75,
		},
		Association: AssociationConfig{
			URL:                 "http://localhost:8000/associations",
			Timeout:             5 * time.Second,
			BreakerMaxRequests:  3,
			BreakerInterval:     time.Minute,
			BreakerTimeout:      30 * time.Second,
			BreakerMinRequests:  5,
			BreakerFailureRatio: 0.6,
		},
		API: APIConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file, then env.
func Load() (*Config, error) {
	return LoadFile(configPath())
}

// LoadFile is Load with an explicit file path; an empty path skips the file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints and the store/collaborator locations.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return err
	}
	if !c.Database.InMemory && c.Database.Path == "" {
		return errors.New("database.path is required unless database.in_memory is set")
	}
	if !c.Search.InMemory && c.Search.IndexPath == "" {
		return errors.New("search.index_path is required unless search.in_memory is set")
	}
	if !c.Association.Mock && c.Association.URL == "" {
		return errors.New("association.url is required unless association.mock is set")
	}
	return nil
}

func configPath() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath
	}
	return ""
}

var envMappings = map[string]string{
	"http_addr":             "server.addr",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"badger_path":      "database.path",
	"badger_in_memory": "database.in_memory",

	"search_index_path":       "search.index_path",
	"search_in_memory":        "search.in_memory",
	"search_min_should_match": "search.min_should_match",

	"association_url":                   "association.url",
	"association_timeout":               "association.timeout",
	"association_mock":                  "association.mock",
	"association_breaker_max_requests":  "association.breaker_max_requests",
	"association_breaker_interval":      "association.breaker_interval",
	"association_breaker_timeout":       "association.breaker_timeout",
	"association_breaker_min_requests":  "association.breaker_min_requests",
	"association_breaker_failure_ratio": "association.breaker_failure_ratio",

	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps known environment variables to config paths.
// Unknown variables map to "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
