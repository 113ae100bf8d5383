// Package config loads recongrid's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/rshade/recongrid/internal/bulk"
	"github.com/rshade/recongrid/internal/grid/datasource"
	"github.com/rshade/recongrid/internal/grid/pagination"
	"github.com/rshade/recongrid/internal/logging"
	"github.com/rshade/recongrid/internal/provider/cache"
)

// Provider kinds.
const (
	ProviderSQLite = "sqlite"
	ProviderHTTP   = "http"
	ProviderMemory = "memory"
)

// Output formats for non-interactive listing.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Defaults.
const (
	DefaultTimeoutSeconds = 30
	DefaultConcurrency    = 4
	configFileName        = "config.yaml"
	catalogFileName       = "catalog.db"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete configuration.
type Config struct {
	Grid     GridConfig     `yaml:"grid"`
	Provider ProviderConfig `yaml:"provider"`
	Cache    CacheConfig    `yaml:"cache"`
	Bulk     BulkConfig     `yaml:"bulk"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GridConfig holds grid defaults.
type GridConfig struct {
	PageSizes       []int  `yaml:"page_sizes"`
	DefaultPageSize int    `yaml:"default_page_size"`
	Mode            string `yaml:"mode"`
}

// ProviderConfig selects and configures the data provider.
type ProviderConfig struct {
	Kind           string `yaml:"kind"`
	DSN            string `yaml:"dsn"`
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MinAPIVersion  string `yaml:"min_api_version"`
}

// CacheConfig configures the on-disk page cache in front of the HTTP provider.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Directory  string `yaml:"directory"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// BulkConfig configures bulk actions.
type BulkConfig struct {
	BatchSize   int `yaml:"batch_size"`
	Concurrency int `yaml:"concurrency"`
}

// OutputConfig configures non-interactive output.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// New returns the default configuration.
func New() *Config {
	dir, err := GetConfigDir()
	if err != nil {
		dir = "."
	}

	return &Config{
		Grid: GridConfig{
			PageSizes:       slices.Clone(pagination.DefaultPageSizes),
			DefaultPageSize: pagination.DefaultPageSize,
			Mode:            datasource.ModeRemote.String(),
		},
		Provider: ProviderConfig{
			Kind:           ProviderSQLite,
			DSN:            filepath.Join(dir, catalogFileName),
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Cache: CacheConfig{
			Enabled:    false,
			Directory:  filepath.Join(dir, "cache"),
			TTLSeconds: cache.DefaultTTLSeconds,
		},
		Bulk: BulkConfig{
			BatchSize:   bulk.DefaultBatchSize,
			Concurrency: DefaultConcurrency,
		},
		Output: OutputConfig{
			DefaultFormat: OutputTable,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
	}
}

// DefaultConfigPath returns ~/.recongrid/config.yaml, or RECONGRID_HOME's
// config.yaml when set.
func DefaultConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load returns the defaults overlaid with the file at path, then with
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := New()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := ShallowMergeYAML(cfg, path); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("checking config file %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error

	if _, err := pagination.NewController(
		pagination.WithPageSizes(c.Grid.PageSizes...),
		pagination.WithDefaultPageSize(c.Grid.DefaultPageSize),
	); err != nil {
		errs = append(errs, fmt.Errorf("grid: %w", err))
	}
	if _, err := datasource.ParseMode(c.Grid.Mode); err != nil {
		errs = append(errs, fmt.Errorf("grid.mode: %w", err))
	}

	switch c.Provider.Kind {
	case ProviderSQLite:
		if c.Provider.DSN == "" {
			errs = append(errs, errors.New("provider.dsn is required for sqlite"))
		}
	case ProviderHTTP:
		if c.Provider.BaseURL == "" {
			errs = append(errs, errors.New("provider.base_url is required for http"))
		}
	case ProviderMemory:
	default:
		errs = append(errs, fmt.Errorf("provider.kind must be sqlite, http or memory: got %q", c.Provider.Kind))
	}
	if c.Provider.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("provider.timeout_seconds must be >= 0: got %d", c.Provider.TimeoutSeconds))
	}

	if c.Cache.Enabled {
		if c.Cache.TTLSeconds < cache.MinTTLSeconds || c.Cache.TTLSeconds > cache.MaxTTLSeconds {
			errs = append(errs, fmt.Errorf("cache.ttl_seconds: %w: got %d", cache.ErrInvalidTTL, c.Cache.TTLSeconds))
		}
		if c.Cache.Directory == "" {
			errs = append(errs, errors.New("cache.directory is required when the cache is enabled"))
		}
	}

	if c.Bulk.BatchSize < bulk.MinBatchSize || c.Bulk.BatchSize > bulk.MaxBatchSize {
		errs = append(errs, fmt.Errorf("bulk.batch_size: %w: got %d", bulk.ErrInvalidBatchSize, c.Bulk.BatchSize))
	}
	if c.Bulk.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("bulk.concurrency must be >= 1: got %d", c.Bulk.Concurrency))
	}

	switch c.Output.DefaultFormat {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		errs = append(errs, fmt.Errorf("output.default_format must be table, json or yaml: got %q", c.Output.DefaultFormat))
	}

	switch c.Logging.Format {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json: got %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
