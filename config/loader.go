// Package config provides configuration loading and parsing functionality
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFormat represents the configuration file format
type ConfigFormat string

const (
	FormatYAML ConfigFormat = "yaml"
	FormatJSON ConfigFormat = "json"
)

// Loader handles configuration loading from various sources
type Loader struct {
	// Configuration search paths
	searchPaths []string

	// Environment variable prefix
	envPrefix string

	// Default configuration
	defaultConfig *Config
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		searchPaths: []string{
			".",
			"./config",
			"./configs",
			"/etc/tickio",
			os.Getenv("HOME") + "/.tickio",
		},
		envPrefix:     "TICKIO",
		defaultConfig: DefaultConfig(),
	}
}

// SetSearchPaths sets the configuration file search paths
func (l *Loader) SetSearchPaths(paths []string) *Loader {
	l.searchPaths = paths
	return l
}

// SetEnvPrefix sets the environment variable prefix
func (l *Loader) SetEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// SetDefaultConfig sets the default configuration
func (l *Loader) SetDefaultConfig(config *Config) *Loader {
	l.defaultConfig = config
	return l
}

// LoadFromFile loads configuration from a specific file
func (l *Loader) LoadFromFile(filename string) (*Config, error) {
	// Determine format from extension
	ext := strings.ToLower(filepath.Ext(filename))
	var format ConfigFormat
	switch ext {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := l.parseConfig(data, format)
	if err != nil {
		return nil, err
	}

	return l.finalize(config)
}

// LoadFromReader loads configuration from an io.Reader
func (l *Loader) LoadFromReader(reader io.Reader, format ConfigFormat) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration data: %w", err)
	}

	config, err := l.parseConfig(data, format)
	if err != nil {
		return nil, err
	}

	return l.finalize(config)
}

// AutoLoad automatically discovers and loads configuration
func (l *Loader) AutoLoad() (*Config, error) {
	configFile, _, err := l.findConfigFile()
	if err != nil {
		// If no config file found, use default config plus environment
		// overrides
		if err == ErrConfigFileNotFound {
			config := l.defaultConfig
			if config == nil {
				config = DefaultConfig()
			}
			copied := *config
			return l.finalize(&copied)
		}
		return nil, err
	}

	return l.LoadFromFile(configFile)
}

// finalize merges a parsed config with defaults, applies environment
// overrides and validates the result.
func (l *Loader) finalize(config *Config) (*Config, error) {
	defaultConfig := l.defaultConfig
	if defaultConfig == nil {
		defaultConfig = DefaultConfig()
	}
	config = l.mergeConfig(defaultConfig, config)

	if err := l.loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// findConfigFile searches for configuration files in search paths
func (l *Loader) findConfigFile() (string, ConfigFormat, error) {
	filenames := []string{
		"tickio.yaml", "tickio.yml",
		"config.yaml", "config.yml",
		"tickio.json", "config.json",
	}

	for _, searchPath := range l.searchPaths {
		for _, filename := range filenames {
			fullPath := filepath.Join(searchPath, filename)
			if _, err := os.Stat(fullPath); err == nil {
				ext := strings.ToLower(filepath.Ext(filename))
				var format ConfigFormat
				switch ext {
				case ".yaml", ".yml":
					format = FormatYAML
				case ".json":
					format = FormatJSON
				default:
					continue
				}
				return fullPath, format, nil
			}
		}
	}

	return "", "", ErrConfigFileNotFound
}

// parseConfig parses configuration data based on format
func (l *Loader) parseConfig(data []byte, format ConfigFormat) (*Config, error) {
	config := &Config{}

	switch format {
	case FormatYAML:
		err := yaml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case FormatJSON:
		err := json.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	return config, nil
}

// loadFromEnv loads configuration overrides from environment variables
func (l *Loader) loadFromEnv(config *Config) error {
	// App configuration
	if val := os.Getenv(l.envPrefix + "_APP_NAME"); val != "" {
		config.App.Name = val
	}
	if val := os.Getenv(l.envPrefix + "_APP_ENVIRONMENT"); val != "" {
		config.App.Environment = Environment(val)
	}
	if val := os.Getenv(l.envPrefix + "_APP_DEBUG"); val != "" {
		config.App.Debug = strings.ToLower(val) == "true"
	}

	// Tracker configuration
	if val := os.Getenv(l.envPrefix + "_TRACKER_MAX_WORKERS"); val != "" {
		if n, err := parsePositiveInt(val); err == nil {
			config.Tracker.MaxWorkers = n
		}
	}

	// Resource pool configuration
	if val := os.Getenv(l.envPrefix + "_POOL_MAX_CONNECTIONS"); val != "" {
		if n, err := parsePositiveInt(val); err == nil {
			config.ResourcePool.MaxConnections = n
		}
	}
	if val := os.Getenv(l.envPrefix + "_POOL_ACQUIRE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			config.ResourcePool.AcquireTimeout = d
		}
	}

	// Batch configuration
	if val := os.Getenv(l.envPrefix + "_BATCH_SIZE"); val != "" {
		if n, err := parsePositiveInt(val); err == nil {
			config.Batch.BatchSize = n
		}
	}
	if val := os.Getenv(l.envPrefix + "_BATCH_FLUSH_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			config.Batch.FlushInterval = d
		}
	}

	// Rate limit configuration
	if val := os.Getenv(l.envPrefix + "_RATE_LIMIT_MAX_RATE"); val != "" {
		if rate, err := strconv.ParseFloat(val, 64); err == nil && rate > 0 {
			config.RateLimit.MaxRate = rate
		}
	}

	return nil
}

// parsePositiveInt parses a strictly positive integer
func parsePositiveInt(val string) (int, error) {
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("value must be positive: %d", n)
	}
	return n, nil
}

// mergeConfig merges user config with default config
func (l *Loader) mergeConfig(defaultConfig, userConfig *Config) *Config {
	// Start with default config
	merged := *defaultConfig

	// Override with user config values where specified
	if userConfig.App.Name != "" {
		merged.App.Name = userConfig.App.Name
	}
	if userConfig.App.Environment != "" {
		merged.App.Environment = userConfig.App.Environment
	}
	merged.App.Debug = userConfig.App.Debug

	// Tracker config
	if userConfig.Tracker.MaxWorkers != 0 {
		merged.Tracker.MaxWorkers = userConfig.Tracker.MaxWorkers
	}

	// Resource pool config
	if userConfig.ResourcePool.MaxConnections != 0 {
		merged.ResourcePool.MaxConnections = userConfig.ResourcePool.MaxConnections
	}
	if userConfig.ResourcePool.AcquireTimeout != 0 {
		merged.ResourcePool.AcquireTimeout = userConfig.ResourcePool.AcquireTimeout
	}
	if userConfig.ResourcePool.MaxWorkers != 0 {
		merged.ResourcePool.MaxWorkers = userConfig.ResourcePool.MaxWorkers
	}

	// Batch config
	if userConfig.Batch.BatchSize != 0 {
		merged.Batch.BatchSize = userConfig.Batch.BatchSize
	}
	if userConfig.Batch.FlushInterval != 0 {
		merged.Batch.FlushInterval = userConfig.Batch.FlushInterval
	}

	// Rate limit config
	if userConfig.RateLimit.MaxRate != 0 {
		merged.RateLimit.MaxRate = userConfig.RateLimit.MaxRate
	}

	// Custom fields
	if userConfig.Custom != nil {
		if merged.Custom == nil {
			merged.Custom = make(map[string]interface{})
		}
		for k, v := range userConfig.Custom {
			merged.Custom[k] = v
		}
	}

	return &merged
}
