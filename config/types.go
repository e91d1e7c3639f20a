// Package config provides configuration management for the tickio toolkit
package config

import (
	"time"

	"github.com/tickio/tickio/batch"
	"github.com/tickio/tickio/respool"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// String returns the string representation of Environment
func (e Environment) String() string {
	return string(e)
}

// IsValid checks if the environment is valid
func (e Environment) IsValid() bool {
	switch e {
	case EnvDevelopment, EnvTesting, EnvStaging, EnvProduction:
		return true
	default:
		return false
	}
}

// Config carries the constructor knobs for every tickio component.
// Components themselves take plain constructor arguments; this package
// is the application-facing layer that loads those arguments from a
// file.
type Config struct {
	// Application configuration
	App AppConfig `yaml:"app" json:"app"`

	// Operation tracker configuration
	Tracker TrackerConfig `yaml:"tracker" json:"tracker"`

	// Resource pool configuration
	ResourcePool ResourcePoolConfig `yaml:"resource_pool" json:"resource_pool"`

	// Batch aggregator configuration
	Batch BatchConfig `yaml:"batch" json:"batch"`

	// Rate limiter configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Custom configurations (for user-defined nodes)
	Custom map[string]interface{} `yaml:"custom,omitempty" json:"custom,omitempty"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	// Application name
	Name string `yaml:"name" json:"name"`

	// Deployment environment
	Environment Environment `yaml:"environment" json:"environment"`

	// Debug mode
	Debug bool `yaml:"debug" json:"debug"`
}

// TrackerConfig contains operation tracker settings
type TrackerConfig struct {
	// Maximum number of worker goroutines
	MaxWorkers int `yaml:"max_workers" json:"max_workers"`
}

// ResourcePoolConfig contains resource pool settings
type ResourcePoolConfig struct {
	// Number of resources created at construction
	MaxConnections int `yaml:"max_connections" json:"max_connections"`

	// Bounded wait for a free resource inside a worker
	AcquireTimeout time.Duration `yaml:"acquire_timeout" json:"acquire_timeout"`

	// Worker pool size; 0 means max_connections
	MaxWorkers int `yaml:"max_workers" json:"max_workers"`
}

// Options converts the section into resource pool options.
func (c ResourcePoolConfig) Options() respool.Options {
	return respool.Options{
		MaxConnections: c.MaxConnections,
		AcquireTimeout: c.AcquireTimeout,
		MaxWorkers:     c.MaxWorkers,
	}
}

// BatchConfig contains batch aggregator settings
type BatchConfig struct {
	// Buffer size that triggers a flush
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// Maximum time between flush initiations
	FlushInterval time.Duration `yaml:"flush_interval" json:"flush_interval"`
}

// Options converts the section into batch aggregator options.
func (c BatchConfig) Options() batch.Options {
	return batch.Options{
		BatchSize:     c.BatchSize,
		FlushInterval: c.FlushInterval,
	}
}

// RateLimitConfig contains rate limiter settings
type RateLimitConfig struct {
	// Maximum operations per second
	MaxRate float64 `yaml:"max_rate" json:"max_rate"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "tickio-app",
			Environment: EnvDevelopment,
			Debug:       true,
		},
		Tracker: TrackerConfig{
			MaxWorkers: 4,
		},
		ResourcePool: ResourcePoolConfig{
			MaxConnections: 10,
			AcquireTimeout: 5 * time.Second,
		},
		Batch: BatchConfig{
			BatchSize:     100,
			FlushInterval: time.Second,
		},
		RateLimit: RateLimitConfig{
			MaxRate: 10.0,
		},
		Custom: make(map[string]interface{}),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return ErrInvalidAppName
	}
	if !c.App.Environment.IsValid() {
		return ErrInvalidEnvironment
	}

	if c.Tracker.MaxWorkers <= 0 {
		return ErrInvalidMaxWorkers
	}

	if c.ResourcePool.MaxConnections <= 0 {
		return ErrInvalidMaxConnections
	}
	if c.ResourcePool.AcquireTimeout <= 0 {
		return ErrInvalidAcquireTimeout
	}
	if c.ResourcePool.MaxWorkers < 0 {
		return ErrInvalidMaxWorkers
	}

	if c.Batch.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Batch.FlushInterval <= 0 {
		return ErrInvalidFlushInterval
	}

	if c.RateLimit.MaxRate <= 0 {
		return ErrInvalidMaxRate
	}

	return nil
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// IsDebugEnabled returns true if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.App.Environment == EnvDevelopment
}
