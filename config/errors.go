// Package config provides error definitions for configuration management
package config

import "errors"

// Configuration validation errors
var (
	ErrInvalidAppName        = errors.New("invalid application name")
	ErrInvalidEnvironment    = errors.New("invalid environment")
	ErrInvalidMaxWorkers     = errors.New("invalid max workers")
	ErrInvalidMaxConnections = errors.New("invalid max connections")
	ErrInvalidAcquireTimeout = errors.New("invalid acquire timeout")
	ErrInvalidBatchSize      = errors.New("invalid batch size")
	ErrInvalidFlushInterval  = errors.New("invalid flush interval")
	ErrInvalidMaxRate        = errors.New("invalid max rate")
)

// Configuration loading errors
var (
	ErrConfigFileNotFound  = errors.New("configuration file not found")
	ErrConfigParseError    = errors.New("configuration parse error")
	ErrConfigValidateError = errors.New("configuration validation error")
	ErrConfigWatchError    = errors.New("configuration watch error")
)
