// config.go: loader configuration parsing with format auto-detection
//
// Loader configuration files may be JSON, YAML, or any other format
// Argus detects. JSON and the exotic formats go through Argus; YAML
// uses gopkg.in/yaml.v3 for full spec support. Environment variables
// override file values. There is no watching here: already-loaded
// integrations are never hot-reloaded.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import (
	"os"
	"strconv"

	"github.com/agilira/argus"
	"gopkg.in/yaml.v3"
)

// Environment variable overrides for LoaderConfig fields.
const (
	EnvConfigDir          = "GO_INTEGRATIONS_CONFIG_DIR"
	EnvBuiltinRoot        = "GO_INTEGRATIONS_BUILTIN_ROOT"
	EnvCustomRoot         = "GO_INTEGRATIONS_CUSTOM_ROOT"
	EnvSafeMode           = "GO_INTEGRATIONS_SAFE_MODE"
	EnvMaxConcurrentLoads = "GO_INTEGRATIONS_MAX_CONCURRENT_LOADS"
)

// LoaderConfig is the on-disk configuration of the integration loader.
type LoaderConfig struct {
	ConfigDir          string `json:"config_dir" yaml:"config_dir"`
	BuiltinRoot        string `json:"builtin_root" yaml:"builtin_root"`
	CustomRoot         string `json:"custom_root,omitempty" yaml:"custom_root,omitempty"`
	SafeMode           bool   `json:"safe_mode,omitempty" yaml:"safe_mode,omitempty"`
	MaxConcurrentLoads int64  `json:"max_concurrent_loads,omitempty" yaml:"max_concurrent_loads,omitempty"`
}

// LoadConfig reads, parses, and validates a loader configuration file,
// applying environment variable overrides on top of the file values.
func LoadConfig(path string) (*LoaderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigParseError(path, err)
	}

	config := &LoaderConfig{}
	if err := parseConfigWithHybridStrategy(data, argus.DetectFormat(path), config); err != nil {
		return nil, NewConfigParseError(path, err)
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// parseConfigWithHybridStrategy uses Argus for simple formats and a
// specialized parser for YAML.
func parseConfigWithHybridStrategy(data []byte, format argus.ConfigFormat, config *LoaderConfig) error {
	switch format {
	case argus.FormatYAML:
		return yaml.Unmarshal(data, config)

	default:
		// JSON, TOML, HCL, INI, Properties all go through Argus.
		configMap, err := argus.ParseConfig(data, format)
		if err != nil {
			return err
		}
		return bindLoaderConfig(configMap, config)
	}
}

// bindLoaderConfig maps a generic parsed configuration onto the typed
// struct.
func bindLoaderConfig(configMap map[string]interface{}, config *LoaderConfig) error {
	if value, ok := configMap["config_dir"].(string); ok {
		config.ConfigDir = value
	}
	if value, ok := configMap["builtin_root"].(string); ok {
		config.BuiltinRoot = value
	}
	if value, ok := configMap["custom_root"].(string); ok {
		config.CustomRoot = value
	}
	if value, ok := configMap["safe_mode"].(bool); ok {
		config.SafeMode = value
	}
	switch value := configMap["max_concurrent_loads"].(type) {
	case int:
		config.MaxConcurrentLoads = int64(value)
	case int64:
		config.MaxConcurrentLoads = value
	case float64:
		config.MaxConcurrentLoads = int64(value)
	}
	return nil
}

// applyEnvOverrides overlays environment variable values onto config.
// Unparsable values are ignored in favor of the file value.
func applyEnvOverrides(config *LoaderConfig) {
	if value := os.Getenv(EnvConfigDir); value != "" {
		config.ConfigDir = value
	}
	if value := os.Getenv(EnvBuiltinRoot); value != "" {
		config.BuiltinRoot = value
	}
	if value := os.Getenv(EnvCustomRoot); value != "" {
		config.CustomRoot = value
	}
	if value := os.Getenv(EnvSafeMode); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			config.SafeMode = parsed
		}
	}
	if value := os.Getenv(EnvMaxConcurrentLoads); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			config.MaxConcurrentLoads = parsed
		}
	}
}

// Validate checks the configuration for structural problems.
func (c *LoaderConfig) Validate() error {
	if c.ConfigDir == "" {
		return NewConfigDirMissingError()
	}
	if c.BuiltinRoot == "" {
		return NewConfigInvalidError("builtin_root is required")
	}
	if c.MaxConcurrentLoads < 0 {
		return NewConfigInvalidError("max_concurrent_loads must not be negative")
	}
	return nil
}

// Options converts the configuration into registry options.
func (c *LoaderConfig) Options(logger Logger) Options {
	return Options{
		ConfigDir:          c.ConfigDir,
		BuiltinRoot:        c.BuiltinRoot,
		CustomRoot:         c.CustomRoot,
		SafeMode:           c.SafeMode,
		MaxConcurrentLoads: c.MaxConcurrentLoads,
		Logger:             logger,
	}
}
