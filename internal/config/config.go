// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package config provides configuration loading and validation for apidesc.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Config represents the apidesc configuration.
type Config struct {
	// Output is the output file path for the generated API description
	Output string `mapstructure:"output" yaml:"output" json:"output"`

	// Format is the output format (yaml, json)
	Format string `mapstructure:"format" yaml:"format" json:"format"`

	// Description contains the metadata of the generated description
	Description DescriptionConfig `mapstructure:"description" yaml:"description" json:"description"`

	// Source contains manifest discovery configuration
	Source SourceConfig `mapstructure:"source" yaml:"source" json:"source"`

	// Generation contains generation behavior configuration
	Generation GenerationConfig `mapstructure:"generation" yaml:"generation" json:"generation"`

	// Watch contains file watching configuration
	Watch WatchConfig `mapstructure:"watch" yaml:"watch" json:"watch"`
}

// DescriptionConfig contains the root metadata of the API description.
type DescriptionConfig struct {
	// ID is the API identifier (e.g., "example:users")
	ID string `mapstructure:"id" yaml:"id" json:"id"`

	// Version is the API version
	Version string `mapstructure:"version" yaml:"version" json:"version"`

	// Description is free text describing the API
	Description string `mapstructure:"description" yaml:"description" json:"description"`
}

// SourceConfig contains manifest discovery configuration.
type SourceConfig struct {
	// Paths is a list of paths to scan
	Paths []string `mapstructure:"paths" yaml:"paths" json:"paths"`

	// Include is a list of glob patterns to include
	Include []string `mapstructure:"include" yaml:"include" json:"include"`

	// Exclude is a list of glob patterns to exclude
	Exclude []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
}

// GenerationConfig contains generation behavior configuration.
type GenerationConfig struct {
	// Strict fails generation when a mounted type is not a handler
	Strict bool `mapstructure:"strict" yaml:"strict" json:"strict"`

	// Commons checks that references into the common errors resolve
	Commons bool `mapstructure:"commons" yaml:"commons" json:"commons"`

	// Parallel describes mounts concurrently
	Parallel bool `mapstructure:"parallel" yaml:"parallel" json:"parallel"`

	// OpenAPI contains the OpenAPI export configuration
	OpenAPI OpenAPIConfig `mapstructure:"openapi" yaml:"openapi" json:"openapi"`
}

// OpenAPIConfig contains the OpenAPI export configuration.
type OpenAPIConfig struct {
	// Enabled writes an OpenAPI projection next to the description
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Output is the output file path of the OpenAPI document
	Output string `mapstructure:"output" yaml:"output" json:"output"`

	// Version is the OpenAPI version to generate (3.0.0 to 3.0.3)
	Version string `mapstructure:"version" yaml:"version" json:"version"`
}

// WatchConfig contains file watching configuration.
type WatchConfig struct {
	// Debounce is the debounce duration in milliseconds
	Debounce int `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
}

// configFileNames is the list of config file names to search for (in order).
var configFileNames = []string{
	"apidesc.config.yaml",
	"apidesc.config.json",
	".apidesc.config.yaml",
	".apidesc.config.json",
}

// supportedFormats is the list of supported output formats.
var supportedFormats = []string{
	"yaml",
	"json",
}

// supportedOpenAPIVersions is the list of OpenAPI versions the export can produce.
var supportedOpenAPIVersions = []string{
	"3.0.0",
	"3.0.1",
	"3.0.2",
	"3.0.3",
}

var defaultExclude = []string{
	"vendor/**",
	"**/testdata/**",
	"node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
}

// ErrConfigNotFound is returned when no config file is found.
var ErrConfigNotFound = errors.New("config file not found")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("config validation errors:\n")
	for _, err := range e {
		sb.WriteString("  - ")
		sb.WriteString(err.Field)
		sb.WriteString(": ")
		sb.WriteString(err.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Output: "api-description.yaml",
		Format: "yaml",
		Description: DescriptionConfig{
			ID:      "api",
			Version: "1.0.0",
		},
		Source: SourceConfig{
			Paths:   []string{"."},
			Include: []string{"**/*.apidesc.yaml", "**/*.apidesc.yml"},
			Exclude: slices.Clone(defaultExclude),
		},
		Generation: GenerationConfig{
			OpenAPI: OpenAPIConfig{
				Output:  "openapi.yaml",
				Version: "3.0.3",
			},
		},
		Watch: WatchConfig{
			Debounce: 500,
		},
	}
}

// Load loads the configuration from a file.
// It searches for config files in the following order:
// 1. apidesc.config.yaml
// 2. apidesc.config.json
// 3. .apidesc.config.yaml
// 4. .apidesc.config.json
//
// If configPath is provided, it will use that path instead.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		name, found := lo.Find(configFileNames, func(name string) bool {
			_, err := os.Stat(name)
			return err == nil
		})
		if !found {
			return Default(), nil
		}
		v.SetConfigFile(name)
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()

	return &cfg, nil
}

// LoadFromPath loads the configuration from a specific directory.
func LoadFromPath(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

// setDefaults sets the default values for viper.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("output", d.Output)
	v.SetDefault("format", d.Format)
	v.SetDefault("description.id", d.Description.ID)
	v.SetDefault("description.version", d.Description.Version)
	v.SetDefault("source.paths", d.Source.Paths)
	v.SetDefault("source.include", d.Source.Include)
	v.SetDefault("source.exclude", d.Source.Exclude)
	v.SetDefault("generation.strict", false)
	v.SetDefault("generation.commons", false)
	v.SetDefault("generation.parallel", false)
	v.SetDefault("generation.openapi.enabled", false)
	v.SetDefault("generation.openapi.output", d.Generation.OpenAPI.Output)
	v.SetDefault("generation.openapi.version", d.Generation.OpenAPI.Version)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
}

// normalize drops repeated paths and patterns.
func (c *Config) normalize() {
	c.Source.Paths = lo.Uniq(c.Source.Paths)
	c.Source.Include = lo.Uniq(c.Source.Include)
	c.Source.Exclude = lo.Uniq(c.Source.Exclude)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Format != "" && !lo.Contains(supportedFormats, c.Format) {
		errs = append(errs, ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unsupported format %q, must be one of: %s", c.Format, strings.Join(supportedFormats, ", ")),
		})
	}

	if v := c.Generation.OpenAPI.Version; v != "" && !lo.Contains(supportedOpenAPIVersions, v) {
		errs = append(errs, ValidationError{
			Field:   "generation.openapi.version",
			Message: fmt.Sprintf("unsupported OpenAPI version %q, must be one of: %s", v, strings.Join(supportedOpenAPIVersions, ", ")),
		})
	}

	if c.Generation.OpenAPI.Enabled && c.Generation.OpenAPI.Output == "" {
		errs = append(errs, ValidationError{
			Field:   "generation.openapi.output",
			Message: "output is required when the OpenAPI export is enabled",
		})
	}

	if c.Watch.Debounce < 0 {
		errs = append(errs, ValidationError{
			Field:   "watch.debounce",
			Message: "debounce must be non-negative",
		})
	}

	if c.Description.ID == "" {
		errs = append(errs, ValidationError{
			Field:   "description.id",
			Message: "id is required",
		})
	}

	if c.Description.Version == "" {
		errs = append(errs, ValidationError{
			Field:   "description.version",
			Message: "version is required",
		})
	}

	if len(c.Source.Paths) == 0 {
		errs = append(errs, ValidationError{
			Field:   "source.paths",
			Message: "at least one path is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ConfigFilePath returns the path of the config file Load would pick, if any.
func ConfigFilePath() string {
	name, _ := lo.Find(configFileNames, func(name string) bool {
		_, err := os.Stat(name)
		return err == nil
	})
	return name
}
