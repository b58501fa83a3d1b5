// Package config loads turniptext.yaml, the project-level defaults a
// CLI invocation falls back to when a flag isn't given explicitly
// (SPEC_FULL.md §7.1): recursion limit, default include root, color
// preference, and theme name. The parser package itself takes all of
// these as explicit turniptext.ParseOptions — this file is a CLI
// concern layered on top, not something internal/ttparse depends on.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/turniptext/turniptext/internal/theme"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultIncludeRoot is the include_root used when none is
	// configured: the directory, relative to ProjectRoot, that the CLI
	// roots the filesystem it passes to the parser at.
	DefaultIncludeRoot = "."
	// ConfigFileName is the name of the turnip-text configuration file.
	ConfigFileName = "turniptext.yaml"
)

// Config holds turnip-text's project-level defaults.
type Config struct {
	// IncludeRoot is the directory, relative to ProjectRoot, that the
	// CLI roots the filesystem it passes to the parser at.
	IncludeRoot string `yaml:"include_root"`
	// ProjectRoot is the absolute path to the project root (where
	// turniptext.yaml was found, or where we're running from).
	ProjectRoot string `yaml:"-"`
	// RecursionLimit overrides turniptext.DefaultRecursionLimit when
	// > 0; 0 means "use the library default".
	RecursionLimit int `yaml:"recursion_limit"`
	// Color selects whether diagnostics are styled: "auto" (the
	// default), "always", or "never".
	Color string `yaml:"color"`
	// Theme is the name of the color theme to use
	// (default, dark, light, solarized, monokai).
	Theme string `yaml:"theme"`
}

// Load searches for turniptext.yaml starting from the current working
// directory, walking up the directory tree. If found, it parses the
// configuration. If not found, returns default configuration.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	return LoadFromPath(cwd)
}

// LoadFromPath searches for turniptext.yaml starting from the given
// path, walking up the directory tree. If found, it parses the
// configuration. If not found, returns default configuration with
// startPath as ProjectRoot.
func LoadFromPath(startPath string) (*Config, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to resolve absolute path for %q: %w",
			startPath,
			err,
		)
	}

	currentPath := absPath
	for {
		configPath := filepath.Join(currentPath, ConfigFileName)

		if _, err := os.Stat(configPath); err == nil {
			cfg, err := parseConfigFile(configPath)
			if err != nil {
				return nil, err
			}
			cfg.ProjectRoot = currentPath

			if err := cfg.validate(); err != nil {
				return nil, fmt.Errorf(
					"invalid configuration in %s: %w",
					configPath,
					err,
				)
			}

			return cfg, nil
		}

		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			break
		}
		currentPath = parentPath
	}

	return &Config{
		IncludeRoot: DefaultIncludeRoot,
		ProjectRoot: absPath,
		Color:       "auto",
		Theme:       "default",
	}, nil
}

// parseConfigFile reads and parses a turniptext.yaml file.
func parseConfigFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		var yamlErr *yaml.TypeError
		if errors.As(err, &yamlErr) {
			return nil, fmt.Errorf("invalid YAML syntax: %v", yamlErr.Errors)
		}

		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.IncludeRoot == "" {
		cfg.IncludeRoot = DefaultIncludeRoot
	}
	if cfg.Color == "" {
		cfg.Color = "auto"
	}
	if cfg.Theme == "" {
		cfg.Theme = "default"
	}

	return &cfg, nil
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if strings.Contains(c.IncludeRoot, "..") {
		return errors.New("include_root cannot contain '..'")
	}

	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color)
	}

	if c.RecursionLimit < 0 {
		return fmt.Errorf("recursion_limit cannot be negative, got %d", c.RecursionLimit)
	}

	if _, err := theme.Get(c.Theme); err != nil {
		available := theme.Available()

		return fmt.Errorf(
			"invalid theme '%s', available themes: %s",
			c.Theme,
			strings.Join(available, ", "),
		)
	}

	return nil
}

// IncludeRootPath returns ProjectRoot joined with IncludeRoot.
func (c *Config) IncludeRootPath() string {
	return filepath.Join(c.ProjectRoot, c.IncludeRoot)
}
