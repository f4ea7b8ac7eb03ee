// Package config loads the trail configuration file.
//
// The file is YAML (`.trail.yaml` by default). A `.env` file next to it is
// loaded into the environment first, and `${VAR}` or `$VAR` references in
// string settings are expanded from the environment. Variables that are
// already set are not overridden by `.env`.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

const DefaultPath = ".trail.yaml"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// Data is the default data file for eval, suggest, repl and lsp.
	Data string `yaml:"data"`
	// Context is an optional file bound to `#`.
	Context string `yaml:"context"`
	// Format is the default result format: json, yaml or line.
	Format      string `yaml:"format"`
	HistoryFile string `yaml:"history_file"`
	Color       *bool  `yaml:"color"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
}

// logLevels maps log_level names to commonlog verbosity, where 0 is
// notice and every step up or down adds or removes a level.
var logLevels = map[string]int{
	"":         0,
	"critical": -3,
	"error":    -2,
	"warning":  -1,
	"notice":   0,
	"info":     1,
	"debug":    2,
}

func defaults() *Config {
	return &Config{
		Format:      "json",
		HistoryFile: filepath.Join(homeDir(), ".trail_history"),
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Load reads the configuration at path. A missing file yields the
// defaults. Relative file settings are resolved against the directory
// of the configuration file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	dir := filepath.Dir(path)

	if err := loadEnvFile(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		config := defaults()
		expandEnvVars(config)
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := defaults()
	if err := yaml.UnmarshalWithOptions(data, config, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	expandEnvVars(config)
	if err := validate(config); err != nil {
		return nil, err
	}

	config.Data = resolve(dir, config.Data)
	config.Context = resolve(dir, config.Context)
	config.LogFile = resolve(dir, config.LogFile)
	return config, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func expandEnvVars(config *Config) {
	config.Data = os.ExpandEnv(config.Data)
	config.Context = os.ExpandEnv(config.Context)
	config.Format = os.ExpandEnv(config.Format)
	config.HistoryFile = os.ExpandEnv(config.HistoryFile)
	config.LogLevel = os.ExpandEnv(config.LogLevel)
	config.LogFile = os.ExpandEnv(config.LogFile)
}

func validate(config *Config) error {
	switch config.Format {
	case "json", "yaml", "line":
	default:
		return fmt.Errorf("%w: format %q (expected json, yaml, or line)", ErrInvalidConfig, config.Format)
	}
	if _, ok := logLevels[config.LogLevel]; !ok {
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, config.LogLevel)
	}
	return nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Verbosity maps log_level to a commonlog verbosity.
func (c *Config) Verbosity() int {
	return logLevels[c.LogLevel]
}

// ColorEnabled reports the color setting, defaulting to fallback when the
// file leaves it unset.
func (c *Config) ColorEnabled(fallback bool) bool {
	if c.Color == nil {
		return fallback
	}
	return *c.Color
}
