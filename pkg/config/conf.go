package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	ModelPathDefault        = "model/model.json"
	PortDefault             = 8080
	LogLevelDefault         = "info"
	BatchConcurrencyDefault = 4
)

// Config represents app config object.
type Config struct {
	ModelPath        string `yaml:"model_path"`
	Port             int    `yaml:"port"`
	LogLevel         string `yaml:"log_level"`
	History          bool   `yaml:"history"`
	BatchConcurrency int    `yaml:"batch_concurrency"`
}

// Default returns the config written on first run.
func Default() *Config {
	return &Config{
		ModelPath:        ModelPathDefault,
		Port:             PortDefault,
		LogLevel:         LogLevelDefault,
		History:          true,
		BatchConcurrency: BatchConcurrencyDefault,
	}
}

// fill replaces zero values left by older or hand edited files.
func (c *Config) fill() {
	if c.ModelPath == "" {
		c.ModelPath = ModelPathDefault
	}
	if c.Port <= 0 {
		c.Port = PortDefault
	}
	if c.LogLevel == "" {
		c.LogLevel = LogLevelDefault
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = BatchConcurrencyDefault
	}
}

// Save writes c into dirPath.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, fmt.Errorf("failed to create dir %s: %w", dirPath, err)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, Default()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}
	c.fill()
	return c, nil
}

// GetOrCreateHomeDir returns the app directory under the current user home.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to get user home dir: %w", err)
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
