package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL = "http://localhost:8000"
	apiURLEnv     = "BEECOK_API_URL"
)

// Config is the terminal client's settings, kept in ~/.beecok/config.yaml.
type Config struct {
	APIURL        string `yaml:"api_url"`
	MaxResults    int    `yaml:"max_results"`
	RetryAttempts int    `yaml:"retry_attempts"`
}

func DefaultConfig() Config {
	return Config{
		APIURL:        DefaultAPIURL,
		MaxResults:    DefaultMaxResults,
		RetryAttempts: DefaultAttempts,
	}
}

func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".beecok", "config.yaml"), nil
}

// LoadConfig reads path over the defaults. A missing file is not an error.
// BEECOK_API_URL overrides the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if v := strings.TrimSpace(os.Getenv(apiURLEnv)); v != "" {
		cfg.APIURL = v
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.APIURL == "" {
		return errors.New("config: api_url is required")
	}
	if err := ValidateMaxResults(c.MaxResults); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.RetryAttempts < 1 {
		return errors.New("config: retry_attempts must be at least 1")
	}
	return nil
}

// Save writes c to path, creating the directory if needed.
func (c Config) Save(path string) error {
	if err := c.validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
