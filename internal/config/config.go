// Package config loads the server configuration.
//
// Values come from built-in defaults, then the YAML file under the XDG
// config home, then the environment. Command-line flags are applied last by
// the caller. The resulting Config is validated once and never mutated.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/ee99ee/codemagic-mcp-improved/internal/codemagic"
)

// AppName names the config directory and the keyring service.
const AppName = "codemagic-mcp"

const (
	EnvAPIKey  = "CODEMAGIC_API_KEY"
	EnvBaseURL = "CODEMAGIC_BASE_URL"
)

// Config holds the process configuration.
type Config struct {
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	LogLevel        string        `yaml:"log_level"`
	LogFile         string        `yaml:"log_file"`

	// HTTPAddr selects the streamable HTTP transport when set.
	HTTPAddr string `yaml:"http_addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:         codemagic.DefaultBaseURL,
		Timeout:         30 * time.Second,
		DownloadTimeout: 5 * time.Minute,
		LogLevel:        "info",
	}
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads the config file at path over the defaults and applies
// environment overrides. An empty path means the default location, which
// may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Path()
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// mergeFile decodes the YAML file at path into cfg. Keys absent from the
// file keep their current value.
func (cfg *Config) mergeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
}

// Validate checks that the configuration is usable.
func (cfg Config) Validate() error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) url, got %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.DownloadTimeout <= 0 {
		return fmt.Errorf("download_timeout must be positive, got %s", cfg.DownloadTimeout)
	}
	return nil
}
