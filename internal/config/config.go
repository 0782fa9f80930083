// Package config loads leafcheck settings from defaults, a YAML file, .env
// files and the environment, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load
const (
	EnvServiceURL  = "LEAFCHECK_SERVICE_URL"
	EnvTimeout     = "LEAFCHECK_TIMEOUT"
	EnvRateLimit   = "LEAFCHECK_RATE_LIMIT"
	EnvPort        = "LEAFCHECK_PORT"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
	EnvDatabaseURL = "DATABASE_URL"
)

// Config holds runtime settings
type Config struct {
	ServiceURL  string        `yaml:"service_url"`
	Timeout     time.Duration `yaml:"timeout"`
	RateLimit   float64       `yaml:"rate_limit"` // uploads per second, 0 disables
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
	DatabaseURL string        `yaml:"database_url"` // empty disables history
	Port        int           `yaml:"port"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		ServiceURL: "http://127.0.0.1:5000",
		Timeout:    120 * time.Second,
		RateLimit:  1,
		LogLevel:   "info",
		LogFormat:  "auto",
		Port:       8080,
	}
}

// DefaultPath returns ~/.config/leafcheck/config.yaml, or "" if the home
// directory cannot be resolved.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "leafcheck", "config.yaml")
}

// Load builds a Config. An explicit path must exist; the default path is
// optional.
func Load(path string, logger *logrus.Logger) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	LoadEnv(logger)
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// LoadEnv loads variables from .env and .env.local in the working
// directory, if present.
func LoadEnv(logger *logrus.Logger) {
	files := []string{".env", ".env.local"}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger != nil && len(loaded) > 0 {
		logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvServiceURL); v != "" {
		cfg.ServiceURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRateLimit, err)
		}
		cfg.RateLimit = r
	}
	if v := os.Getenv(EnvPort); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.Port = p
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
	return nil
}

// Validate checks that settings are usable
func (c Config) Validate() error {
	if c.ServiceURL == "" {
		return errors.New("service URL is required")
	}
	if !strings.HasPrefix(c.ServiceURL, "http://") && !strings.HasPrefix(c.ServiceURL, "https://") {
		return fmt.Errorf("service URL must start with http:// or https://, got %q", c.ServiceURL)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}
