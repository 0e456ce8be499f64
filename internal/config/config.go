package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	ServiceName string           `toml:"service_name"`
	Environment string           `toml:"environment"`
	Server      ServerConfig     `toml:"server"`
	Downstream  DownstreamConfig `toml:"downstream"`
	Logging     LoggingConfig    `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// DownstreamConfig contains settings for outbound calls made on behalf of callers.
type DownstreamConfig struct {
	DataServiceURL  string `toml:"data_service_url"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	MaxResponseMB   int    `toml:"max_response_mb"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies TOOLGATE_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("TOOLGATE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("TOOLGATE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if u := os.Getenv("TOOLGATE_DATA_SERVICE_URL"); u != "" {
		config.Downstream.DataServiceURL = u
	}
	if ttl := os.Getenv("TOOLGATE_CACHE_TTL_SECONDS"); ttl != "" {
		if v, err := strconv.Atoi(ttl); err == nil {
			config.Downstream.CacheTTLSeconds = v
		}
	}
	if level := os.Getenv("TOOLGATE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if env := os.Getenv("TOOLGATE_ENVIRONMENT"); env != "" {
		config.Environment = env
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks mandatory configuration and returns a list of issues.
// An empty list means the configuration is usable.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}
	if c.Downstream.DataServiceURL == "" {
		issues = append(issues, "downstream.data_service_url is required (TOOLGATE_DATA_SERVICE_URL)")
	} else if u, err := url.Parse(c.Downstream.DataServiceURL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, fmt.Sprintf("downstream.data_service_url is not a valid URL: %q", c.Downstream.DataServiceURL))
	}
	if c.Downstream.TimeoutSeconds < 0 {
		issues = append(issues, "downstream.timeout_seconds must not be negative")
	}
	if c.Downstream.CacheTTLSeconds < 0 {
		issues = append(issues, "downstream.cache_ttl_seconds must not be negative")
	}

	return issues
}
