package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toolgate.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFromFiles_Defaults(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 8060 {
		t.Errorf("expected default port 8060, got %d", cfg.Server.Port)
	}
	if cfg.Downstream.DataServiceURL == "" {
		t.Error("expected default downstream URL")
	}
	if cfg.Downstream.CacheTTLSeconds != 0 {
		t.Errorf("expected response cache disabled by default, got %d", cfg.Downstream.CacheTTLSeconds)
	}
}

func TestLoadFromFiles_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
service_name = "toolgate-test"

[server]
port = 9100

[downstream]
data_service_url = "http://data.internal:8061"
cache_ttl_seconds = 60
`)

	cfg, err := LoadFromFiles(path)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.ServiceName != "toolgate-test" {
		t.Errorf("expected service name override, got %q", cfg.ServiceName)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.Server.Port)
	}
	if cfg.Downstream.DataServiceURL != "http://data.internal:8061" {
		t.Errorf("unexpected downstream URL %q", cfg.Downstream.DataServiceURL)
	}
	if cfg.Downstream.CacheTTLSeconds != 60 {
		t.Errorf("expected cache TTL 60, got %d", cfg.Downstream.CacheTTLSeconds)
	}
	// Untouched values keep their defaults
	if cfg.Downstream.TimeoutSeconds != 30 {
		t.Errorf("expected default timeout preserved, got %d", cfg.Downstream.TimeoutSeconds)
	}
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	first := writeConfig(t, "[server]\nport = 9100\n")
	second := filepath.Join(t.TempDir(), "override.toml")
	if err := os.WriteFile(second, []byte("[server]\nport = 9200\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFiles(first, second)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("expected later file to win, got %d", cfg.Server.Port)
	}
}

func TestLoadFromFiles_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[server]\nport = 9100\n")

	t.Setenv("TOOLGATE_SERVER_PORT", "9300")
	t.Setenv("TOOLGATE_DATA_SERVICE_URL", "http://env.internal:8061")

	cfg, err := LoadFromFiles(path)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 9300 {
		t.Errorf("expected env to override file, got %d", cfg.Server.Port)
	}
	if cfg.Downstream.DataServiceURL != "http://env.internal:8061" {
		t.Errorf("expected env downstream URL, got %q", cfg.Downstream.DataServiceURL)
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	if _, err := LoadFromFiles("/nonexistent/toolgate.toml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadFromFiles_MalformedFile(t *testing.T) {
	path := writeConfig(t, "this is not toml [[[")
	if _, err := LoadFromFiles(path); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 9400, "0.0.0.0")
	if cfg.Server.Port != 9400 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected flag overrides applied, got %+v", cfg.Server)
	}

	ApplyFlagOverrides(cfg, 0, "")
	if cfg.Server.Port != 9400 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected zero flags ignored, got %+v", cfg.Server)
	}
}

func TestValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("expected default config to validate, got %v", issues)
	}

	cfg.Server.Port = 0
	cfg.Downstream.DataServiceURL = "not a url"
	issues := cfg.Validate()
	if len(issues) != 2 {
		t.Errorf("expected 2 issues, got %v", issues)
	}

	cfg.Downstream.DataServiceURL = ""
	if issues := cfg.Validate(); len(issues) != 2 {
		t.Errorf("expected missing URL issue, got %v", issues)
	}
}
