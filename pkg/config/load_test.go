package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error for missing file: %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if cfg.Auth.Mode != ModeDegraded {
		t.Errorf("Auth.Mode = %q, want %q", cfg.Auth.Mode, ModeDegraded)
	}
	if cfg.Forward.Prefix != DefaultForwardPrefix {
		t.Errorf("Forward.Prefix = %q, want %q", cfg.Forward.Prefix, DefaultForwardPrefix)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  listen_address: "127.0.0.1:9999"
  read_timeout: 5s
auth:
  mode: file-fallback
  settings_path: /tmp/custom.settings
forward:
  upstream_timeout: 30s
telemetry:
  logging:
    level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.ListenAddress != "127.0.0.1:9999" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Auth.Mode != ModeFileFallback {
		t.Errorf("Auth.Mode = %q", cfg.Auth.Mode)
	}
	if cfg.Forward.UpstreamTimeout != 30*time.Second {
		t.Errorf("UpstreamTimeout = %v", cfg.Forward.UpstreamTimeout)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Telemetry.Logging.Level)
	}
	// Unset fields still get defaults.
	if cfg.Server.IdleTimeout != DefaultIdleTimeout {
		t.Errorf("IdleTimeout = %v, want default %v", cfg.Server.IdleTimeout, DefaultIdleTimeout)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("SPUR_AUTH_MODE", "strict")
	t.Setenv("PORT", "3000")
	t.Setenv("SPUR_LOG_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}
	if cfg.Auth.Mode != ModeStrict {
		t.Errorf("Auth.Mode = %q, want strict", cfg.Auth.Mode)
	}
	if cfg.Server.ListenAddress != ":3000" {
		t.Errorf("ListenAddress = %q, want :3000", cfg.Server.ListenAddress)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidMode(t *testing.T) {
	t.Setenv("SPUR_AUTH_MODE", "bogus")

	if _, err := LoadConfigWithEnvOverrides(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected validation error for bogus auth mode")
	}
}

func TestAdminTokenFromEnv(t *testing.T) {
	t.Setenv(AdminTokenEnvVar, "")
	if _, ok := AdminTokenFromEnv(); ok {
		t.Error("empty env var should report absent")
	}

	t.Setenv(AdminTokenEnvVar, "super-secret-token-value")
	val, ok := AdminTokenFromEnv()
	if !ok || val != "super-secret-token-value" {
		t.Errorf("AdminTokenFromEnv = (%q, %v)", val, ok)
	}
}
