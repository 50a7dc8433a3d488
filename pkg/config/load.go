package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path,
// applies default values, and validates the result.
//
// A missing file is not an error: spur is expected to run with no config
// file at all, configured entirely by defaults and environment variables.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables always take
// precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file (missing file means defaults only)
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration invalid after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Structured overrides use the SPUR_SECTION_FIELD format.
// PORT is honored bare because that is what single-binary PaaS runtimes
// export.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SPUR_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("PORT"); val != "" {
		host, _, err := net.SplitHostPort(cfg.Server.ListenAddress)
		if err != nil {
			host = ""
		}
		cfg.Server.ListenAddress = net.JoinHostPort(host, val)
	}
	if val := os.Getenv("SPUR_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("SPUR_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if val := os.Getenv("SPUR_AUTH_MODE"); val != "" {
		cfg.Auth.Mode = val
	}
	if val := os.Getenv("SPUR_AUTH_SETTINGS_PATH"); val != "" {
		cfg.Auth.SettingsPath = val
	}

	if val := os.Getenv("SPUR_FORWARD_PREFIX"); val != "" {
		cfg.Forward.Prefix = val
	}
	if val := os.Getenv("SPUR_FORWARD_UPSTREAM_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Forward.UpstreamTimeout = d
		}
	}

	if val := os.Getenv("SPUR_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SPUR_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}

	if val := os.Getenv("SPUR_UI_DIR"); val != "" {
		cfg.UI.Dir = val
	}
}

// AdminTokenEnvVar is the environment variable holding the admin credential.
const AdminTokenEnvVar = "ADMIN_TOKEN"

// AdminTokenFromEnv returns the admin credential from the environment and
// whether it was present and non-empty.
func AdminTokenFromEnv() (string, bool) {
	val := os.Getenv(AdminTokenEnvVar)
	return val, val != ""
}
