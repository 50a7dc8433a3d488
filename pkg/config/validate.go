package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "auth.mode").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Server.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "must not be empty"})
	}
	if cfg.Server.ReadTimeout < 0 {
		errs = append(errs, FieldError{"server.read_timeout", "must not be negative"})
	}
	if cfg.Server.WriteTimeout < 0 {
		errs = append(errs, FieldError{"server.write_timeout", "must not be negative"})
	}
	if cfg.Server.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{"server.max_header_bytes", "must not be negative"})
	}

	switch cfg.Auth.Mode {
	case ModeStrict, ModeDegraded, ModeFileFallback:
	default:
		errs = append(errs, FieldError{"auth.mode", fmt.Sprintf(
			"must be %q, %q, or %q, got %q",
			ModeStrict, ModeDegraded, ModeFileFallback, cfg.Auth.Mode)})
	}
	if cfg.Auth.SettingsPath == "" {
		errs = append(errs, FieldError{"auth.settings_path", "must not be empty"})
	}

	if !strings.HasPrefix(cfg.Forward.Prefix, "/") || !strings.HasSuffix(cfg.Forward.Prefix, "/") {
		errs = append(errs, FieldError{"forward.prefix", fmt.Sprintf(
			"must start and end with %q, got %q", "/", cfg.Forward.Prefix)})
	}
	if cfg.Forward.Prefix == "/" {
		errs = append(errs, FieldError{"forward.prefix", "must contain at least one path segment"})
	}
	if cfg.Forward.UpstreamTimeout < 0 {
		errs = append(errs, FieldError{"forward.upstream_timeout", "must not be negative"})
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level", fmt.Sprintf(
			"must be debug, info, warn, or error, got %q", cfg.Telemetry.Logging.Level)})
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format", fmt.Sprintf(
			"must be json or text, got %q", cfg.Telemetry.Logging.Format)})
	}
	if !strings.HasPrefix(cfg.Telemetry.Metrics.Path, "/") {
		errs = append(errs, FieldError{"telemetry.metrics.path", "must start with /"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
