package config

import "time"

// Config is the root configuration structure for spur.
// It contains all configuration sections for the HTTP server, admin
// credential provisioning, the forwarding engine, telemetry, and the
// optional static UI.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and connection limits.
	Server ServerConfig `yaml:"server"`

	// Auth contains admin-credential provisioning configuration including
	// the deployment mode and the settings file location.
	Auth AuthConfig `yaml:"auth"`

	// Forward contains configuration for the forwarding engine including
	// the proxy prefix and upstream transport settings.
	Forward ForwardConfig `yaml:"forward"`

	// Telemetry contains observability configuration (logging and metrics).
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// UI contains configuration for serving the static admin UI.
	UI UIConfig `yaml:"ui"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", ":8080").
	// The PORT environment variable, when set, overrides the port.
	// Default: ":8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Zero by default: forwarded responses stream for as long as
	// the upstream keeps sending.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration for the
	// admin API, used by the browser-based UI.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration for the admin API.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins. Use ["*"] to allow all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Authorization", "Content-Type", "X-Admin-Token", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// Credential provisioning modes. The mode decides what happens when the
// ADMIN_TOKEN environment variable is absent at startup.
const (
	// ModeStrict refuses to start without an environment credential.
	ModeStrict = "strict"

	// ModeDegraded starts without a credential; admin-gated operations
	// fail closed with 503 until /api/setup provisions one.
	ModeDegraded = "degraded"

	// ModeFileFallback falls back to the settings file, then to a baked-in
	// default token. Convenient for trusted single-user environments,
	// insecure by default; see package credential.
	ModeFileFallback = "file-fallback"
)

// AuthConfig contains admin-credential provisioning configuration.
type AuthConfig struct {
	// Mode selects the credential provisioning mode: "strict", "degraded",
	// or "file-fallback".
	// Default: "degraded"
	Mode string `yaml:"mode"`

	// SettingsPath is the path of the key-value settings file used to
	// persist a provisioned credential across restarts. Only consulted in
	// degraded mode (written by /api/setup) and file-fallback mode
	// (read at startup, watched for edits).
	// Default: "spur.settings"
	SettingsPath string `yaml:"settings_path"`

	// WatchSettings enables reloading the credential when the settings
	// file is edited while the process runs. Only applies while the
	// active credential came from the settings file or the baked-in
	// fallback; environment and runtime-override credentials are never
	// clobbered by a file edit.
	// Default: true
	WatchSettings *bool `yaml:"watch_settings"`
}

// ForwardConfig contains configuration for the forwarding engine.
type ForwardConfig struct {
	// Prefix is the path prefix stripped from inbound requests before the
	// outbound URL is composed. Must start and end with "/".
	// Default: "/p/"
	Prefix string `yaml:"prefix"`

	// UpstreamTimeout bounds each forwarded request end to end. Zero means
	// no timeout beyond transport defaults, which suits streaming upstreams.
	// Default: 0
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`

	// MaxIdleConns is the connection pool size across all upstream hosts.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the connection pool size per upstream host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle upstream connection is kept open.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "spur"
	Namespace string `yaml:"namespace"`
}

// UIConfig contains configuration for the static admin UI.
type UIConfig struct {
	// Dir is a directory of static files served at "/". When empty or
	// missing, unmatched paths get a JSON 404 instead.
	// Default: ""
	Dir string `yaml:"dir"`
}
