// Package config provides configuration loading and validation for spur.
//
// Configuration comes from three layers, later layers winning:
//
//  1. Built-in defaults (ApplyDefaults)
//  2. An optional YAML file (LoadConfig); a missing file is fine
//  3. Environment variables (LoadConfigWithEnvOverrides)
//
// Two environment variables are special because they predate the
// structured SPUR_* naming: ADMIN_TOKEN carries the admin credential and
// PORT overrides the listen port. Everything else uses SPUR_SECTION_FIELD,
// for example SPUR_AUTH_MODE or SPUR_FORWARD_UPSTREAM_TIMEOUT.
//
// Example config file:
//
//	server:
//	  listen_address: ":8080"
//	auth:
//	  mode: degraded
//	  settings_path: spur.settings
//	forward:
//	  prefix: /p/
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
