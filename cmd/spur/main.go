// Spur is a single-tenant relay: one process, one runtime-configurable
// upstream, gated by an admin credential.
//
// It forwards requests under a path prefix to whatever upstream the admin
// API points it at, providing:
//   - Runtime target configuration over a small JSON admin API
//   - Admin-credential provisioning in strict, degraded, or
//     file-fallback mode
//   - Streaming passthrough of upstream responses
//   - Prometheus metrics and structured JSON logging
//
// Usage:
//
//	# Start with default configuration
//	spur run
//
//	# Start with a custom configuration file
//	spur run --config /path/to/config.yaml
//
//	# Require ADMIN_TOKEN at startup
//	SPUR_AUTH_MODE=strict ADMIN_TOKEN=... spur run
//
//	# Show version information
//	spur version
package main

func main() {
	Execute()
}
