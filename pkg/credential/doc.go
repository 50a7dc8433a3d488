// Package credential holds the admin credential, its provenance, and the
// settings-file persistence behind the three provisioning modes.
//
// # Provisioning modes
//
// At startup the credential comes from exactly one of:
//
//   - strict: ADMIN_TOKEN must be set or the process refuses to start.
//   - degraded: a missing ADMIN_TOKEN leaves the store inactive; the
//     server runs read-only (every admin-gated operation returns 503)
//     until /api/setup provisions a credential.
//   - file-fallback: a missing ADMIN_TOKEN falls back to the settings
//     file, then to the baked-in DefaultFallbackToken.
//
// # Security trade-off
//
// DefaultFallbackToken is a well-known constant, which makes file-fallback
// mode insecure by default. That is intentional: the mode exists for
// trusted single-user scratch environments where "it just works" beats a
// provisioning step. Deployments that need real security must run strict
// mode, where the only credential source is the environment.
//
// # Persistence
//
// Replace is never durable; a restart reverts to the Initialize result.
// The only durable write is Provision's PersistFunc hook, wired to
// SettingsFile.SaveToken. The settings file is written 0600 and must be
// kept out of version control.
package credential
