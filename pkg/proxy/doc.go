// Package proxy implements the forwarding engine: inbound requests under
// the forwarding prefix are relayed to the configured upstream target with
// streaming bodies in both directions.
//
// Preconditions are checked in a fixed order before any network I/O:
// an inactive admin credential answers 503, an unset target answers 404.
// Transport failures before the response starts answer 502 with the
// proxy_error envelope; failures after headers have been sent abort the
// connection, because the status line is already on the wire.
//
// Forwarding is at-most-once: one upstream attempt per inbound request,
// no retries, no response caching.
package proxy
