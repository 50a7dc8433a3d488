// Package metrics exposes Prometheus metrics for forwarded and admin
// requests, keyed by mount point rather than raw path so forwarded URLs
// never explode label cardinality.
package metrics
