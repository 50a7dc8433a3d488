// Package target holds the runtime-configurable upstream target URL.
//
// The target is per-instance ephemeral state: it starts unset, is mutated
// only through the authorized admin API, and is lost on restart. The same
// value has two exposure points with different auth policies — the
// forwarding engine reads it without authorization, the admin status
// endpoint reads it behind the auth gate.
package target
