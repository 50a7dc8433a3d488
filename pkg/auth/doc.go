// Package auth gates admin operations on the shared admin credential.
//
// The guard distinguishes three failure states, checked in a fixed order:
//
//  1. 503 admin_token_not_set: no credential is active at all
//  2. 401 missing_token: the request carried no credential
//  3. 403 invalid_token: the supplied credential did not match
//
// Clients depend on that ordering to tell "the server is unprovisioned"
// apart from "I forgot the header" apart from "I have the wrong secret".
package auth
