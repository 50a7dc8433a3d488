// Package api implements the admin HTTP surface: the public info
// endpoint, the authorized target and credential mutations, and the
// one-shot setup endpoint, together with the JSON error envelope every
// response uses.
//
// Endpoints:
//
//   - GET  /api/info               public snapshot + setup instructions
//   - POST /api/config             set the upstream target (admin)
//   - GET  /api/status             read the upstream target (admin)
//   - POST /api/change-admin-token rotate the credential in memory (admin)
//   - POST /api/setup              provision a credential while inactive
//
// The admin API is the only writer of the target store and the credential
// store; the forwarding engine only ever reads them.
package api
