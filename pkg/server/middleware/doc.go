// Package middleware provides the cross-cutting HTTP middleware chain:
// request IDs, structured request logging, panic recovery, and CORS.
//
// Requests pass through the chain outermost to innermost:
// Recovery, RequestID, Logging, CORS, then the route handlers.
package middleware
