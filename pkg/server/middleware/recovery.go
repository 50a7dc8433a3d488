package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"switchyard-hq/spur/pkg/api"
)

// Recovery recovers from panics in HTTP handlers and returns a 500 error
// envelope without exposing internals. http.ErrAbortHandler is re-raised:
// the forwarding engine uses it deliberately to abort a relay whose
// headers are already on the wire, and net/http suppresses its stack.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				api.WriteError(w, http.StatusInternalServerError,
					api.CodeInternalError, "an internal error occurred")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
