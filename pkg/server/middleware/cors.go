package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"switchyard-hq/spur/pkg/config"
)

// CORS adds Cross-Origin Resource Sharing headers for the admin API so the
// browser-based UI can call it from another origin. Only genuine preflight
// requests (OPTIONS carrying both Origin and Access-Control-Request-Method)
// are answered with 204; any other OPTIONS passes through to the handler.
//
// Paths under exemptPrefix are never intercepted: forwarded requests,
// preflights included, relay the upstream's own CORS and method semantics
// untouched.
func CORS(cfg config.CORSConfig, exemptPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || corsExempt(r.URL.Path, exemptPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			} else if originAllowed("*", cfg.AllowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}

			if r.Method == http.MethodOptions && origin != "" &&
				r.Header.Get("Access-Control-Request-Method") != "" {
				if len(cfg.AllowedMethods) > 0 {
					w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
				}
				if len(cfg.AllowedHeaders) > 0 {
					w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
				}
				if cfg.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// corsExempt reports whether the path is under the exempt prefix,
// counting the bare prefix without its trailing slash.
func corsExempt(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	return path == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(path, prefix)
}

// originAllowed checks if an origin is in the allowed list.
func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
