package proxy

import (
	"net/url"
	"strings"
)

// OutboundURL composes the upstream URL for an inbound proxied request.
// inboundPath is the escaped form of the path, so percent-encoded
// segments survive the round trip.
//
// The forwarding prefix is stripped from the inbound path (an empty
// remainder becomes "/"), the configured target contributes scheme and
// host, and a non-root target path is prepended with its trailing slash
// removed. The inbound query string is carried through verbatim.
//
//	target https://example.com,      /p/foo/bar -> https://example.com/foo/bar
//	target https://example.com/api/, /p/foo     -> https://example.com/api/foo
//	target https://example.com,      /p         -> https://example.com/
func OutboundURL(target *url.URL, inboundPath, rawQuery, prefix string) string {
	rest := strings.TrimPrefix(inboundPath, strings.TrimSuffix(prefix, "/"))
	if rest == "" {
		rest = "/"
	}

	base := strings.TrimSuffix(target.Path, "/")

	var sb strings.Builder
	sb.WriteString(target.Scheme)
	sb.WriteString("://")
	sb.WriteString(target.Host)
	sb.WriteString(base)
	sb.WriteString(rest)
	if rawQuery != "" {
		sb.WriteString("?")
		sb.WriteString(rawQuery)
	}
	return sb.String()
}
