package proxy

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"switchyard-hq/spur/pkg/api"
	"switchyard-hq/spur/pkg/config"
	"switchyard-hq/spur/pkg/credential"
	"switchyard-hq/spur/pkg/target"
)

// hopByHopHeaders are connection-level headers that must not be relayed
// in either direction. See RFC 9110 §7.6.1.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forwarder relays inbound requests under the forwarding prefix to the
// configured upstream target.
//
// The credential and target stores are consulted once per request before
// the relay begins; the relay itself holds no lock, so concurrent
// forwards never serialize on each other.
type Forwarder struct {
	credentials *credential.Store
	targets     *target.Store
	prefix      string
	client      *http.Client
}

// NewForwarder creates a forwarder with a pooled upstream transport.
func NewForwarder(creds *credential.Store, targets *target.Store, cfg config.ForwardConfig) *Forwarder {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Forwarder{
		credentials: creds,
		targets:     targets,
		prefix:      cfg.Prefix,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.UpstreamTimeout,
			// Redirects are the upstream's answer; relay them untouched.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// ServeHTTP implements http.Handler. Exactly one forwarding attempt is
// made per inbound request: no retries, no caching.
func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !f.credentials.IsActive() {
		api.WriteError(w, http.StatusServiceUnavailable, api.CodeAdminTokenNotSet,
			"no admin token is configured; forwarding is disabled")
		return
	}

	upstream, ok := f.targets.Get()
	if !ok {
		api.WriteError(w, http.StatusNotFound, api.CodeNoTargetConfigured,
			"no upstream target is configured")
		return
	}

	// EscapedPath keeps percent-encoded octets (including %2F) intact so
	// the upstream sees the same path segments the client sent.
	outbound := OutboundURL(upstream, r.URL.EscapedPath(), r.URL.RawQuery, f.prefix)

	// The inbound request context carries client disconnect, which
	// cancels the upstream call and releases its connection.
	req, err := http.NewRequestWithContext(r.Context(), r.Method, outbound, r.Body)
	if err != nil {
		api.WriteError(w, http.StatusBadGateway, api.CodeProxyError, err.Error())
		return
	}
	// Carry the declared length through so an exact Content-Length is
	// relayed as-is instead of being re-sent chunked.
	req.ContentLength = r.ContentLength
	copyHeaders(req.Header, r.Header)
	req.Host = upstream.Host
	appendForwardedHeaders(req, r)

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Warn("upstream request failed",
			"outbound", outbound,
			"error", err,
		)
		api.WriteError(w, http.StatusBadGateway, api.CodeProxyError, err.Error())
		return
	}
	defer resp.Body.Close()

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(flushingWriter(w), resp.Body); err != nil {
		// Headers and part of the body are already on the wire; the
		// status cannot be changed retroactively. Abort the connection
		// so the client sees a truncated response, not a silent success.
		slog.Error("relay interrupted mid-body",
			"outbound", outbound,
			"error", err,
		)
		panic(http.ErrAbortHandler)
	}
}

// copyHeaders copies all headers from src to dst except hop-by-hop
// headers and any header named in src's Connection field.
func copyHeaders(dst, src http.Header) {
	dropped := map[string]bool{}
	for _, name := range hopByHopHeaders {
		dropped[name] = true
	}
	for _, value := range src.Values("Connection") {
		for _, name := range strings.Split(value, ",") {
			if name = http.CanonicalHeaderKey(strings.TrimSpace(name)); name != "" {
				dropped[name] = true
			}
		}
	}

	for name, values := range src {
		if dropped[name] {
			continue
		}
		for _, value := range values {
			dst.Add(name, value)
		}
	}
}

// appendForwardedHeaders records the downstream client on the outbound
// request the way other reverse proxies do.
func appendForwardedHeaders(req *http.Request, inbound *http.Request) {
	clientIP := inbound.RemoteAddr
	if i := strings.LastIndex(clientIP, ":"); i >= 0 {
		clientIP = clientIP[:i]
	}
	if prior := inbound.Header.Get("X-Forwarded-For"); prior != "" {
		clientIP = prior + ", " + clientIP
	}
	req.Header.Set("X-Forwarded-For", clientIP)

	proto := "http"
	if inbound.TLS != nil {
		proto = "https"
	}
	req.Header.Set("X-Forwarded-Proto", proto)
	req.Header.Set("X-Forwarded-Host", inbound.Host)
}

// flushWriter flushes after every write so streamed upstream responses
// (SSE, chunked progress output) reach the client without buffering.
type flushWriter struct {
	w       io.Writer
	flusher http.Flusher
}

// flushingWriter wraps w with per-write flushing when supported.
func flushingWriter(w http.ResponseWriter) io.Writer {
	if flusher, ok := w.(http.Flusher); ok {
		return &flushWriter{w: w, flusher: flusher}
	}
	return w
}

// Write implements io.Writer.
func (fw *flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if n > 0 {
		fw.flusher.Flush()
	}
	return n, err
}
