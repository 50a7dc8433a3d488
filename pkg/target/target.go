package target

import (
	"fmt"
	"net/url"
	"sync"
)

// ValidateURL reports whether raw is a well-formed absolute HTTP or HTTPS
// URL. Scheme-relative, relative, and non-HTTP schemes (ftp://, javascript:)
// are all rejected. Pure function, no side effects.
func ValidateURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// ErrInvalidTarget is returned by Set for values that fail ValidateURL.
var ErrInvalidTarget = fmt.Errorf("target must be an absolute http or https URL")

// Store holds the single upstream target URL. It starts unset and lives in
// memory only; a restart clears it by design.
//
// Writes are mutually exclusive with reads so no request observes a torn
// value. Authorization is the caller's responsibility: the admin API gates
// Set behind the auth guard, while the forwarding engine reads freely.
type Store struct {
	mu  sync.RWMutex
	url *url.URL
}

// NewStore returns an unset target store.
func NewStore() *Store {
	return &Store{}
}

// Set validates and stores the upstream target, returning the accepted
// canonical value. Setting the same valid URL twice is an observable no-op.
func (s *Store) Set(raw string) (string, error) {
	if !ValidateURL(raw) {
		return "", ErrInvalidTarget
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidTarget
	}

	s.mu.Lock()
	s.url = u
	s.mu.Unlock()

	return u.String(), nil
}

// Get returns a snapshot of the current target, or ok=false while unset.
// The returned URL is a copy; callers may mutate it freely.
func (s *Store) Get() (u *url.URL, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.url == nil {
		return nil, false
	}
	clone := *s.url
	return &clone, true
}

// String returns the current target URL as a string, or "" while unset.
func (s *Store) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.url == nil {
		return ""
	}
	return s.url.String()
}

// IsSet reports whether a target is configured.
func (s *Store) IsSet() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url != nil
}
