package credential

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
)

// Provenance records how the active admin credential was obtained.
type Provenance int

const (
	// Unset means no credential is active; admin-gated operations fail closed.
	Unset Provenance = iota

	// Environment means the credential came from the ADMIN_TOKEN variable.
	Environment

	// FileFallback means the credential came from the settings file or the
	// baked-in fallback constant.
	FileFallback

	// RuntimeOverride means the credential was replaced through the admin
	// API while the process was running.
	RuntimeOverride
)

// String returns the provenance name for logging.
func (p Provenance) String() string {
	switch p {
	case Unset:
		return "unset"
	case Environment:
		return "environment"
	case FileFallback:
		return "file-fallback"
	case RuntimeOverride:
		return "runtime-override"
	default:
		return fmt.Sprintf("provenance(%d)", int(p))
	}
}

// MinTokenLength is the minimum accepted length for a replacement or
// provisioned admin token.
const MinTokenLength = 16

// DefaultFallbackToken is the baked-in credential used by file-fallback
// mode when neither the environment nor the settings file provides one.
// It is deliberately well-known. See the package documentation for the
// trade-off; deployments that need real security must use strict mode.
const DefaultFallbackToken = "spur-local-admin-token"

// ErrTokenTooShort is returned when a proposed token is shorter than
// MinTokenLength.
var ErrTokenTooShort = fmt.Errorf("token must be at least %d characters", MinTokenLength)

// ErrAlreadyActive is returned by Provision when a credential is already
// active; provisioning is a one-shot operation for the inactive state.
var ErrAlreadyActive = errors.New("credential already active")

// PersistFunc durably stores a provisioned token for the next startup.
// The store itself never touches the filesystem; persistence is injected
// by the caller (normally SettingsFile.SaveToken).
type PersistFunc func(token string) error

// Store holds the current admin credential and its provenance.
//
// Reads and the timing-safe comparison take a read lock; Replace,
// Provision, and ApplyFileUpdate are mutually exclusive with reads so no
// request ever observes a torn value.
type Store struct {
	mu         sync.RWMutex
	value      string
	provenance Provenance
}

// NewStore returns an inactive store.
func NewStore() *Store {
	return &Store{}
}

// Initialize sets the credential at process start. The environment value
// wins when present and non-empty; otherwise the fallback value is used
// when non-empty (file-fallback mode passes the settings-file token or the
// baked-in constant, the other modes pass ""); otherwise the store stays
// inactive.
func (s *Store) Initialize(envValue, fallbackValue string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case envValue != "":
		s.value = envValue
		s.provenance = Environment
	case fallbackValue != "":
		s.value = fallbackValue
		s.provenance = FileFallback
	default:
		s.value = ""
		s.provenance = Unset
	}
}

// Current returns the credential value, its provenance, and whether the
// store is active.
func (s *Store) Current() (value string, provenance Provenance, active bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.provenance, s.provenance != Unset
}

// IsActive reports whether a credential is active.
func (s *Store) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provenance != Unset
}

// Matches compares the candidate against the current credential in
// constant time. It returns false unconditionally while the store is
// inactive.
func (s *Store) Matches(candidate string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.provenance == Unset {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(s.value)) == 1
}

// Replace swaps in a new credential with RuntimeOverride provenance and
// returns the previous provenance for the caller's audit log. The change
// is deliberately not durable: a restart reverts to the Initialize result
// unless the caller also persists the token.
func (s *Store) Replace(proposed string) (Provenance, error) {
	if len(proposed) < MinTokenLength {
		return Unset, ErrTokenTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.provenance
	s.value = proposed
	s.provenance = RuntimeOverride
	return previous, nil
}

// Provision activates a credential while the store is inactive and
// persists it through the supplied hook. It fails with ErrAlreadyActive
// when a credential is already in place; rotation of an active credential
// goes through Replace instead.
func (s *Store) Provision(proposed string, persist PersistFunc) error {
	if len(proposed) < MinTokenLength {
		return ErrTokenTooShort
	}

	s.mu.Lock()
	if s.provenance != Unset {
		s.mu.Unlock()
		return ErrAlreadyActive
	}
	s.value = proposed
	s.provenance = RuntimeOverride
	s.mu.Unlock()

	if persist == nil {
		return nil
	}
	return persist(proposed)
}

// ApplyFileUpdate applies a token read from the settings file. It only
// takes effect while the store is inactive or holding a file-provided
// credential: environment and runtime-override credentials outrank the
// file and are never clobbered by an edit. Returns whether the update was
// applied.
func (s *Store) ApplyFileUpdate(token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.provenance != Unset && s.provenance != FileFallback {
		return false
	}
	s.value = token
	s.provenance = FileFallback
	return true
}
