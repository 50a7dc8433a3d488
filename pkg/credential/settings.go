package credential

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// tokenKey is the settings-file key holding the admin credential.
const tokenKey = "admin_token"

// SettingsFile reads and writes the key-value settings file that persists
// a provisioned admin credential across restarts.
//
// The format is one "key=value" pair per line; blank lines and lines
// starting with "#" are ignored. The file is written with mode 0600 and
// replaced atomically via a temp file and rename. It holds a secret and
// belongs in .gitignore, never in version control.
type SettingsFile struct {
	Path string
}

// NewSettingsFile returns a settings file handle for the given path.
func NewSettingsFile(path string) *SettingsFile {
	return &SettingsFile{Path: path}
}

// LoadToken returns the stored admin token, or "" when the file or the
// key is absent. A missing file is not an error.
func (f *SettingsFile) LoadToken() (string, error) {
	pairs, err := f.load()
	if err != nil {
		return "", err
	}
	return pairs[tokenKey], nil
}

// SaveToken writes the admin token to the settings file, preserving any
// other keys already present.
func (f *SettingsFile) SaveToken(token string) error {
	pairs, err := f.load()
	if err != nil {
		return err
	}
	pairs[tokenKey] = token
	return f.save(pairs)
}

// load parses the settings file into a key-value map. Returns an empty
// map when the file does not exist.
func (f *SettingsFile) load() (map[string]string, error) {
	pairs := make(map[string]string)

	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return pairs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %q: %w", f.Path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		pairs[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return pairs, nil
}

// save writes the key-value map atomically with restrictive permissions.
func (f *SettingsFile) save(pairs map[string]string) error {
	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&sb, "%s=%s\n", key, pairs[key])
	}

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, ".spur-settings-*")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set settings file permissions: %w", err)
	}
	if _, err := tmp.WriteString(sb.String()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close settings file: %w", err)
	}

	if err := os.Rename(tmpPath, f.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace settings file %q: %w", f.Path, err)
	}
	return nil
}
