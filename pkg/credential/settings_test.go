package credential

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSettingsFile_LoadTokenMissingFile(t *testing.T) {
	file := NewSettingsFile(filepath.Join(t.TempDir(), "spur.settings"))

	token, err := file.LoadToken()
	if err != nil {
		t.Fatalf("LoadToken failed for missing file: %v", err)
	}
	if token != "" {
		t.Errorf("token = %q, want empty", token)
	}
}

func TestSettingsFile_SaveAndLoad(t *testing.T) {
	file := NewSettingsFile(filepath.Join(t.TempDir(), "spur.settings"))

	if err := file.SaveToken("persisted-token-value-1"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}

	token, err := file.LoadToken()
	if err != nil {
		t.Fatalf("LoadToken failed: %v", err)
	}
	if token != "persisted-token-value-1" {
		t.Errorf("token = %q", token)
	}
}

func TestSettingsFile_SavePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spur.settings")
	file := NewSettingsFile(path)

	if err := file.SaveToken("persisted-token-value-1"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("settings file mode = %o, want 0600", perm)
	}
}

func TestSettingsFile_PreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spur.settings")
	seed := "# spur settings\ntheme=dark\nadmin_token=old-token-value-000\n"
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}

	file := NewSettingsFile(path)
	if err := file.SaveToken("new-token-value-11111"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "theme=dark") {
		t.Error("unrelated key dropped on save")
	}
	if !strings.Contains(content, "admin_token=new-token-value-11111") {
		t.Errorf("token not updated, content:\n%s", content)
	}
	if strings.Contains(content, "old-token-value-000") {
		t.Error("old token still present after save")
	}
}

func TestSettingsFile_LoadIgnoresCommentsAndBlanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spur.settings")
	seed := "\n# comment\n  \nadmin_token =  spaced-token-value-2 \nnot a pair\n"
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}

	token, err := NewSettingsFile(path).LoadToken()
	if err != nil {
		t.Fatal(err)
	}
	if token != "spaced-token-value-2" {
		t.Errorf("token = %q", token)
	}
}
