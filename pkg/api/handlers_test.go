package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"switchyard-hq/spur/pkg/auth"
	"switchyard-hq/spur/pkg/credential"
	"switchyard-hq/spur/pkg/target"
)

const testToken = "secret-token-value-01"

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("response is not JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return m
}

func TestInfoHandler_Inactive(t *testing.T) {
	store := credential.NewStore()
	store.Initialize("", "")
	h := &InfoHandler{Store: store, Targets: target.NewStore()}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/info", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeMap(t, rec)
	if body["adminConfigured"] != false {
		t.Error("adminConfigured should be false")
	}
	if body["configuredTarget"] != false {
		t.Error("configuredTarget should be false")
	}
	if body["target"] != nil {
		t.Errorf("target = %v, want null", body["target"])
	}
	instructions, _ := body["instructions"].(string)
	if !strings.Contains(instructions, "ADMIN_TOKEN") {
		t.Errorf("instructions missing setup guidance: %q", instructions)
	}
}

func TestInfoHandler_ActiveWithTarget(t *testing.T) {
	store := credential.NewStore()
	store.Initialize(testToken, "")
	targets := target.NewStore()
	if _, err := targets.Set("https://example.com"); err != nil {
		t.Fatal(err)
	}
	h := &InfoHandler{Store: store, Targets: targets}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/info", nil))

	body := decodeMap(t, rec)
	if body["adminConfigured"] != true || body["configuredTarget"] != true {
		t.Errorf("body = %v", body)
	}
	if body["target"] != "https://example.com" {
		t.Errorf("target = %v", body["target"])
	}
	if body["instructions"] != nil {
		t.Errorf("instructions = %v, want null when active", body["instructions"])
	}
}

func TestConfigHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"valid target", `{"target":"https://example.com"}`, http.StatusOK, ""},
		{"relative target", `{"target":"example.com"}`, http.StatusBadRequest, CodeInvalidTarget},
		{"ftp target", `{"target":"ftp://example.com"}`, http.StatusBadRequest, CodeInvalidTarget},
		{"empty target", `{"target":""}`, http.StatusBadRequest, CodeInvalidTarget},
		{"malformed json", `{"target":`, http.StatusBadRequest, CodeInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &ConfigHandler{Targets: target.NewStore(), ProxyPath: "/p/"}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/config", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			body := decodeMap(t, rec)
			if tt.wantCode != "" {
				if body["error"] != tt.wantCode {
					t.Errorf("error = %v, want %q", body["error"], tt.wantCode)
				}
				return
			}
			if body["proxyPath"] != "/p/" {
				t.Errorf("proxyPath = %v", body["proxyPath"])
			}
			if body["target"] != "https://example.com" {
				t.Errorf("target = %v", body["target"])
			}
		})
	}
}

func TestStatusHandler(t *testing.T) {
	targets := target.NewStore()
	h := &StatusHandler{Targets: targets}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/status", nil))
	body := decodeMap(t, rec)
	if body["configured"] != false || body["target"] != nil {
		t.Errorf("unset body = %v", body)
	}

	if _, err := targets.Set("https://example.com/api"); err != nil {
		t.Fatal(err)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/status", nil))
	body = decodeMap(t, rec)
	if body["configured"] != true || body["target"] != "https://example.com/api" {
		t.Errorf("configured body = %v", body)
	}
}

func TestChangeTokenHandler(t *testing.T) {
	store := credential.NewStore()
	store.Initialize(testToken, "")
	h := &ChangeTokenHandler{Store: store}

	// Too short: rejected, old token still works.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/change-admin-token",
		strings.NewReader(`{"newToken":"short"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeMap(t, rec); body["error"] != CodeInvalidNewToken {
		t.Errorf("error = %v", body["error"])
	}
	if !store.Matches(testToken) {
		t.Error("rejected change invalidated the old token")
	}

	// Long enough: accepted, swap is immediate.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/change-admin-token",
		strings.NewReader(`{"newToken":"rotated-token-value-2"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if store.Matches(testToken) {
		t.Error("old token still matches")
	}
	if !store.Matches("rotated-token-value-2") {
		t.Error("new token does not match")
	}
}

func TestSetupHandler_FullLifecycle(t *testing.T) {
	store := credential.NewStore()
	store.Initialize("", "")
	file := credential.NewSettingsFile(filepath.Join(t.TempDir(), "spur.settings"))
	h := &SetupHandler{Store: store, Persist: file.SaveToken}

	// Too-short token rejected.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/setup",
		strings.NewReader(`{"newToken":"short"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short token status = %d", rec.Code)
	}

	// Valid provision: activates and persists.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/setup",
		strings.NewReader(`{"newToken":"provisioned-token-01"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("provision status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if !store.Matches("provisioned-token-01") {
		t.Error("provisioned token not active")
	}
	persisted, err := file.LoadToken()
	if err != nil || persisted != "provisioned-token-01" {
		t.Errorf("persisted = %q, err = %v", persisted, err)
	}

	// Second call: disabled now that a credential is active.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/setup",
		strings.NewReader(`{"newToken":"second-token-value-02"}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second setup status = %d", rec.Code)
	}
	if body := decodeMap(t, rec); body["error"] != CodeSetupDisabled {
		t.Errorf("error = %v", body["error"])
	}
}

func TestSetupHandler_DisabledWithoutPersistence(t *testing.T) {
	store := credential.NewStore()
	store.Initialize("", "")
	h := &SetupHandler{Store: store, Persist: nil}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/setup",
		strings.NewReader(`{"newToken":"provisioned-token-01"}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequireAdmin_Ordering(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		token      string // "" leaves the store inactive
		header     string
		wantStatus int
		wantCode   string
	}{
		{"inactive store", "", "Bearer whatever", http.StatusServiceUnavailable, CodeAdminTokenNotSet},
		{"missing header", testToken, "", http.StatusUnauthorized, CodeMissingToken},
		{"wrong token", testToken, "Bearer nope", http.StatusForbidden, CodeInvalidToken},
		{"correct token", testToken, "Bearer " + testToken, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := credential.NewStore()
			store.Initialize(tt.token, "")
			handler := RequireAdmin(auth.NewGuard(store), next)

			req := httptest.NewRequest("GET", "/api/status", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if body := decodeMap(t, rec); body["error"] != tt.wantCode {
					t.Errorf("error = %v, want %q", body["error"], tt.wantCode)
				}
			}
		})
	}
}

func TestNotFoundHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	(&NotFoundHandler{}).ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeMap(t, rec); body["error"] != CodeNotFound {
		t.Errorf("error = %v", body["error"])
	}
}
