package api

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON envelope for every error the server emits.
// Error is a stable machine-readable code; Message is for humans. Raw
// internal errors are never sent without this wrapping.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Stable machine-readable error codes.
const (
	// CodeAdminTokenNotSet means no admin credential is active (503).
	CodeAdminTokenNotSet = "admin_token_not_set"

	// CodeMissingToken means the request carried no credential (401).
	CodeMissingToken = "missing_token"

	// CodeInvalidToken means the supplied credential did not match (403).
	CodeInvalidToken = "invalid_token"

	// CodeInvalidTarget means the proposed target URL failed validation (400).
	CodeInvalidTarget = "invalid_target"

	// CodeInvalidNewToken means a replacement token failed validation (400).
	CodeInvalidNewToken = "invalid_new_token"

	// CodeInvalidJSON means the request body was not valid JSON (400).
	CodeInvalidJSON = "invalid_json"

	// CodeNoTargetConfigured means forwarding was attempted before a
	// target was set (404).
	CodeNoTargetConfigured = "no_target_configured"

	// CodeProxyError means the upstream relay failed in transport (502).
	CodeProxyError = "proxy_error"

	// CodeSetupDisabled means /api/setup was called while a credential is
	// already active or persistence is unavailable (404).
	CodeSetupDisabled = "setup_disabled"

	// CodeSetupFailed means provisioning could not be persisted (500).
	CodeSetupFailed = "setup_failed"

	// CodeNotFound means no route matched (404).
	CodeNotFound = "not_found"

	// CodeInternalError means an unexpected server failure (500).
	CodeInternalError = "internal_error"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding errors at this point mean the client is gone; there is
	// nothing useful left to do with the connection.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the standard error envelope with the given status.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{Error: code, Message: message})
}
