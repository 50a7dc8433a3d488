package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"switchyard-hq/spur/pkg/auth"
	"switchyard-hq/spur/pkg/credential"
	"switchyard-hq/spur/pkg/target"
)

// maxAdminBodyBytes bounds admin request bodies. Admin payloads are a
// single URL or token; anything larger is malformed.
const maxAdminBodyBytes = 1 << 20

// setupInstructions is returned by /api/info while no credential is
// active, so the UI can walk the operator through provisioning.
const setupInstructions = "No admin token is configured. Set the ADMIN_TOKEN environment variable and " +
	"restart, or POST /api/setup with {\"newToken\": \"<at least 16 characters>\"} to provision one."

// InfoHandler serves GET /api/info: the public, unauthenticated snapshot
// of whether an admin credential is active and whether a target is set.
type InfoHandler struct {
	Store   *credential.Store
	Targets *target.Store
}

// InfoResponse is the /api/info response body.
type InfoResponse struct {
	AdminConfigured  bool    `json:"adminConfigured"`
	ConfiguredTarget bool    `json:"configuredTarget"`
	Target           *string `json:"target"`
	Instructions     *string `json:"instructions"`
}

// ServeHTTP implements http.Handler.
func (h *InfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusNotFound, CodeNotFound, "not found")
		return
	}

	resp := InfoResponse{
		AdminConfigured:  h.Store.IsActive(),
		ConfiguredTarget: h.Targets.IsSet(),
	}
	if t := h.Targets.String(); t != "" {
		resp.Target = &t
	}
	if !resp.AdminConfigured {
		instructions := setupInstructions
		resp.Instructions = &instructions
	}

	WriteJSON(w, http.StatusOK, resp)
}

// ConfigHandler serves POST /api/config: sets the upstream target.
// Must be mounted behind RequireAdmin.
type ConfigHandler struct {
	Targets *target.Store

	// ProxyPath is echoed back so the UI can show where to point clients.
	ProxyPath string
}

// ServeHTTP implements http.Handler.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusNotFound, CodeNotFound, "not found")
		return
	}

	var body struct {
		Target string `json:"target"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		return
	}

	accepted, err := h.Targets.Set(body.Target)
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidTarget,
			"target must be an absolute http or https URL")
		return
	}

	slog.Info("upstream target configured", "target", accepted)
	WriteJSON(w, http.StatusOK, map[string]string{
		"message":   "target configured",
		"proxyPath": h.ProxyPath,
		"target":    accepted,
	})
}

// StatusHandler serves GET /api/status: the authorized view of the
// configured target. Must be mounted behind RequireAdmin.
type StatusHandler struct {
	Targets *target.Store
}

// StatusResponse is the /api/status response body.
type StatusResponse struct {
	Configured bool    `json:"configured"`
	Target     *string `json:"target"`
}

// ServeHTTP implements http.Handler.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusNotFound, CodeNotFound, "not found")
		return
	}

	resp := StatusResponse{Configured: h.Targets.IsSet()}
	if t := h.Targets.String(); t != "" {
		resp.Target = &t
	}
	WriteJSON(w, http.StatusOK, resp)
}

// ChangeTokenHandler serves POST /api/change-admin-token: replaces the
// admin credential in memory. Must be mounted behind RequireAdmin.
type ChangeTokenHandler struct {
	Store *credential.Store
}

// ServeHTTP implements http.Handler.
func (h *ChangeTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusNotFound, CodeNotFound, "not found")
		return
	}

	var body struct {
		NewToken string `json:"newToken"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		return
	}

	previous, err := h.Store.Replace(body.NewToken)
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidNewToken, err.Error())
		return
	}

	slog.Info("admin token replaced", "previous_provenance", previous.String())
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "admin token updated",
		"note":    "the new token is held in memory only; a restart reverts to the startup credential",
	})
}

// SetupHandler serves POST /api/setup: one-shot provisioning of an admin
// credential while the store is inactive. Unauthenticated by necessity —
// there is no credential to authenticate with yet — and disabled the
// moment one is active.
type SetupHandler struct {
	Store *credential.Store

	// Persist durably stores the provisioned token for the next startup.
	// Nil disables the endpoint entirely.
	Persist credential.PersistFunc
}

// ServeHTTP implements http.Handler.
func (h *SetupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusNotFound, CodeNotFound, "not found")
		return
	}
	if h.Persist == nil || h.Store.IsActive() {
		WriteError(w, http.StatusNotFound, CodeSetupDisabled, "setup is not available")
		return
	}

	var body struct {
		NewToken string `json:"newToken"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		return
	}

	if err := h.Store.Provision(body.NewToken, h.Persist); err != nil {
		switch err {
		case credential.ErrTokenTooShort:
			WriteError(w, http.StatusBadRequest, CodeInvalidNewToken, err.Error())
		case credential.ErrAlreadyActive:
			WriteError(w, http.StatusNotFound, CodeSetupDisabled, "setup is not available")
		default:
			slog.Error("failed to persist provisioned token", "error", err)
			WriteError(w, http.StatusInternalServerError, CodeSetupFailed,
				"token activated but could not be persisted")
		}
		return
	}

	slog.Info("admin token provisioned via setup")
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "admin token provisioned",
	})
}

// NotFoundHandler answers unmatched routes with the JSON 404 envelope.
type NotFoundHandler struct{}

// ServeHTTP implements http.Handler.
func (h *NotFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, CodeNotFound, "not found")
}

// RequireAdmin wraps a handler with the auth gate. Failures are written as
// the standard envelope with the guard's status and code.
func RequireAdmin(guard *auth.Guard, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authErr := guard.AuthorizeRequest(r); authErr != nil {
			slog.Warn("admin request rejected",
				"code", authErr.Code,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			WriteError(w, authErr.Status, authErr.Code, authErr.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decodeBody decodes a JSON request body, writing the invalid_json
// envelope and returning an error when it cannot.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxAdminBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidJSON, "request body must be valid JSON")
		return err
	}
	return nil
}
