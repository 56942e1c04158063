package httpapi

import (
	"net/http"
	"strings"
	"time"

	"materna.org/internal/audit"
	"materna.org/internal/rbac"
)

type loginRequest struct {
	ActorID   string `json:"actor_id"`
	Role      string `json:"role"`
	Superuser bool   `json:"superuser"`
}

// handleLogin issues a short-lived token for local and staging use. Session
// events land in the audit trail either way; production deployments put the
// identity provider in front and this endpoint behind it.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.ActorID = strings.TrimSpace(req.ActorID)
	if req.ActorID == "" {
		writeError(w, r, http.StatusBadRequest, "actor_id is required")
		return
	}
	role := rbac.RoleName(strings.TrimSpace(strings.ToLower(req.Role)))
	if role != "" && !rbac.KnownRole(role) {
		writeError(w, r, http.StatusBadRequest, "unknown role")
		return
	}

	token, err := rbac.GenerateToken(req.ActorID, role, req.Superuser, 8*time.Hour)
	if err != nil {
		a.audit(r.Context(), audit.Entry{
			ActorID:     req.ActorID,
			Action:      audit.ActionLogin,
			Resource:    "core:session",
			Outcome:     audit.OutcomeFailed,
			Description: "token issuance failed",
		})
		writeError(w, r, http.StatusInternalServerError, "token issuance failed")
		return
	}

	a.audit(r.Context(), audit.Entry{
		ActorID:  req.ActorID,
		Action:   audit.ActionLogin,
		Resource: "core:session",
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"token_type": "Bearer",
		"expires_in": int((8 * time.Hour).Seconds()),
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	actor, ok := rbac.ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	a.audit(r.Context(), audit.Entry{
		ActorID:  actor.ID,
		Action:   audit.ActionLogout,
		Resource: "core:session",
	})
	w.WriteHeader(http.StatusNoContent)
}
