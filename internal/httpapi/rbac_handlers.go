package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"materna.org/internal/audit"
	"materna.org/internal/rbac"
)

type grantRequest struct {
	Code string `json:"code"`
}

type permissionActiveRequest struct {
	Active bool `json:"active"`
}

type restrictionRequest struct {
	Shift      rbac.ShiftTag `json:"shift"`
	Active     bool          `json:"active"`
	ValidFrom  *time.Time    `json:"valid_from"`
	ValidUntil *time.Time    `json:"valid_until"`
}

func (a *API) handleRolesCollection(w http.ResponseWriter, r *http.Request) {
	if a.rbac == nil {
		writeError(w, r, http.StatusServiceUnavailable, "rbac service unavailable")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.protect(w, r, rbac.PermRoleManage) {
		return
	}
	roles, err := a.rbac.ListRoles(r.Context())
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": roles})
}

func (a *API) handleRoleResource(w http.ResponseWriter, r *http.Request) {
	if a.rbac == nil {
		writeError(w, r, http.StatusServiceUnavailable, "rbac service unavailable")
		return
	}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/roles/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	name := rbac.RoleName(parts[0])
	switch {
	case len(parts) == 1:
		a.getRole(w, r, name)
	case len(parts) == 2 && parts[1] == "permissions":
		a.handleRoleGrants(w, r, name)
	case len(parts) == 3 && parts[1] == "permissions":
		a.revokeGrant(w, r, name, parts[2])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) getRole(w http.ResponseWriter, r *http.Request, name rbac.RoleName) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.protect(w, r, rbac.PermRoleManage) {
		return
	}
	role, err := a.rbac.GetRole(r.Context(), name)
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	codes, err := a.rbac.RoleCodes(r.Context(), name)
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"role":        role,
		"permissions": codes,
	})
}

func (a *API) handleRoleGrants(w http.ResponseWriter, r *http.Request, name rbac.RoleName) {
	switch r.Method {
	case http.MethodGet:
		if !a.protect(w, r, rbac.PermRoleManage) {
			return
		}
		codes, err := a.rbac.RoleCodes(r.Context(), name)
		if err != nil {
			handleRBACError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": codes})
	case http.MethodPost:
		if !a.protect(w, r, rbac.PermRoleManage) {
			return
		}
		var req grantRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := a.rbac.GrantPermission(r.Context(), name, req.Code); err != nil {
			handleRBACError(w, r, err)
			return
		}
		a.audit(r.Context(), audit.Entry{
			Action:   audit.ActionUpdate,
			Resource: "core:role",
			RecordID: string(name),
			NewState: map[string]any{"granted": req.Code},
		})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) revokeGrant(w http.ResponseWriter, r *http.Request, name rbac.RoleName, code string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	if !a.protect(w, r, rbac.PermRoleManage) {
		return
	}
	if err := a.rbac.RevokePermission(r.Context(), name, code); err != nil {
		handleRBACError(w, r, err)
		return
	}
	a.audit(r.Context(), audit.Entry{
		Action:     audit.ActionUpdate,
		Resource:   "core:role",
		RecordID:   string(name),
		PriorState: map[string]any{"granted": code},
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePermissionsCollection(w http.ResponseWriter, r *http.Request) {
	if a.rbac == nil {
		writeError(w, r, http.StatusServiceUnavailable, "rbac service unavailable")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.protect(w, r, rbac.PermRoleManage) {
		return
	}
	perms, err := a.rbac.ListPermissions(r.Context())
	if err != nil {
		handleRBACError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": perms})
}

func (a *API) handlePermissionResource(w http.ResponseWriter, r *http.Request) {
	if a.rbac == nil {
		writeError(w, r, http.StatusServiceUnavailable, "rbac service unavailable")
		return
	}
	code := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/permissions/"), "/")
	if code == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}
	if !a.protect(w, r, rbac.PermRoleManage) {
		return
	}
	var req permissionActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.rbac.SetPermissionActive(r.Context(), code, req.Active); err != nil {
		handleRBACError(w, r, err)
		return
	}
	a.audit(r.Context(), audit.Entry{
		Action:   audit.ActionUpdate,
		Resource: "core:permission",
		RecordID: code,
		NewState: map[string]any{"active": req.Active},
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleRestrictionResource(w http.ResponseWriter, r *http.Request) {
	if a.rbac == nil {
		writeError(w, r, http.StatusServiceUnavailable, "rbac service unavailable")
		return
	}
	actorID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/restrictions/"), "/")
	if actorID == "" || strings.Contains(actorID, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		if !a.protect(w, r, rbac.PermUserManage) {
			return
		}
		restriction, err := a.rbac.RestrictionForActor(r.Context(), actorID)
		if err != nil {
			handleRBACError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, restriction)
	case http.MethodPut:
		if !a.protect(w, r, rbac.PermUserManage) {
			return
		}
		var req restrictionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		in := rbac.ShiftRestriction{
			ActorID: actorID,
			Shift:   req.Shift,
			Active:  req.Active,
		}
		if req.ValidFrom != nil {
			in.ValidFrom = req.ValidFrom.UTC()
		}
		if req.ValidUntil != nil {
			in.ValidUntil = req.ValidUntil.UTC()
		}
		saved, err := a.rbac.UpsertRestriction(r.Context(), in)
		if err != nil {
			handleRBACError(w, r, err)
			return
		}
		a.audit(r.Context(), audit.Entry{
			Action:   audit.ActionUpdate,
			Resource: "core:shift_restriction",
			RecordID: actorID,
			NewState: map[string]any{
				"shift":  string(saved.Shift),
				"active": saved.Active,
			},
		})
		writeJSON(w, http.StatusOK, saved)
	case http.MethodDelete:
		if !a.protect(w, r, rbac.PermUserManage) {
			return
		}
		if err := a.rbac.DeleteRestriction(r.Context(), actorID); err != nil {
			handleRBACError(w, r, err)
			return
		}
		a.audit(r.Context(), audit.Entry{
			Action:   audit.ActionDelete,
			Resource: "core:shift_restriction",
			RecordID: actorID,
		})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func handleRBACError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, rbac.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, rbac.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, rbac.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "rbac operation failed")
	}
}
