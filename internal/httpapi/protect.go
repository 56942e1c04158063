package httpapi

import (
	"errors"
	"net/http"

	"materna.org/internal/rbac"
)

// protect enforces the action-level permission for the request. It resolves
// the actor from the request context, so unauthenticated callers are denied
// here rather than reaching the handler body.
func (a *API) protect(w http.ResponseWriter, r *http.Request, code string) bool {
	actor, _ := rbac.ActorFromContext(r.Context())
	err := a.guard.CheckPermission(r.Context(), actor, code)
	if err == nil {
		return true
	}
	writeGuardError(w, r, err)
	return false
}

// protectObject enforces the object-level shift check on a specific record.
func (a *API) protectObject(w http.ResponseWriter, r *http.Request, rec rbac.ShiftScopedRecord, resource, recordID string) bool {
	actor, _ := rbac.ActorFromContext(r.Context())
	err := a.guard.CheckObject(r.Context(), actor, rec, resource, recordID)
	if err == nil {
		return true
	}
	writeGuardError(w, r, err)
	return false
}

// deliveryUpdateCode resolves which update permission the actor must hold.
// The clinical role keeps update_own and must additionally pass the object
// check; every other path requires the unrestricted code.
func deliveryUpdateCode(actor rbac.Actor) (code string, objectCheck bool) {
	if actor.Role == rbac.RoleMatronaClinica {
		return rbac.PermDeliveryUpdateOwn, true
	}
	return rbac.PermDeliveryUpdateAll, false
}

func writeGuardError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, rbac.ErrUnauthenticated):
		writeError(w, r, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, rbac.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "permission denied")
	default:
		writeError(w, r, http.StatusInternalServerError, "authorization error")
	}
}
