package httpapi

import (
	"net/http"
	"strings"
	"time"

	"materna.org/internal/audit"
	"materna.org/internal/rbac"
)

// handleAuditList serves the compliance read surface. Entries come back
// newest first; the trail itself is append-only.
func (a *API) handleAuditList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.protect(w, r, rbac.PermAuditRead) {
		return
	}

	q := r.URL.Query()
	f := audit.Filter{
		ActorID:  strings.TrimSpace(q.Get("actor_id")),
		Action:   audit.Action(strings.TrimSpace(q.Get("action"))),
		Resource: strings.TrimSpace(q.Get("resource")),
	}
	var err error
	if f.Limit, err = parsePositiveInt(q.Get("limit"), 100, 1, 1000); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "from must be RFC 3339")
			return
		}
		f.From = t
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "to must be RFC 3339")
			return
		}
		f.To = t
	}

	entries, err := a.recorder.List(r.Context(), f)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "audit query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": entries,
		"as_of": time.Now().UTC(),
	})
}
