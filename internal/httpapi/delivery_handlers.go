package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"materna.org/internal/audit"
	"materna.org/internal/maternity"
	"materna.org/internal/rbac"
)

type createDeliveryRequest struct {
	MotherID         string     `json:"mother_id"`
	DeliveryType     string     `json:"delivery_type"`
	GestationalWeeks int        `json:"gestational_weeks"`
	RobsonGroup      int        `json:"robson_group"`
	Notes            string     `json:"notes"`
	OccurredAt       *time.Time `json:"occurred_at"`
}

func (a *API) handleDeliveriesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createDelivery(w, r)
	case http.MethodGet:
		a.listDeliveries(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleDeliveryResource(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/deliveries/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.getDelivery(w, r, id)
	case http.MethodPut:
		a.updateDelivery(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) createDelivery(w http.ResponseWriter, r *http.Request) {
	if !a.protect(w, r, rbac.PermDeliveryCreate) {
		return
	}
	var req createDeliveryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())

	in := maternity.Delivery{
		MotherID:         req.MotherID,
		DeliveryType:     req.DeliveryType,
		GestationalWeeks: req.GestationalWeeks,
		RobsonGroup:      req.RobsonGroup,
		Notes:            req.Notes,
	}
	if req.OccurredAt != nil {
		in.OccurredAt = req.OccurredAt.UTC()
	}
	d, err := a.deliveries.Create(r.Context(), in, actor.ID)
	if err != nil {
		handleDeliveryError(w, r, err)
		return
	}

	a.audit(r.Context(), audit.Entry{
		Action:   audit.ActionCreate,
		Resource: "maternity:delivery",
		RecordID: d.ID,
		NewState: d.Snapshot(),
	})
	w.Header().Set("Location", "/v1/deliveries/"+d.ID)
	writeJSON(w, http.StatusCreated, d)
}

func (a *API) getDelivery(w http.ResponseWriter, r *http.Request, id string) {
	if !a.protect(w, r, rbac.PermDeliveryRead) {
		return
	}
	d, err := a.deliveries.Find(r.Context(), id)
	if err != nil {
		handleDeliveryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) listDeliveries(w http.ResponseWriter, r *http.Request) {
	if !a.protect(w, r, rbac.PermDeliveryRead) {
		return
	}
	motherID := strings.TrimSpace(r.URL.Query().Get("mother_id"))
	if motherID == "" {
		writeError(w, r, http.StatusBadRequest, "mother_id query parameter is required")
		return
	}
	limit, err := parsePositiveInt(r.URL.Query().Get("limit"), 50, 1, 500)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, err := a.deliveries.List(r.Context(), motherID, limit)
	if err != nil {
		handleDeliveryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"as_of": time.Now().UTC(),
	})
}

// updateDelivery runs the two-stage authorization: the action-level code
// depends on the actor's role, and holders of update_own must additionally
// pass the shift check against the stored record before any field changes.
func (a *API) updateDelivery(w http.ResponseWriter, r *http.Request, id string) {
	actor, _ := rbac.ActorFromContext(r.Context())
	code, objectCheck := deliveryUpdateCode(actor)
	if !a.protect(w, r, code) {
		return
	}

	prior, err := a.deliveries.Find(r.Context(), id)
	if err != nil {
		handleDeliveryError(w, r, err)
		return
	}
	if objectCheck && !a.protectObject(w, r, prior, "maternity:delivery", id) {
		return
	}

	var upd maternity.Update
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := a.deliveries.Apply(r.Context(), *prior, upd)
	if err != nil {
		handleDeliveryError(w, r, err)
		return
	}

	a.audit(r.Context(), audit.Entry{
		Action:     audit.ActionUpdate,
		Resource:   "maternity:delivery",
		RecordID:   id,
		PriorState: prior.Snapshot(),
		NewState:   updated.Snapshot(),
	})
	writeJSON(w, http.StatusOK, updated)
}

func handleDeliveryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, maternity.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, maternity.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// --- shared helpers ---

func parsePositiveInt(raw string, def, min, max int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	if val < min || val > max {
		return 0, errors.New("limit out of range")
	}
	return val, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
