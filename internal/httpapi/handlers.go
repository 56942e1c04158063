package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"materna.org/internal/audit"
	"materna.org/internal/maternity"
	"materna.org/internal/obs"
	"materna.org/internal/rbac"
)

// ReadyProbe checks the backing store before the service reports ready.
type ReadyProbe interface {
	Ping(ctx context.Context) error
}

// API is the HTTP layer. All clinical routes run behind bearer
// authentication and the authorization guard.
type API struct {
	mux        *http.ServeMux
	ready      ReadyProbe
	version    string
	guard      *rbac.Guard
	recorder   *audit.Recorder
	rbac       *rbac.Service
	deliveries *maternity.Service
}

// Config wires the API dependencies.
type Config struct {
	Ready      ReadyProbe
	Version    string
	Guard      *rbac.Guard
	Recorder   *audit.Recorder
	RBAC       *rbac.Service
	Deliveries *maternity.Service
}

func New(cfg Config) *API {
	a := &API{
		mux:        http.NewServeMux(),
		ready:      cfg.Ready,
		version:    cfg.Version,
		guard:      cfg.Guard,
		recorder:   cfg.Recorder,
		rbac:       cfg.RBAC,
		deliveries: cfg.Deliveries,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// session
	a.mux.HandleFunc("/v1/session/login", a.handleLogin)
	a.mux.HandleFunc("/v1/session/logout", a.handleLogout)

	// rbac administration
	a.mux.HandleFunc("/v1/roles", a.handleRolesCollection)
	a.mux.HandleFunc("/v1/roles/", a.handleRoleResource)
	a.mux.HandleFunc("/v1/permissions", a.handlePermissionsCollection)
	a.mux.HandleFunc("/v1/permissions/", a.handlePermissionResource)
	a.mux.HandleFunc("/v1/restrictions/", a.handleRestrictionResource)

	// clinical records
	a.mux.HandleFunc("/v1/deliveries", a.handleDeliveriesCollection)
	a.mux.HandleFunc("/v1/deliveries/", a.handleDeliveryResource)

	// compliance
	a.mux.HandleFunc("/v1/audit", a.handleAuditList)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler: metrics, security headers,
// request id, logging, then authentication inside.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	h = SecurityHeaders(h)
	h = MaxBodyBytes(h, 1<<20)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "materna-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if a.ready != nil {
		if err := a.ready.Ping(r.Context()); err != nil {
			obs.SetReady(false)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "materna-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// audit records a successful state change. Denials are recorded by the guard;
// this path covers the handler side of the trail.
func (a *API) audit(ctx context.Context, entry audit.Entry) {
	if a.recorder == nil {
		return
	}
	if actor, ok := rbac.ActorFromContext(ctx); ok && entry.ActorID == "" {
		entry.ActorID = actor.ID
	}
	a.recorder.Record(ctx, entry)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
