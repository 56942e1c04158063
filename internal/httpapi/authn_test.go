package httpapi

import (
	"net/http"
	"testing"

	"materna.org/internal/rbac"
)

func TestInvalidTokenRejected(t *testing.T) {
	env := newTestAPI(t)
	rec := doRequest(env, http.MethodGet, "/v1/deliveries/dlv-1", "Bearer not-a-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestWrongSchemeRejected(t *testing.T) {
	env := newTestAPI(t)
	rec := doRequest(env, http.MethodGet, "/v1/deliveries/dlv-1", "Basic dXNlcjpwYXNz", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPublicPathsSkipAuthentication(t *testing.T) {
	env := newTestAPI(t)
	for _, path := range []string{"/healthz", "/readyz", "/v1/info", "/metrics"} {
		rec := doRequest(env, http.MethodGet, path, "Bearer garbage", "")
		if rec.Code == http.StatusUnauthorized {
			t.Errorf("%s must not require authentication", path)
		}
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	env := newTestAPI(t)
	rec := doRequest(env, http.MethodPost, "/v1/session/login", "",
		`{"actor_id":"mat-1","role":"matrona_clinica"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	logins := env.trail.byAction("LOGIN")
	if len(logins) != 1 {
		t.Fatalf("expected one LOGIN entry, got %d", len(logins))
	}
	if logins[0].ActorID != "mat-1" {
		t.Fatalf("unexpected login actor: %s", logins[0].ActorID)
	}
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	env := newTestAPI(t)
	rec := doRequest(env, http.MethodPost, "/v1/session/login", "",
		`{"actor_id":"x-1","role":"celador"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogoutRequiresAuthentication(t *testing.T) {
	env := newTestAPI(t)
	rec := doRequest(env, http.MethodPost, "/v1/session/logout", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	authz := bearerFor(t, "mat-1", rbac.RoleMatronaClinica, false)
	rec = doRequest(env, http.MethodPost, "/v1/session/logout", authz, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	logouts := env.trail.byAction("LOGOUT")
	if len(logouts) != 1 {
		t.Fatalf("expected one LOGOUT entry, got %d", len(logouts))
	}
}
