package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"materna.org/internal/audit"
	"materna.org/internal/rbac"
)

func createTestDelivery(t *testing.T, env *testEnv, authz string) string {
	t.Helper()
	rec := doRequest(env, http.MethodPost, "/v1/deliveries", authz,
		`{"mother_id":"mom-1","delivery_type":"vaginal","gestational_weeks":39}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body.ID
}

func TestCreateDeliveryRecordsAudit(t *testing.T) {
	env := newTestAPI(t)
	authz := bearerFor(t, "mat-1", rbac.RoleMatronaClinica, false)

	id := createTestDelivery(t, env, authz)
	if id == "" {
		t.Fatal("expected delivery id")
	}

	creates := env.trail.byAction(audit.ActionCreate)
	if len(creates) != 1 {
		t.Fatalf("expected one CREATE entry, got %d", len(creates))
	}
	e := creates[0]
	if e.ActorID != "mat-1" || e.RecordID != id {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
	if e.NewState["delivery_type"] != "vaginal" {
		t.Fatalf("new state not captured: %+v", e.NewState)
	}
	if e.Outcome != audit.OutcomeSuccess {
		t.Fatalf("unexpected outcome: %s", e.Outcome)
	}
}

func TestCreateDeliveryRequiresPermission(t *testing.T) {
	env := newTestAPI(t)
	// medico holds delivery:read and update_all but not create
	authz := bearerFor(t, "med-1", rbac.RoleMedico, false)

	rec := doRequest(env, http.MethodPost, "/v1/deliveries", authz,
		`{"mother_id":"mom-1","delivery_type":"vaginal","gestational_weeks":39}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	denials := env.trail.byAction(audit.ActionPermissionDenied)
	if len(denials) != 1 {
		t.Fatalf("expected exactly one denial entry, got %d", len(denials))
	}
	if denials[0].ActorID != "med-1" {
		t.Fatalf("unexpected denial actor: %s", denials[0].ActorID)
	}
}

func TestUpdateDeliveryUnauthenticated(t *testing.T) {
	env := newTestAPI(t)
	authz := bearerFor(t, "mat-1", rbac.RoleMatronaClinica, false)
	id := createTestDelivery(t, env, authz)

	rec := doRequest(env, http.MethodPut, "/v1/deliveries/"+id, "",
		`{"notes":"updated"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMatronaUpdatesOwnRecord(t *testing.T) {
	env := newTestAPI(t)
	authz := bearerFor(t, "mat-1", rbac.RoleMatronaClinica, false)
	id := createTestDelivery(t, env, authz)

	rec := doRequest(env, http.MethodPut, "/v1/deliveries/"+id, authz,
		`{"delivery_type":"cesarea"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updates := env.trail.byAction(audit.ActionUpdate)
	if len(updates) != 1 {
		t.Fatalf("expected one UPDATE entry, got %d", len(updates))
	}
	e := updates[0]
	if e.PriorState["delivery_type"] != "vaginal" || e.NewState["delivery_type"] != "cesarea" {
		t.Fatalf("state snapshots missing: prior=%v new=%v", e.PriorState, e.NewState)
	}
}

func TestMatronaDeniedOnForeignRecord(t *testing.T) {
	env := newTestAPI(t)
	author := bearerFor(t, "mat-1", rbac.RoleMatronaClinica, false)
	id := createTestDelivery(t, env, author)

	// Restricted second matrona tries to edit a record authored by mat-1.
	env.restrictions.byActor = map[string]*rbac.ShiftRestriction{
		"mat-2": {ActorID: "mat-2", Shift: rbac.ShiftMatutino, Active: true},
	}
	other := bearerFor(t, "mat-2", rbac.RoleMatronaClinica, false)
	rec := doRequest(env, http.MethodPut, "/v1/deliveries/"+id, other,
		`{"delivery_type":"cesarea"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}

	denials := env.trail.byAction(audit.ActionPermissionDenied)
	if len(denials) != 1 {
		t.Fatalf("expected exactly one denial entry, got %d", len(denials))
	}
	e := denials[0]
	if e.ActorID != "mat-2" || e.RecordID != id {
		t.Fatalf("unexpected denial entry: %+v", e)
	}
	if e.Outcome != audit.OutcomeFailed {
		t.Fatalf("unexpected outcome: %s", e.Outcome)
	}

	// The record itself is untouched.
	if env.trail.byAction(audit.ActionUpdate) != nil {
		t.Fatal("no UPDATE entry expected for a denied mutation")
	}
}

func TestMedicoUpdatesAnyRecordWithoutShiftCheck(t *testing.T) {
	env := newTestAPI(t)
	author := bearerFor(t, "mat-1", rbac.RoleMatronaClinica, false)
	id := createTestDelivery(t, env, author)

	medico := bearerFor(t, "med-1", rbac.RoleMedico, false)
	rec := doRequest(env, http.MethodPut, "/v1/deliveries/"+id, medico,
		`{"gestational_weeks":38}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSuperuserBypassesEverything(t *testing.T) {
	env := newTestAPI(t)
	author := bearerFor(t, "mat-1", rbac.RoleMatronaClinica, false)
	id := createTestDelivery(t, env, author)

	root := bearerFor(t, "root", "", true)
	rec := doRequest(env, http.MethodPut, "/v1/deliveries/"+id, root,
		`{"notes":"revisado"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuditListRequiresCompliancePermission(t *testing.T) {
	env := newTestAPI(t)
	author := bearerFor(t, "mat-1", rbac.RoleMatronaClinica, false)
	createTestDelivery(t, env, author)

	// enfermero lacks compliance:audit:read
	nurse := bearerFor(t, "enf-1", rbac.RoleEnfermero, false)
	rec := doRequest(env, http.MethodGet, "/v1/audit", nurse, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	supervisor := bearerFor(t, "sup-1", rbac.RoleSupervisorJefe, false)
	rec = doRequest(env, http.MethodGet, "/v1/audit?action=CREATE", supervisor, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Items []audit.Entry `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].Action != audit.ActionCreate {
		t.Fatalf("unexpected audit items: %+v", body.Items)
	}
}

func TestDeliveryNotFound(t *testing.T) {
	env := newTestAPI(t)
	authz := bearerFor(t, "med-1", rbac.RoleMedico, false)
	rec := doRequest(env, http.MethodGet, "/v1/deliveries/missing", authz, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
