package rbac

import (
	"context"
	"errors"
	"testing"
	"time"

	"materna.org/internal/audit"
)

type stubPerms struct {
	granted map[string]bool // "role/code"
}

func (s *stubPerms) GrantsPermission(_ context.Context, role RoleName, code string) bool {
	return s.granted[string(role)+"/"+code]
}

type stubObjects struct {
	allow bool
}

func (s *stubObjects) Allowed(_ context.Context, _ Actor, _ ShiftScopedRecord) bool {
	return s.allow
}

type captureRecorder struct {
	entries []audit.Entry
}

func (c *captureRecorder) Record(_ context.Context, entry audit.Entry) {
	c.entries = append(c.entries, entry)
}

type testRecord struct {
	author   string
	recorded time.Time
}

func (r testRecord) AuthorID() string     { return r.author }
func (r testRecord) RecordedAt() time.Time { return r.recorded }

func TestCheckPermissionSuperuserBypassesEverything(t *testing.T) {
	rec := &captureRecorder{}
	guard := NewGuard(&stubPerms{}, &stubObjects{}, rec)

	actor := Actor{ID: "root", Superuser: true}
	if err := guard.CheckPermission(context.Background(), actor, PermDeliveryUpdateAll); err != nil {
		t.Fatalf("expected allow, got %v", err)
	}
	if err := guard.CheckObject(context.Background(), actor, testRecord{}, "delivery", "dlv-1"); err != nil {
		t.Fatalf("expected allow, got %v", err)
	}
	if len(rec.entries) != 0 {
		t.Fatalf("superuser allow must not audit, got %d entries", len(rec.entries))
	}
}

func TestCheckPermissionUnauthenticated(t *testing.T) {
	rec := &captureRecorder{}
	guard := NewGuard(&stubPerms{}, &stubObjects{}, rec)

	err := guard.CheckPermission(context.Background(), Actor{}, PermDeliveryRead)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if errors.Is(err, ErrForbidden) {
		t.Fatal("unauthenticated must be distinct from forbidden")
	}
	if len(rec.entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(rec.entries))
	}
}

func TestCheckPermissionRolelessActorDenied(t *testing.T) {
	rec := &captureRecorder{}
	guard := NewGuard(&stubPerms{}, &stubObjects{}, rec)

	err := guard.CheckPermission(context.Background(), Actor{ID: "usr-1"}, PermDeliveryRead)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(rec.entries))
	}
}

func TestCheckPermissionMissingGrantDenied(t *testing.T) {
	perms := &stubPerms{granted: map[string]bool{
		"matrona_clinica/" + PermDeliveryRead: true,
	}}
	rec := &captureRecorder{}
	guard := NewGuard(perms, &stubObjects{}, rec)
	actor := Actor{ID: "usr-1", Role: RoleMatronaClinica}

	if err := guard.CheckPermission(context.Background(), actor, PermDeliveryRead); err != nil {
		t.Fatalf("granted code should allow, got %v", err)
	}
	err := guard.CheckPermission(context.Background(), actor, PermDeliveryUpdateAll)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if len(rec.entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(rec.entries))
	}
	entry := rec.entries[0]
	if entry.Action != audit.ActionPermissionDenied {
		t.Fatalf("unexpected action: %s", entry.Action)
	}
	if entry.Outcome != audit.OutcomeFailed {
		t.Fatalf("unexpected outcome: %s", entry.Outcome)
	}
	if entry.ActorID != "usr-1" {
		t.Fatalf("unexpected actor: %s", entry.ActorID)
	}
	if entry.Resource != "maternity:delivery" {
		t.Fatalf("unexpected resource: %s", entry.Resource)
	}
}

func TestCheckPermissionUnknownCodeUngranted(t *testing.T) {
	rec := &captureRecorder{}
	guard := NewGuard(&stubPerms{}, &stubObjects{}, rec)
	actor := Actor{ID: "usr-1", Role: RoleMedico}

	err := guard.CheckPermission(context.Background(), actor, "no:such:code")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("unknown code must deny, got %v", err)
	}
}

func TestCheckObjectSupervisorAlwaysAllowed(t *testing.T) {
	rec := &captureRecorder{}
	guard := NewGuard(&stubPerms{}, &stubObjects{allow: false}, rec)
	actor := Actor{ID: "sup-1", Role: RoleSupervisorJefe}

	if err := guard.CheckObject(context.Background(), actor, testRecord{}, "delivery", "dlv-1"); err != nil {
		t.Fatalf("supervisor must pass object checks, got %v", err)
	}
	if len(rec.entries) != 0 {
		t.Fatalf("unexpected audit entries: %d", len(rec.entries))
	}
}

func TestCheckObjectDenyAuditsOnce(t *testing.T) {
	rec := &captureRecorder{}
	guard := NewGuard(&stubPerms{}, &stubObjects{allow: false}, rec)
	actor := Actor{ID: "mat-1", Role: RoleMatronaClinica}

	err := guard.CheckObject(context.Background(), actor, testRecord{}, "delivery", "dlv-9")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(rec.entries))
	}
	entry := rec.entries[0]
	if entry.Resource != "delivery" || entry.RecordID != "dlv-9" {
		t.Fatalf("entry misses record coordinates: %+v", entry)
	}
	if entry.Action != audit.ActionPermissionDenied || entry.Outcome != audit.OutcomeFailed {
		t.Fatalf("unexpected classification: %+v", entry)
	}
}

// Scenario from the access model: a matrona holding only update_own passes
// the action-level check but is denied at the object level for a record
// another clinician authored.
func TestUpdateOwnThenObjectDenied(t *testing.T) {
	perms := &stubPerms{granted: map[string]bool{
		"matrona_clinica/" + PermDeliveryUpdateOwn: true,
	}}
	restrictions := &stubRestrictions{byActor: map[string]*ShiftRestriction{
		"mat-a": {ActorID: "mat-a", Shift: ShiftMatutino, Active: true},
	}}
	resolver := NewShiftWindowResolver(restrictions)
	rec := &captureRecorder{}
	guard := NewGuard(perms, resolver, rec)
	actor := Actor{ID: "mat-a", Role: RoleMatronaClinica}

	if err := guard.CheckPermission(context.Background(), actor, PermDeliveryUpdateOwn); err != nil {
		t.Fatalf("expected action-level allow, got %v", err)
	}

	record := testRecord{author: "mat-b", recorded: time.Now()}
	err := guard.CheckObject(context.Background(), actor, record, "delivery", "dlv-3")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected object-level deny, got %v", err)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("expected exactly one PERMISSION_DENIED entry, got %d", len(rec.entries))
	}
}
