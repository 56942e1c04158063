package rbac

import (
	"context"
	"fmt"
	"strings"

	"materna.org/internal/audit"
	"materna.org/internal/obs"
)

// PermissionSource answers action-level lookups (satisfied by Catalog).
type PermissionSource interface {
	GrantsPermission(ctx context.Context, role RoleName, code string) bool
}

// ObjectResolver answers object-level lookups (satisfied by
// ShiftWindowResolver).
type ObjectResolver interface {
	Allowed(ctx context.Context, actor Actor, rec ShiftScopedRecord) bool
}

// DenialRecorder receives the audit entry produced for every deny.
type DenialRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Guard is the authorization entry point. It is a pure yes/no oracle: the
// required permission code for an operation is resolved by the caller and
// passed in explicitly.
type Guard struct {
	perms    PermissionSource
	objects  ObjectResolver
	recorder DenialRecorder
}

// NewGuard constructs a Guard.
func NewGuard(perms PermissionSource, objects ObjectResolver, recorder DenialRecorder) *Guard {
	return &Guard{perms: perms, objects: objects, recorder: recorder}
}

// CheckPermission decides whether actor may perform the operation requiring
// code. Rules in order: unauthenticated deny, superuser bypass, roleless
// deny, catalog lookup. Every deny records exactly one PERMISSION_DENIED
// audit entry before returning.
func (g *Guard) CheckPermission(ctx context.Context, actor Actor, code string) error {
	if !actor.Authenticated() {
		g.deny(ctx, "permission", actor, resourceFromCode(code), "",
			fmt.Sprintf("unauthenticated access to %s", code))
		return ErrUnauthenticated
	}
	if actor.Superuser {
		obs.ObserveAuthzDecision("permission", "allow")
		return nil
	}
	if actor.Role == "" {
		g.deny(ctx, "permission", actor, resourceFromCode(code), "",
			fmt.Sprintf("access denied to %s: actor has no role", code))
		return ErrForbidden
	}
	if g.perms.GrantsPermission(ctx, actor.Role, code) {
		obs.ObserveAuthzDecision("permission", "allow")
		return nil
	}
	g.deny(ctx, "permission", actor, resourceFromCode(code), "",
		fmt.Sprintf("access denied to %s", code))
	return ErrForbidden
}

// CheckObject decides whether actor may mutate the specific record. It is
// invoked only for operations the caller classified as shift-scoped
// mutations; superusers and the supervisory role always pass.
func (g *Guard) CheckObject(ctx context.Context, actor Actor, rec ShiftScopedRecord, resource, recordID string) error {
	if !actor.Authenticated() {
		g.deny(ctx, "object", actor, resource, recordID, "unauthenticated object access")
		return ErrUnauthenticated
	}
	if actor.Superuser || actor.Role == RoleSupervisorJefe {
		obs.ObserveAuthzDecision("object", "allow")
		return nil
	}
	if g.objects.Allowed(ctx, actor, rec) {
		obs.ObserveAuthzDecision("object", "allow")
		return nil
	}
	g.deny(ctx, "object", actor, resource, recordID, "record outside actor's shift window")
	return ErrForbidden
}

func (g *Guard) deny(ctx context.Context, check string, actor Actor, resource, recordID, description string) {
	obs.ObserveAuthzDecision(check, "deny")
	g.recorder.Record(ctx, audit.Entry{
		ActorID:     actor.ID,
		Action:      audit.ActionPermissionDenied,
		Resource:    resource,
		RecordID:    recordID,
		Outcome:     audit.OutcomeFailed,
		Description: description,
	})
}

// resourceFromCode extracts the area:resource prefix of a permission code so
// denial entries name the affected resource.
func resourceFromCode(code string) string {
	parts := strings.Split(strings.TrimSpace(code), ":")
	if len(parts) < 2 {
		return strings.TrimSpace(code)
	}
	return strings.Join(parts[:len(parts)-1], ":")
}
