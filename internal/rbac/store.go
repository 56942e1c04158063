package rbac

import "context"

// RoleStore manages the role catalog.
type RoleStore interface {
	EnsureRole(ctx context.Context, role Role) (created bool, err error)
	FindRole(ctx context.Context, name RoleName) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	// DeleteRole fails with ErrConflict while actors still reference the role.
	DeleteRole(ctx context.Context, name RoleName) error
}

// PermissionStore manages the permission catalog.
type PermissionStore interface {
	EnsurePermissions(ctx context.Context, perms []Permission) (created int, err error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	SetPermissionActive(ctx context.Context, code string, active bool) error
}

// GrantStore manages role-permission links and answers catalog lookups.
type GrantStore interface {
	// Grant is idempotent: granting an existing pair reports created=false
	// and never produces a second row.
	Grant(ctx context.Context, role RoleName, code string) (created bool, err error)
	Revoke(ctx context.Context, role RoleName, code string) error
	CodesForRole(ctx context.Context, role RoleName) ([]string, error)
	// RoleHasPermission is true iff an active permission with the given code
	// is granted to the role. Unknown roles and codes yield false.
	RoleHasPermission(ctx context.Context, role RoleName, code string) (bool, error)
}

// RestrictionStore manages per-actor shift restrictions (one row per actor).
type RestrictionStore interface {
	UpsertRestriction(ctx context.Context, r *ShiftRestriction) error
	RestrictionByActor(ctx context.Context, actorID string) (*ShiftRestriction, error)
	DeleteRestriction(ctx context.Context, actorID string) error
}
