package rbac

import (
	"context"
	"fmt"
)

// SeedResult counts rows created by one seeding run. A second run against an
// unchanged catalog reports all zeros.
type SeedResult struct {
	Permissions int
	Roles       int
	Grants      int
}

// Seeder installs the builtin permission catalog, the clinical roles, and the
// role-grant table with get-or-create semantics per unique key.
type Seeder struct {
	roles  RoleStore
	perms  PermissionStore
	grants GrantStore
}

// NewSeeder constructs a Seeder.
func NewSeeder(roles RoleStore, perms PermissionStore, grants GrantStore) *Seeder {
	return &Seeder{roles: roles, perms: perms, grants: grants}
}

// Run seeds permissions, then roles, then grants. Each step is idempotent, so
// a partially failed run can simply be repeated.
func (s *Seeder) Run(ctx context.Context) (SeedResult, error) {
	var res SeedResult

	created, err := s.perms.EnsurePermissions(ctx, BuiltinPermissions)
	if err != nil {
		return res, fmt.Errorf("seed permissions: %w", err)
	}
	res.Permissions = created

	for _, role := range BuiltinRoles {
		ok, err := s.roles.EnsureRole(ctx, role)
		if err != nil {
			return res, fmt.Errorf("seed role %s: %w", role.Name, err)
		}
		if ok {
			res.Roles++
		}
	}

	for _, role := range BuiltinRoles {
		for _, code := range BuiltinGrants[role.Name] {
			ok, err := s.grants.Grant(ctx, role.Name, code)
			if err != nil {
				return res, fmt.Errorf("seed grant %s -> %s: %w", role.Name, code, err)
			}
			if ok {
				res.Grants++
			}
		}
	}
	return res, nil
}
