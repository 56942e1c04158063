package rbac

import (
	"context"
	"testing"
)

type memRoles struct {
	byName map[RoleName]Role
}

func (m *memRoles) EnsureRole(_ context.Context, role Role) (bool, error) {
	if m.byName == nil {
		m.byName = make(map[RoleName]Role)
	}
	if _, ok := m.byName[role.Name]; ok {
		return false, nil
	}
	m.byName[role.Name] = role
	return true, nil
}

func (m *memRoles) FindRole(_ context.Context, name RoleName) (*Role, error) {
	r, ok := m.byName[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *memRoles) ListRoles(_ context.Context) ([]Role, error) {
	out := make([]Role, 0, len(m.byName))
	for _, r := range m.byName {
		out = append(out, r)
	}
	return out, nil
}

func (m *memRoles) DeleteRole(_ context.Context, name RoleName) error {
	delete(m.byName, name)
	return nil
}

type memPerms struct {
	byCode map[string]Permission
}

func (m *memPerms) EnsurePermissions(_ context.Context, perms []Permission) (int, error) {
	if m.byCode == nil {
		m.byCode = make(map[string]Permission)
	}
	created := 0
	for _, p := range perms {
		if _, ok := m.byCode[p.Code]; ok {
			continue
		}
		m.byCode[p.Code] = p
		created++
	}
	return created, nil
}

func (m *memPerms) ListPermissions(_ context.Context) ([]Permission, error) {
	out := make([]Permission, 0, len(m.byCode))
	for _, p := range m.byCode {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPerms) SetPermissionActive(_ context.Context, code string, active bool) error {
	p, ok := m.byCode[code]
	if !ok {
		return ErrNotFound
	}
	p.Active = active
	m.byCode[code] = p
	return nil
}

type memGrants struct {
	pairs map[string]bool // "role/code"
	perms *memPerms
}

func (m *memGrants) Grant(_ context.Context, role RoleName, code string) (bool, error) {
	if m.pairs == nil {
		m.pairs = make(map[string]bool)
	}
	key := string(role) + "/" + code
	if m.pairs[key] {
		return false, nil
	}
	m.pairs[key] = true
	return true, nil
}

func (m *memGrants) Revoke(_ context.Context, role RoleName, code string) error {
	delete(m.pairs, string(role)+"/"+code)
	return nil
}

func (m *memGrants) CodesForRole(_ context.Context, role RoleName) ([]string, error) {
	prefix := string(role) + "/"
	var out []string
	for key := range m.pairs {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, key[len(prefix):])
		}
	}
	return out, nil
}

func (m *memGrants) RoleHasPermission(_ context.Context, role RoleName, code string) (bool, error) {
	if !m.pairs[string(role)+"/"+code] {
		return false, nil
	}
	if m.perms != nil {
		p, ok := m.perms.byCode[code]
		if !ok || !p.Active {
			return false, nil
		}
	}
	return true, nil
}

func builtinGrantCount() int {
	n := 0
	for _, codes := range BuiltinGrants {
		n += len(codes)
	}
	return n
}

func TestSeederFirstRunCreatesEverything(t *testing.T) {
	seeder := NewSeeder(&memRoles{}, &memPerms{}, &memGrants{})

	res, err := seeder.Run(context.Background())
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if res.Permissions != len(BuiltinPermissions) {
		t.Errorf("permissions created: got %d, want %d", res.Permissions, len(BuiltinPermissions))
	}
	if res.Roles != len(BuiltinRoles) {
		t.Errorf("roles created: got %d, want %d", res.Roles, len(BuiltinRoles))
	}
	if res.Grants != builtinGrantCount() {
		t.Errorf("grants created: got %d, want %d", res.Grants, builtinGrantCount())
	}
}

func TestSeederRerunIsIdempotent(t *testing.T) {
	seeder := NewSeeder(&memRoles{}, &memPerms{}, &memGrants{})
	if _, err := seeder.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	res, err := seeder.Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if res.Permissions != 0 || res.Roles != 0 || res.Grants != 0 {
		t.Fatalf("second run must create nothing, got %+v", res)
	}
}

func TestSeededCatalogUpdateAsymmetry(t *testing.T) {
	perms := &memPerms{}
	grants := &memGrants{perms: perms}
	seeder := NewSeeder(&memRoles{}, perms, grants)
	if _, err := seeder.Run(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	catalog := NewCatalog(grants)
	ctx := context.Background()

	cases := []struct {
		role RoleName
		code string
		want bool
	}{
		{RoleMatronaClinica, PermDeliveryUpdateOwn, true},
		{RoleMatronaClinica, PermDeliveryUpdateAll, false},
		{RoleSupervisorJefe, PermDeliveryUpdateAll, true},
		{RoleMedico, PermDeliveryUpdateAll, true},
		{RoleMedico, PermDeliveryCreate, false},
		{RoleEnfermero, PermNewbornUpdateImmediate, true},
		{RoleEnfermero, PermDeliveryCreate, false},
		{RoleAdministrativo, PermMotherCreate, true},
		{RoleAdministrativo, PermAuditRead, false},
		{RoleSupervisorJefe, PermAuditRead, true},
	}
	for _, tc := range cases {
		if got := catalog.GrantsPermission(ctx, tc.role, tc.code); got != tc.want {
			t.Errorf("%s / %s: got %v, want %v", tc.role, tc.code, got, tc.want)
		}
	}
}

func TestCatalogDeactivatedPermissionNotSatisfied(t *testing.T) {
	perms := &memPerms{}
	grants := &memGrants{perms: perms}
	seeder := NewSeeder(&memRoles{}, perms, grants)
	ctx := context.Background()
	if _, err := seeder.Run(ctx); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := perms.SetPermissionActive(ctx, PermDeliveryRead, false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	catalog := NewCatalog(grants)
	if catalog.GrantsPermission(ctx, RoleMedico, PermDeliveryRead) {
		t.Fatal("deactivated permission must not be satisfied even where granted")
	}
}
