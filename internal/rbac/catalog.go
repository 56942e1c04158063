package rbac

import (
	"context"
	"strings"

	"materna.org/internal/obs"
)

// Catalog answers whether a role currently grants a permission code. Lookups
// go against committed state at call time; there is no cross-request cache.
type Catalog struct {
	grants GrantStore
}

// NewCatalog constructs a Catalog over the grant store.
func NewCatalog(grants GrantStore) *Catalog {
	return &Catalog{grants: grants}
}

// GrantsPermission reports whether role holds an active permission with the
// given code. Absence of a grant, an unknown code, or a configuration read
// failure all yield false; this method never errors.
func (c *Catalog) GrantsPermission(ctx context.Context, role RoleName, code string) bool {
	code = strings.TrimSpace(code)
	if role == "" || code == "" {
		return false
	}
	ok, err := c.grants.RoleHasPermission(ctx, role, code)
	if err != nil {
		obs.LogError("permission lookup failed", map[string]any{
			"role":  string(role),
			"code":  code,
			"error": err.Error(),
		})
		return false
	}
	return ok
}
