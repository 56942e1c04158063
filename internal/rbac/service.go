package rbac

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service provides the administrative surface over the RBAC configuration:
// role grants and shift restrictions. The authorization path itself only
// reads this configuration.
type Service struct {
	roles        RoleStore
	perms        PermissionStore
	grants       GrantStore
	restrictions RestrictionStore
}

// NewService constructs the administrative service.
func NewService(roles RoleStore, perms PermissionStore, grants GrantStore, restrictions RestrictionStore) (*Service, error) {
	if roles == nil || perms == nil || grants == nil || restrictions == nil {
		return nil, fmt.Errorf("%w: all stores are required", ErrInvalidInput)
	}
	return &Service{roles: roles, perms: perms, grants: grants, restrictions: restrictions}, nil
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.roles.ListRoles(ctx)
}

func (s *Service) GetRole(ctx context.Context, name RoleName) (*Role, error) {
	if !KnownRole(name) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, name)
	}
	return s.roles.FindRole(ctx, name)
}

func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.perms.ListPermissions(ctx)
}

// SetPermissionActive toggles a permission. Deactivating a code immediately
// stops it from being satisfied even where granted.
func (s *Service) SetPermissionActive(ctx context.Context, code string, active bool) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: permission code is required", ErrInvalidInput)
	}
	return s.perms.SetPermissionActive(ctx, code, active)
}

// GrantPermission links a permission to a role; granting twice is a no-op.
func (s *Service) GrantPermission(ctx context.Context, role RoleName, code string) error {
	if !KnownRole(role) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: permission code is required", ErrInvalidInput)
	}
	_, err := s.grants.Grant(ctx, role, code)
	return err
}

func (s *Service) RevokePermission(ctx context.Context, role RoleName, code string) error {
	if !KnownRole(role) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: permission code is required", ErrInvalidInput)
	}
	return s.grants.Revoke(ctx, role, code)
}

func (s *Service) RoleCodes(ctx context.Context, role RoleName) ([]string, error) {
	if !KnownRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	return s.grants.CodesForRole(ctx, role)
}

// UpsertRestriction installs or replaces the single shift restriction row for
// an actor.
func (s *Service) UpsertRestriction(ctx context.Context, r ShiftRestriction) (ShiftRestriction, error) {
	r.ActorID = strings.TrimSpace(r.ActorID)
	if r.ActorID == "" {
		return ShiftRestriction{}, fmt.Errorf("%w: actor_id is required", ErrInvalidInput)
	}
	if !KnownShift(r.Shift) {
		return ShiftRestriction{}, fmt.Errorf("%w: unknown shift %q", ErrInvalidInput, r.Shift)
	}
	if r.ValidFrom.IsZero() {
		r.ValidFrom = time.Now().UTC()
	}
	if !r.ValidUntil.IsZero() && r.ValidUntil.Before(r.ValidFrom) {
		return ShiftRestriction{}, fmt.Errorf("%w: valid_until precedes valid_from", ErrInvalidInput)
	}
	if err := s.restrictions.UpsertRestriction(ctx, &r); err != nil {
		return ShiftRestriction{}, err
	}
	return r, nil
}

func (s *Service) RestrictionForActor(ctx context.Context, actorID string) (*ShiftRestriction, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, fmt.Errorf("%w: actor_id is required", ErrInvalidInput)
	}
	return s.restrictions.RestrictionByActor(ctx, actorID)
}

func (s *Service) DeleteRestriction(ctx context.Context, actorID string) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return fmt.Errorf("%w: actor_id is required", ErrInvalidInput)
	}
	return s.restrictions.DeleteRestriction(ctx, actorID)
}
