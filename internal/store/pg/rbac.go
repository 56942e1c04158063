package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"materna.org/internal/ids"
	"materna.org/internal/rbac"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

var (
	_ rbac.RoleStore        = (*Store)(nil)
	_ rbac.PermissionStore  = (*Store)(nil)
	_ rbac.GrantStore       = (*Store)(nil)
	_ rbac.RestrictionStore = (*Store)(nil)
)

func (s *Store) EnsureRole(ctx context.Context, role rbac.Role) (bool, error) {
	if s.db == nil {
		return false, errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		insert into roles (id, name, description)
		values ($1, $2, $3)
		on conflict (name) do nothing
	`, ids.New(), role.Name, nullIfEmpty(role.Description))
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff > 0, nil
}

func (s *Store) FindRole(ctx context.Context, name rbac.RoleName) (*rbac.Role, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	var (
		role rbac.Role
		desc sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		select id, name, description, created_at, updated_at
		from roles
		where name = $1
	`, name).Scan(&role.ID, &role.Name, &desc, &role.CreatedAt, &role.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rbac.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		role.Description = desc.String
	}
	return &role, nil
}

func (s *Store) ListRoles(ctx context.Context) ([]rbac.Role, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, name, description, created_at, updated_at
		from roles
		order by name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []rbac.Role
	for rows.Next() {
		var (
			role rbac.Role
			desc sql.NullString
		)
		if err := rows.Scan(&role.ID, &role.Name, &desc, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			role.Description = desc.String
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *Store) DeleteRole(ctx context.Context, name rbac.RoleName) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from roles where name = $1`, name)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return rbac.ErrConflict
		}
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return rbac.ErrNotFound
	}
	return nil
}

func (s *Store) EnsurePermissions(ctx context.Context, perms []rbac.Permission) (int, error) {
	if s.db == nil {
		return 0, errors.New("database connection unavailable")
	}
	created := 0
	for _, p := range perms {
		res, err := s.db.ExecContext(ctx, `
			insert into permissions (id, code, name, description, area, active)
			values ($1, $2, $3, $4, $5, $6)
			on conflict (code) do nothing
		`, ids.New(), p.Code, p.Name, nullIfEmpty(p.Description), p.Area, p.Active)
		if err != nil {
			return created, err
		}
		aff, err := res.RowsAffected()
		if err != nil {
			return created, err
		}
		if aff > 0 {
			created++
		}
	}
	return created, nil
}

func (s *Store) ListPermissions(ctx context.Context) ([]rbac.Permission, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, code, name, description, area, active, created_at
		from permissions
		order by code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []rbac.Permission
	for rows.Next() {
		var (
			p    rbac.Permission
			desc sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &desc, &p.Area, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			p.Description = desc.String
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

func (s *Store) SetPermissionActive(ctx context.Context, code string, active bool) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		update permissions set active = $2 where code = $1
	`, code, active)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return rbac.ErrNotFound
	}
	return nil
}

func (s *Store) Grant(ctx context.Context, role rbac.RoleName, code string) (bool, error) {
	if s.db == nil {
		return false, errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		insert into role_permissions (role_id, permission_id)
		select r.id, p.id
		from roles r, permissions p
		where r.name = $1 and p.code = $2
		on conflict (role_id, permission_id) do nothing
	`, role, code)
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if aff > 0 {
		return true, nil
	}
	// Distinguish "already granted" from "role or permission missing".
	var exists int
	err = s.db.QueryRowContext(ctx, `
		select 1
		from role_permissions rp
		join roles r on r.id = rp.role_id
		join permissions p on p.id = rp.permission_id
		where r.name = $1 and p.code = $2
	`, role, code).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, rbac.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

func (s *Store) Revoke(ctx context.Context, role rbac.RoleName, code string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		delete from role_permissions rp
		using roles r, permissions p
		where rp.role_id = r.id and rp.permission_id = p.id
		  and r.name = $1 and p.code = $2
	`, role, code)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return rbac.ErrNotFound
	}
	return nil
}

func (s *Store) CodesForRole(ctx context.Context, role rbac.RoleName) ([]string, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select p.code
		from role_permissions rp
		join roles r on r.id = rp.role_id
		join permissions p on p.id = rp.permission_id
		where r.name = $1
		order by p.code
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}

func (s *Store) RoleHasPermission(ctx context.Context, role rbac.RoleName, code string) (bool, error) {
	if s.db == nil {
		return false, errors.New("database connection unavailable")
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `
		select 1
		from role_permissions rp
		join roles r on r.id = rp.role_id
		join permissions p on p.id = rp.permission_id
		where r.name = $1 and p.code = $2 and p.active
	`, role, code).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) UpsertRestriction(ctx context.Context, r *rbac.ShiftRestriction) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	var validUntil sql.NullTime
	if !r.ValidUntil.IsZero() {
		validUntil = sql.NullTime{Time: r.ValidUntil, Valid: true}
	}
	row := s.db.QueryRowContext(ctx, `
		insert into shift_restrictions (actor_id, shift, active, valid_from, valid_until)
		values ($1, $2, $3, $4, $5)
		on conflict (actor_id) do update
		set shift = excluded.shift,
		    active = excluded.active,
		    valid_from = excluded.valid_from,
		    valid_until = excluded.valid_until,
		    updated_at = now()
		returning created_at, updated_at
	`, r.ActorID, r.Shift, r.Active, r.ValidFrom, validUntil)
	return row.Scan(&r.CreatedAt, &r.UpdatedAt)
}

func (s *Store) RestrictionByActor(ctx context.Context, actorID string) (*rbac.ShiftRestriction, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	var (
		r          rbac.ShiftRestriction
		validUntil sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		select actor_id, shift, active, valid_from, valid_until, created_at, updated_at
		from shift_restrictions
		where actor_id = $1
	`, actorID).Scan(&r.ActorID, &r.Shift, &r.Active, &r.ValidFrom, &validUntil, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rbac.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if validUntil.Valid {
		r.ValidUntil = validUntil.Time
	}
	return &r, nil
}

func (s *Store) DeleteRestriction(ctx context.Context, actorID string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from shift_restrictions where actor_id = $1`, actorID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return rbac.ErrNotFound
	}
	return nil
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func nullIfEmpty(s string) sql.NullString {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
