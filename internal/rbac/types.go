package rbac

import "time"

// RoleName is the closed set of clinical roles. The authorization path never
// invents roles; administration only instantiates members of this set.
type RoleName string

const (
	RoleMatronaClinica RoleName = "matrona_clinica"
	RoleSupervisorJefe RoleName = "supervisor_jefe"
	RoleMedico         RoleName = "medico"
	RoleEnfermero      RoleName = "enfermero"
	RoleAdministrativo RoleName = "administrativo"
)

// KnownRole reports whether name belongs to the closed role set.
func KnownRole(name RoleName) bool {
	switch name {
	case RoleMatronaClinica, RoleSupervisorJefe, RoleMedico, RoleEnfermero, RoleAdministrativo:
		return true
	}
	return false
}

// Role groups permissions. Roles are seeded administratively and protected
// against deletion while actors still reference them.
type Role struct {
	ID          string    `json:"id"`
	Name        RoleName  `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission is one grantable capability identified by a unique
// area:resource:action code. Inactive permissions are never satisfied even
// when granted.
type Permission struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Area        string    `json:"area"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Grant links a role to a permission, unique per pair.
type Grant struct {
	RoleID       string    `json:"role_id"`
	PermissionID string    `json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor is the authenticated caller as supplied by the identity collaborator.
// A zero ID means the request carried no authenticated identity.
type Actor struct {
	ID        string   `json:"id"`
	Role      RoleName `json:"role,omitempty"`
	Superuser bool     `json:"superuser,omitempty"`
}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool { return a.ID != "" }

// ShiftTag identifies one of the three fixed 8-hour working bands.
type ShiftTag string

const (
	ShiftMatutino   ShiftTag = "MATUTINO"
	ShiftVespertino ShiftTag = "VESPERTINO"
	ShiftNocturno   ShiftTag = "NOCTURNO"
)

// KnownShift reports whether tag is one of the fixed bands.
func KnownShift(tag ShiftTag) bool {
	switch tag {
	case ShiftMatutino, ShiftVespertino, ShiftNocturno:
		return true
	}
	return false
}

// ShiftRestriction binds an actor to a working-shift window. At most one row
// exists per actor; administration replaces it in place rather than keeping
// history.
type ShiftRestriction struct {
	ActorID    string    `json:"actor_id"`
	Shift      ShiftTag  `json:"shift"`
	Active     bool      `json:"active"`
	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until,omitempty"` // zero means open-ended
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InEffect reports whether the restriction is active and its validity range
// covers the given instant. Validity is compared at date granularity.
func (r ShiftRestriction) InEffect(at time.Time) bool {
	if !r.Active {
		return false
	}
	day := dateOf(at)
	if !r.ValidFrom.IsZero() && day.Before(dateOf(r.ValidFrom)) {
		return false
	}
	if !r.ValidUntil.IsZero() && day.After(dateOf(r.ValidUntil)) {
		return false
	}
	return true
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
