package rbac

import (
	"context"
	"errors"
	"time"

	"materna.org/internal/obs"
)

// ShiftScopedRecord is implemented once per record type subject to the
// object-level check. AuthorID returns the registering clinician, or empty
// when authorship was never captured; RecordedAt is the creation timestamp
// used as the fallback.
type ShiftScopedRecord interface {
	AuthorID() string
	RecordedAt() time.Time
}

// Shift clock windows, half-open [start, end). VESPERTINO runs up to but not
// including midnight; a record stamped exactly 00:00 belongs to NOCTURNO.
var shiftWindows = map[ShiftTag][2]time.Duration{
	ShiftMatutino:   {8 * time.Hour, 16 * time.Hour},
	ShiftVespertino: {16 * time.Hour, 24 * time.Hour},
	ShiftNocturno:   {0, 8 * time.Hour},
}

// ShiftWindowResolver decides whether a shift-restricted actor may mutate a
// specific record.
type ShiftWindowResolver struct {
	restrictions RestrictionStore
	now          func() time.Time
}

// ResolverOption configures ShiftWindowResolver.
type ResolverOption func(*ShiftWindowResolver)

// WithResolverClock overrides the time source (useful for tests).
func WithResolverClock(fn func() time.Time) ResolverOption {
	return func(r *ShiftWindowResolver) {
		if fn != nil {
			r.now = fn
		}
	}
}

// NewShiftWindowResolver constructs a resolver over the restriction store.
func NewShiftWindowResolver(restrictions RestrictionStore, opts ...ResolverOption) *ShiftWindowResolver {
	r := &ShiftWindowResolver{restrictions: restrictions, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Allowed evaluates the object-level rule set in order: supervisory bypass,
// role gate, restriction lookup, authorship, then the time-window fallback.
// Authorship always wins over the time comparison when the record carries it.
func (r *ShiftWindowResolver) Allowed(ctx context.Context, actor Actor, rec ShiftScopedRecord) bool {
	if actor.Superuser || actor.Role == RoleSupervisorJefe {
		return true
	}
	if actor.Role != RoleMatronaClinica {
		// Other roles have no "own shift" pathway; they must hold update_all.
		return false
	}

	restriction, err := r.restrictions.RestrictionByActor(ctx, actor.ID)
	if errors.Is(err, ErrNotFound) {
		// No restriction on file means unrestricted.
		return true
	}
	if err != nil {
		obs.LogError("shift restriction lookup failed", map[string]any{
			"actor": actor.ID,
			"error": err.Error(),
		})
		return false
	}

	now := r.now()
	if !restriction.InEffect(now) {
		return true
	}

	if author := rec.AuthorID(); author != "" {
		return author == actor.ID
	}

	window, ok := shiftWindows[restriction.Shift]
	if !ok {
		// Unrecognized tags resolve to an empty window, denying by default.
		return false
	}
	created := rec.RecordedAt().In(now.Location())
	if !sameDate(created, now) {
		return false
	}
	elapsed := time.Duration(created.Hour())*time.Hour +
		time.Duration(created.Minute())*time.Minute +
		time.Duration(created.Second())*time.Second
	return elapsed >= window[0] && elapsed < window[1]
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
