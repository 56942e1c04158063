package audit

import (
	"context"
	"time"
)

// Action classifies what an audit entry records.
type Action string

const (
	ActionCreate           Action = "CREATE"
	ActionUpdate           Action = "UPDATE"
	ActionDelete           Action = "DELETE"
	ActionRead             Action = "READ"
	ActionLogin            Action = "LOGIN"
	ActionLogout           Action = "LOGOUT"
	ActionPermissionDenied Action = "PERMISSION_DENIED"
)

// Outcome records whether the audited action succeeded.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailed  Outcome = "FAILED"
)

// Entry is one immutable record of an authorization outcome or state change.
// Entries are created once and never revisited; the store exposes no update
// or delete operation, and the schema revokes both at the database level.
type Entry struct {
	ID          string         `json:"id"`
	ActorID     string         `json:"actor_id,omitempty"` // empty for pre-authentication events
	Action      Action         `json:"action"`
	Resource    string         `json:"resource"`
	RecordID    string         `json:"record_id,omitempty"`
	PriorState  map[string]any `json:"prior_state,omitempty"` // UPDATE/DELETE only
	NewState    map[string]any `json:"new_state,omitempty"`   // CREATE/UPDATE only
	ClientIP    string         `json:"client_ip,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	Outcome     Outcome        `json:"outcome"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Filter narrows audit queries for the compliance surface.
type Filter struct {
	ActorID  string
	Action   Action
	Resource string
	From     time.Time
	To       time.Time
	Limit    int
}

// Store appends immutable entries and serves compliance reads.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, f Filter) ([]Entry, error)
}
