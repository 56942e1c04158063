package audit

import (
	"context"
	"time"

	"materna.org/internal/ids"
	"materna.org/internal/obs"
)

// Recorder persists entries on a best-effort basis. A failed write is logged
// on the operational channel and counted, but never surfaced to the caller:
// audit must not abort the operation it describes.
type Recorder struct {
	store Store
	now   func() time.Time
}

// RecorderOption configures Recorder behavior.
type RecorderOption func(*Recorder)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if fn != nil {
			r.now = fn
		}
	}
}

// NewRecorder constructs a Recorder over the given store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends one entry. Client details attached to the context fill the
// IP and user-agent fields unless the entry already carries them.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now().UTC()
	}
	if entry.Outcome == "" {
		entry.Outcome = OutcomeSuccess
	}
	if info, ok := ClientInfoFromContext(ctx); ok {
		if entry.ClientIP == "" {
			entry.ClientIP = info.IP
		}
		if entry.UserAgent == "" {
			entry.UserAgent = info.UserAgent
		}
	}

	if err := r.store.Append(ctx, &entry); err != nil {
		obs.IncAuditWriteFailure()
		obs.LogError("audit append failed", map[string]any{
			"action":   string(entry.Action),
			"resource": entry.Resource,
			"error":    err.Error(),
		})
	}
}

// List serves the compliance read surface.
func (r *Recorder) List(ctx context.Context, f Filter) ([]Entry, error) {
	return r.store.List(ctx, f)
}
