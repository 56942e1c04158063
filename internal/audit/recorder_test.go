package audit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memStore struct {
	entries []Entry
	err     error
}

func (m *memStore) Append(_ context.Context, entry *Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memStore) List(_ context.Context, _ Filter) ([]Entry, error) {
	return m.entries, nil
}

func TestRecordFillsDefaults(t *testing.T) {
	store := &memStore{}
	fixed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rec := NewRecorder(store, WithClock(func() time.Time { return fixed }))

	ctx := WithClientInfo(context.Background(), "10.0.0.7", "test-agent")
	rec.Record(ctx, Entry{
		ActorID:  "usr-1",
		Action:   ActionUpdate,
		Resource: "delivery",
		RecordID: "dlv-9",
	})

	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}
	got := store.entries[0]
	if got.ID == "" {
		t.Fatal("expected generated id")
	}
	if !got.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected created_at: %v", got.CreatedAt)
	}
	if got.Outcome != OutcomeSuccess {
		t.Fatalf("unexpected outcome: %s", got.Outcome)
	}
	if got.ClientIP != "10.0.0.7" || got.UserAgent != "test-agent" {
		t.Fatalf("client info not copied: %+v", got)
	}
}

func TestRecordDoesNotOverrideExplicitClientInfo(t *testing.T) {
	store := &memStore{}
	rec := NewRecorder(store)

	ctx := WithClientInfo(context.Background(), "10.0.0.7", "ctx-agent")
	rec.Record(ctx, Entry{
		Action:    ActionLogin,
		Resource:  "session",
		ClientIP:  "192.168.1.1",
		UserAgent: "explicit-agent",
	})

	got := store.entries[0]
	if got.ClientIP != "192.168.1.1" || got.UserAgent != "explicit-agent" {
		t.Fatalf("explicit client info was overridden: %+v", got)
	}
}

func TestRecordSwallowsStoreFailure(t *testing.T) {
	store := &memStore{err: errors.New("connection refused")}
	rec := NewRecorder(store)

	// Must not panic and must not propagate the store error.
	rec.Record(context.Background(), Entry{
		Action:   ActionPermissionDenied,
		Resource: "delivery",
		Outcome:  OutcomeFailed,
	})
}
