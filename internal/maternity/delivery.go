package maternity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("delivery not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Delivery types accepted at registration time.
const (
	DeliveryVaginal  = "vaginal"
	DeliveryCesarea  = "cesarea"
	DeliveryForceps  = "forceps"
	DeliveryVentouse = "ventosa"
)

func knownDeliveryType(t string) bool {
	switch t {
	case DeliveryVaginal, DeliveryCesarea, DeliveryForceps, DeliveryVentouse:
		return true
	}
	return false
}

// Delivery is a birth event record. RecordedBy is the registering clinician
// and RegisteredAt the creation timestamp; together they anchor the
// object-level authorization check for shift-restricted editors.
type Delivery struct {
	ID               string    `json:"id"`
	MotherID         string    `json:"mother_id"`
	RecordedBy       string    `json:"recorded_by"`
	DeliveryType     string    `json:"delivery_type"`
	GestationalWeeks int       `json:"gestational_weeks"`
	RobsonGroup      int       `json:"robson_group,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
	RegisteredAt     time.Time `json:"registered_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AuthorID reports the registering clinician.
func (d Delivery) AuthorID() string { return d.RecordedBy }

// RecordedAt reports when the record entered the system.
func (d Delivery) RecordedAt() time.Time { return d.RegisteredAt }

// Snapshot renders the mutable clinical fields for audit capture.
func (d Delivery) Snapshot() map[string]any {
	return map[string]any{
		"mother_id":         d.MotherID,
		"delivery_type":     d.DeliveryType,
		"gestational_weeks": d.GestationalWeeks,
		"robson_group":      d.RobsonGroup,
		"notes":             d.Notes,
		"occurred_at":       d.OccurredAt.UTC().Format(time.RFC3339),
	}
}

// Update carries the fields a PUT may change. Nil means leave unchanged.
type Update struct {
	DeliveryType     *string `json:"delivery_type,omitempty"`
	GestationalWeeks *int    `json:"gestational_weeks,omitempty"`
	RobsonGroup      *int    `json:"robson_group,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// Store persists deliveries.
type Store interface {
	InsertDelivery(ctx context.Context, d *Delivery) error
	FindDelivery(ctx context.Context, id string) (*Delivery, error)
	UpdateDelivery(ctx context.Context, d *Delivery) error
	ListDeliveries(ctx context.Context, motherID string, limit int) ([]Delivery, error)
}

// Service validates and persists delivery records.
type Service struct {
	store Store
	now   func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service over the given store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new delivery authored by recordedBy.
func (s *Service) Create(ctx context.Context, d Delivery, recordedBy string) (*Delivery, error) {
	d.MotherID = strings.TrimSpace(d.MotherID)
	if d.MotherID == "" {
		return nil, fmt.Errorf("%w: mother_id is required", ErrInvalidInput)
	}
	d.DeliveryType = strings.TrimSpace(strings.ToLower(d.DeliveryType))
	if !knownDeliveryType(d.DeliveryType) {
		return nil, fmt.Errorf("%w: unknown delivery_type", ErrInvalidInput)
	}
	if d.GestationalWeeks < 20 || d.GestationalWeeks > 45 {
		return nil, fmt.Errorf("%w: gestational_weeks out of range", ErrInvalidInput)
	}
	if d.RobsonGroup < 0 || d.RobsonGroup > 10 {
		return nil, fmt.Errorf("%w: robson_group out of range", ErrInvalidInput)
	}
	now := s.now().UTC()
	if d.OccurredAt.IsZero() {
		d.OccurredAt = now
	}
	d.RecordedBy = strings.TrimSpace(recordedBy)
	d.RegisteredAt = now
	d.UpdatedAt = now
	if err := s.store.InsertDelivery(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Find loads one delivery by id.
func (s *Service) Find(ctx context.Context, id string) (*Delivery, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.store.FindDelivery(ctx, id)
}

// List returns deliveries for one mother, newest first.
func (s *Service) List(ctx context.Context, motherID string, limit int) ([]Delivery, error) {
	motherID = strings.TrimSpace(motherID)
	if motherID == "" {
		return nil, fmt.Errorf("%w: mother_id is required", ErrInvalidInput)
	}
	return s.store.ListDeliveries(ctx, motherID, limit)
}

// Apply applies upd to a copy of d and validates the result. The caller
// snapshots the original and the returned copy for the audit trail.
func (s *Service) Apply(ctx context.Context, d Delivery, upd Update) (*Delivery, error) {
	if upd.DeliveryType != nil {
		t := strings.TrimSpace(strings.ToLower(*upd.DeliveryType))
		if !knownDeliveryType(t) {
			return nil, fmt.Errorf("%w: unknown delivery_type", ErrInvalidInput)
		}
		d.DeliveryType = t
	}
	if upd.GestationalWeeks != nil {
		if *upd.GestationalWeeks < 20 || *upd.GestationalWeeks > 45 {
			return nil, fmt.Errorf("%w: gestational_weeks out of range", ErrInvalidInput)
		}
		d.GestationalWeeks = *upd.GestationalWeeks
	}
	if upd.RobsonGroup != nil {
		if *upd.RobsonGroup < 0 || *upd.RobsonGroup > 10 {
			return nil, fmt.Errorf("%w: robson_group out of range", ErrInvalidInput)
		}
		d.RobsonGroup = *upd.RobsonGroup
	}
	if upd.Notes != nil {
		d.Notes = strings.TrimSpace(*upd.Notes)
	}
	d.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateDelivery(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
