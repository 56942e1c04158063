package pg

import (
	"context"
	"database/sql"
	"errors"

	"materna.org/internal/ids"
	"materna.org/internal/maternity"
)

var _ maternity.Store = (*Store)(nil)

func (s *Store) InsertDelivery(ctx context.Context, d *maternity.Delivery) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if d.ID == "" {
		d.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into deliveries
			(id, mother_id, recorded_by, delivery_type, gestational_weeks,
			 robson_group, notes, occurred_at, registered_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, d.ID, d.MotherID, d.RecordedBy, d.DeliveryType, d.GestationalWeeks,
		d.RobsonGroup, nullIfEmpty(d.Notes), d.OccurredAt, d.RegisteredAt, d.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return maternity.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (s *Store) FindDelivery(ctx context.Context, id string) (*maternity.Delivery, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	var (
		d     maternity.Delivery
		notes sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		select id, mother_id, recorded_by, delivery_type, gestational_weeks,
		       robson_group, notes, occurred_at, registered_at, updated_at
		from deliveries
		where id = $1
	`, id).Scan(&d.ID, &d.MotherID, &d.RecordedBy, &d.DeliveryType, &d.GestationalWeeks,
		&d.RobsonGroup, &notes, &d.OccurredAt, &d.RegisteredAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, maternity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		d.Notes = notes.String
	}
	return &d, nil
}

func (s *Store) UpdateDelivery(ctx context.Context, d *maternity.Delivery) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		update deliveries
		set delivery_type = $2,
		    gestational_weeks = $3,
		    robson_group = $4,
		    notes = $5,
		    updated_at = $6
		where id = $1
	`, d.ID, d.DeliveryType, d.GestationalWeeks, d.RobsonGroup, nullIfEmpty(d.Notes), d.UpdatedAt)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return maternity.ErrNotFound
	}
	return nil
}

func (s *Store) ListDeliveries(ctx context.Context, motherID string, limit int) ([]maternity.Delivery, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, mother_id, recorded_by, delivery_type, gestational_weeks,
		       robson_group, notes, occurred_at, registered_at, updated_at
		from deliveries
		where mother_id = $1
		order by occurred_at desc
		limit $2
	`, motherID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []maternity.Delivery
	for rows.Next() {
		var (
			d     maternity.Delivery
			notes sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.MotherID, &d.RecordedBy, &d.DeliveryType, &d.GestationalWeeks,
			&d.RobsonGroup, &notes, &d.OccurredAt, &d.RegisteredAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if notes.Valid {
			d.Notes = notes.String
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
