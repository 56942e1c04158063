package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"materna.org/internal/audit"
	"materna.org/internal/ids"
)

var _ audit.Store = (*Store)(nil)

// Append inserts one immutable audit entry. There is deliberately no update
// or delete counterpart; the trail only ever grows.
func (s *Store) Append(ctx context.Context, entry *audit.Entry) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	prior, err := stateJSON(entry.PriorState)
	if err != nil {
		return fmt.Errorf("marshal prior_state: %w", err)
	}
	next, err := stateJSON(entry.NewState)
	if err != nil {
		return fmt.Errorf("marshal new_state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into audit_log
			(id, actor_id, action, resource, record_id, prior_state, new_state,
			 client_ip, user_agent, outcome, description, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		entry.ID,
		nullIfEmpty(entry.ActorID),
		entry.Action,
		entry.Resource,
		nullIfEmpty(entry.RecordID),
		prior,
		next,
		nullIfEmpty(entry.ClientIP),
		nullIfEmpty(entry.UserAgent),
		entry.Outcome,
		nullIfEmpty(entry.Description),
		entry.CreatedAt,
	)
	return err
}

// List serves the compliance read surface, newest entries first.
func (s *Store) List(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	var (
		where []string
		args  []any
		idx   = 1
	)
	if f.ActorID != "" {
		where = append(where, fmt.Sprintf("actor_id = $%d", idx))
		args = append(args, f.ActorID)
		idx++
	}
	if f.Action != "" {
		where = append(where, fmt.Sprintf("action = $%d", idx))
		args = append(args, f.Action)
		idx++
	}
	if f.Resource != "" {
		where = append(where, fmt.Sprintf("resource = $%d", idx))
		args = append(args, f.Resource)
		idx++
	}
	if !f.From.IsZero() {
		where = append(where, fmt.Sprintf("created_at >= $%d", idx))
		args = append(args, f.From)
		idx++
	}
	if !f.To.IsZero() {
		where = append(where, fmt.Sprintf("created_at < $%d", idx))
		args = append(args, f.To)
		idx++
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query := `
		select id, actor_id, action, resource, record_id, prior_state, new_state,
		       client_ip, user_agent, outcome, description, created_at
		from audit_log`
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += fmt.Sprintf(" order by created_at desc, id desc limit $%d", idx)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e          audit.Entry
			actorID    sql.NullString
			recordID   sql.NullString
			prior      []byte
			next       []byte
			clientIP   sql.NullString
			userAgent  sql.NullString
			desc       sql.NullString
		)
		if err := rows.Scan(&e.ID, &actorID, &e.Action, &e.Resource, &recordID,
			&prior, &next, &clientIP, &userAgent, &e.Outcome, &desc, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ActorID = actorID.String
		e.RecordID = recordID.String
		e.ClientIP = clientIP.String
		e.UserAgent = userAgent.String
		e.Description = desc.String
		if len(prior) > 0 {
			if err := json.Unmarshal(prior, &e.PriorState); err != nil {
				return nil, fmt.Errorf("decode prior_state: %w", err)
			}
		}
		if len(next) > 0 {
			if err := json.Unmarshal(next, &e.NewState); err != nil {
				return nil, fmt.Errorf("decode new_state: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func stateJSON(state map[string]any) (any, error) {
	if len(state) == 0 {
		return nil, nil
	}
	return json.Marshal(state)
}
