package postgres

import (
	"context"
	"fmt"

	"github.com/gatherhall/server/internal/audit"
)

var _ audit.Repository = (*LogRepository)(nil)

func (r *LogRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

// Append is the only write path the ledger has. There is no update or
// delete statement for event_logs anywhere in this package.
func (r *LogRepository) Append(ctx context.Context, record audit.CreateRecord) (*audit.Log, error) {
	metadata := record.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	row := r.queryer().QueryRow(ctx, `
INSERT INTO event_logs (id, event_id, user_id, action, description, metadata)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, event_id, user_id, action, description, metadata, created_at
`,
		record.ID,
		textOrNil(record.EventID),
		textOrNil(record.UserID),
		string(record.Action),
		record.Description,
		metadata,
	)

	entry, err := scanLog(row)
	if err != nil {
		return nil, fmt.Errorf("append log: %w", err)
	}
	return entry, nil
}

func (r *LogRepository) List(ctx context.Context, scope audit.Scope, filters audit.Filters) ([]audit.Log, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	scopeCreator := ""
	scopeParticipant := ""
	switch scope.Kind {
	case audit.ScopeCreatedEvents:
		scopeCreator = scope.UserID
	case audit.ScopeJoinedEvents:
		scopeParticipant = scope.UserID
	}

	rows, err := r.queryer().Query(ctx, `
SELECT l.id, l.event_id, l.user_id, l.action, l.description, l.metadata, l.created_at
  FROM event_logs l
  WHERE ($1 = '' OR l.event_id = $1)
    AND ($2 = '' OR l.user_id = $2)
    AND ($3 = '' OR l.action = $3)
    AND ($4 = '' OR EXISTS (
         SELECT 1 FROM events e WHERE e.id = l.event_id AND e.creator_id = $4))
    AND ($5 = '' OR EXISTS (
         SELECT 1 FROM participants p WHERE p.event_id = l.event_id AND p.user_id = $5))
 ORDER BY l.created_at DESC, l.id DESC
 LIMIT $6 OFFSET $7
`,
		filters.EventID,
		filters.UserID,
		string(filters.Action),
		scopeCreator,
		scopeParticipant,
		limit,
		filters.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var logs []audit.Log
	for rows.Next() {
		var entry audit.Log
		var action string
		if err := rows.Scan(
			&entry.ID,
			&entry.EventID,
			&entry.UserID,
			&action,
			&entry.Description,
			&entry.Metadata,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		entry.Action = audit.Action(action)
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return logs, nil
}

func scanLog(row interface{ Scan(dest ...any) error }) (*audit.Log, error) {
	var entry audit.Log
	var action string
	if err := row.Scan(
		&entry.ID,
		&entry.EventID,
		&entry.UserID,
		&action,
		&entry.Description,
		&entry.Metadata,
		&entry.CreatedAt,
	); err != nil {
		return nil, err
	}
	entry.Action = audit.Action(action)
	return &entry, nil
}
