package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gatherhall/server/internal/domain/events"
	"github.com/jackc/pgx/v5"
)

var _ events.Repository = (*EventRepository)(nil)

const eventColumns = `id, name, description, capacity, starts_at, location, status, creator_id, created_at, updated_at`

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *EventRepository) List(ctx context.Context, filters events.Filters, page events.Pagination) (events.ListResult, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.queryer().Query(ctx, `
SELECT e.id, e.name, e.description, e.capacity, e.starts_at, e.location,
       e.status, e.creator_id, e.created_at, e.updated_at,
       (SELECT count(*) FROM participants p WHERE p.event_id = e.id) AS participant_count,
       count(*) OVER() AS total
  FROM events e
  WHERE ($1 = '' OR e.status = $1)
    AND ($2 = '' OR e.creator_id = $2)
    AND ($3::timestamptz IS NULL OR e.starts_at >= $3::timestamptz)
    AND ($4::timestamptz IS NULL OR e.starts_at <= $4::timestamptz)
    AND ($5::int IS NULL OR e.capacity >= $5::int)
    AND ($6::int IS NULL OR e.capacity <= $6::int)
    AND ($7::boolean IS NULL OR
         (((SELECT count(*) FROM participants p WHERE p.event_id = e.id) < e.capacity) = $7::boolean))
    AND ($8::boolean IS NULL OR ((e.starts_at >= now()) = $8::boolean))
    AND ($9 = '' OR e.name ILIKE '%' || $9 || '%'
               OR e.description ILIKE '%' || $9 || '%'
               OR e.location ILIKE '%' || $9 || '%')
    AND ($10 = '' OR EXISTS (
         SELECT 1 FROM participants jp WHERE jp.event_id = e.id AND jp.user_id = $10))
 ORDER BY `+orderClause(filters)+`
 LIMIT $11 OFFSET $12
`,
		string(filters.Status),
		filters.CreatorID,
		filters.DateFrom,
		filters.DateTo,
		filters.MinCapacity,
		filters.MaxCapacity,
		filters.HasCapacity,
		filters.Upcoming,
		filters.Query,
		filters.JoinedUserID,
		limit,
		page.Offset,
	)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	result := events.ListResult{Events: make([]events.Event, 0, limit)}
	for rows.Next() {
		var event events.Event
		var status string
		if err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.Description,
			&event.Capacity,
			&event.StartsAt,
			&event.Location,
			&status,
			&event.CreatorID,
			&event.CreatedAt,
			&event.UpdatedAt,
			&event.ParticipantCount,
			&result.Total,
		); err != nil {
			return events.ListResult{}, fmt.Errorf("scan event: %w", err)
		}
		event.Status = events.Status(status)
		result.Events = append(result.Events, event)
	}
	if err := rows.Err(); err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	return result, nil
}

// orderClause maps the enum-checked sort field to SQL. Filter parsing
// guarantees the field is one of the whitelisted values.
func orderClause(filters events.Filters) string {
	column := "e.starts_at"
	switch filters.Sort {
	case events.SortByCreatedAt:
		column = "e.created_at"
	case events.SortByName:
		column = "e.name"
	}
	direction := "ASC"
	if filters.Descending {
		direction = "DESC"
	}
	return column + " " + direction + ", e.id ASC"
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT e.id, e.name, e.description, e.capacity, e.starts_at, e.location,
       e.status, e.creator_id, e.created_at, e.updated_at,
       (SELECT count(*) FROM participants p WHERE p.event_id = e.id) AS participant_count
  FROM events e
  WHERE e.id = $1
`, id)

	event, err := scanEventWithCount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.NotFoundError{Resource: "event"}
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// GetByIDForUpdate locks the event row for the duration of the calling
// transaction, then recomputes the participant count behind the lock so
// check-then-insert sequences cannot race.
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, id string) (*events.Event, error) {
	q := r.queryer()
	row := q.QueryRow(ctx, `SELECT `+prefixedEventColumns("e")+` FROM events e WHERE e.id = $1 FOR UPDATE OF e`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.NotFoundError{Resource: "event"}
		}
		return nil, fmt.Errorf("lock event: %w", err)
	}

	if err := q.QueryRow(ctx,
		`SELECT count(*) FROM participants WHERE event_id = $1`, id,
	).Scan(&event.ParticipantCount); err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Create(ctx context.Context, record events.CreateRecord) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO events (id, name, description, capacity, starts_at, location, status, creator_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+eventColumns,
		record.ID,
		record.Name,
		record.Description,
		record.Capacity,
		record.StartsAt,
		record.Location,
		string(record.Status),
		record.CreatorID,
	)

	event, err := scanEvent(row)
	if err != nil {
		if isCheckViolation(err) {
			return nil, events.ValidationError{Field: "capacity", Message: "must be a positive integer"}
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, id string, record events.UpdateRecord) (*events.Event, error) {
	assignments := make([]string, 0, 6)
	args := []any{id}

	appendSet := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if record.Name != nil {
		appendSet("name", *record.Name)
	}
	if record.Description != nil {
		appendSet("description", *record.Description)
	}
	if record.Capacity != nil {
		appendSet("capacity", *record.Capacity)
	}
	if record.StartsAt != nil {
		appendSet("starts_at", *record.StartsAt)
	}
	if record.Location != nil {
		appendSet("location", *record.Location)
	}
	if record.Status != nil {
		appendSet("status", string(*record.Status))
	}
	if len(assignments) == 0 {
		return r.GetByID(ctx, id)
	}
	assignments = append(assignments, "updated_at = now()")

	row := r.queryer().QueryRow(ctx,
		`UPDATE events SET `+strings.Join(assignments, ", ")+` WHERE id = $1 RETURNING `+eventColumns,
		args...,
	)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.NotFoundError{Resource: "event"}
		}
		if isCheckViolation(err) {
			return nil, events.ValidationError{Field: "capacity", Message: "must be a positive integer"}
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.NotFoundError{Resource: "event"}
	}
	return nil
}

func (r *EventRepository) CountOpenByCreator(ctx context.Context, creatorID string) (int, error) {
	var count int
	err := r.queryer().QueryRow(ctx,
		`SELECT count(*) FROM events WHERE creator_id = $1 AND status = 'open'`, creatorID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open events: %w", err)
	}
	return count, nil
}

func (r *EventRepository) Participants(ctx context.Context, eventID string) ([]events.Participant, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, event_id, user_id, joined_at
  FROM participants
  WHERE event_id = $1
 ORDER BY joined_at DESC, id DESC
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []events.Participant
	for rows.Next() {
		var p events.Participant
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

func (r *EventRepository) GetParticipant(ctx context.Context, eventID, userID string) (*events.Participant, error) {
	var p events.Participant
	err := r.queryer().QueryRow(ctx,
		`SELECT id, event_id, user_id, joined_at FROM participants WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	).Scan(&p.ID, &p.EventID, &p.UserID, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.NotFoundError{Resource: "participant"}
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return &p, nil
}

// AddParticipant relies on the unique (event_id, user_id) constraint as
// the hard backstop against duplicate joins that slip past the
// pre-check.
func (r *EventRepository) AddParticipant(ctx context.Context, record events.ParticipantRecord) (*events.Participant, error) {
	var p events.Participant
	err := r.queryer().QueryRow(ctx, `
INSERT INTO participants (id, event_id, user_id)
VALUES ($1, $2, $3)
RETURNING id, event_id, user_id, joined_at
`,
		record.ID, record.EventID, record.UserID,
	).Scan(&p.ID, &p.EventID, &p.UserID, &p.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, events.ConflictError{Message: "already registered for this event"}
		}
		return nil, fmt.Errorf("add participant: %w", err)
	}
	return &p, nil
}

func (r *EventRepository) RemoveParticipant(ctx context.Context, eventID, userID string) error {
	tag, err := r.queryer().Exec(ctx,
		`DELETE FROM participants WHERE event_id = $1 AND user_id = $2`, eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.NotFoundError{Resource: "participant"}
	}
	return nil
}

func prefixedEventColumns(alias string) string {
	columns := strings.Split(eventColumns, ", ")
	for i, column := range columns {
		columns[i] = alias + "." + column
	}
	return strings.Join(columns, ", ")
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var event events.Event
	var status string
	if err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Capacity,
		&event.StartsAt,
		&event.Location,
		&status,
		&event.CreatorID,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	event.Status = events.Status(status)
	return &event, nil
}

func scanEventWithCount(row pgx.Row) (*events.Event, error) {
	var event events.Event
	var status string
	if err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Capacity,
		&event.StartsAt,
		&event.Location,
		&status,
		&event.CreatorID,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.ParticipantCount,
	); err != nil {
		return nil, err
	}
	event.Status = events.Status(status)
	return &event, nil
}
