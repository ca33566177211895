package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackpoint/server/internal/api/pagination"
	"github.com/hackpoint/server/internal/domain/enrollments"
	"github.com/hackpoint/server/internal/domain/events"
	"github.com/hackpoint/server/internal/domain/submissions"
	"github.com/hackpoint/server/internal/domain/teams"
)

var (
	_ events.Repository           = (*EventRepository)(nil)
	_ teams.EventDirectory        = (*EventRepository)(nil)
	_ enrollments.EventDirectory  = (*EventRepository)(nil)
	_ submissions.EventDirectory  = (*EventRepository)(nil)
)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

type eventRow struct {
	ID                 int64
	OrganizerID        int64
	Name               string
	Description        string
	StartTime          pgtype.Timestamptz
	EndTime            pgtype.Timestamptz
	SubmissionDeadline pgtype.Timestamptz
	MaxTeamSize        int
	ParticipantLimit   int
	IsActive           bool
	CreatedAt          pgtype.Timestamptz
	UpdatedAt          pgtype.Timestamptz
}

func (row eventRow) toDomain() events.Event {
	return events.Event{
		ID:                 row.ID,
		OrganizerID:        row.OrganizerID,
		Name:               row.Name,
		Description:        row.Description,
		StartTime:          row.StartTime.Time,
		EndTime:            row.EndTime.Time,
		SubmissionDeadline: row.SubmissionDeadline.Time,
		MaxTeamSize:        row.MaxTeamSize,
		ParticipantLimit:   row.ParticipantLimit,
		IsActive:           row.IsActive,
		CreatedAt:          row.CreatedAt.Time,
		UpdatedAt:          row.UpdatedAt.Time,
	}
}

const eventColumns = `id, organizer_id, name, description, start_time, end_time,
       submission_deadline, max_team_size, participant_limit, is_active, created_at, updated_at`

func scanEvent(row pgx.Row) (eventRow, error) {
	var e eventRow
	err := row.Scan(&e.ID, &e.OrganizerID, &e.Name, &e.Description, &e.StartTime, &e.EndTime,
		&e.SubmissionDeadline, &e.MaxTeamSize, &e.ParticipantLimit, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (events.Event, error) {
	row, err := scanEvent(r.queryer().QueryRow(ctx, `
INSERT INTO events (organizer_id, name, description, start_time, end_time,
                    submission_deadline, max_team_size, participant_limit)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+eventColumns,
		params.OrganizerID, params.Name, params.Description, params.StartTime, params.EndTime,
		params.SubmissionDeadline, params.MaxTeamSize, params.ParticipantLimit,
	))
	if err != nil {
		return events.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return row.toDomain(), nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (events.Event, error) {
	row, err := scanEvent(r.queryer().QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, fmt.Errorf("select event: %w", err)
	}
	return row.toDomain(), nil
}

func (r *EventRepository) List(ctx context.Context, filters events.Filters, page pagination.Page) ([]events.Event, int64, error) {
	q := r.queryer()

	var total int64
	err := q.QueryRow(ctx, `
SELECT count(*) FROM events
 WHERE (NOT $1::bool OR is_active)
   AND ($2::bigint = 0 OR organizer_id = $2)
   AND (NOT $3::bool OR start_time > now())`,
		filters.ActiveOnly, filters.OrganizerID, filters.Upcoming,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	rows, err := q.Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE (NOT $1::bool OR is_active)
   AND ($2::bigint = 0 OR organizer_id = $2)
   AND (NOT $3::bool OR start_time > now())
 ORDER BY start_time ASC, id ASC
 LIMIT $4 OFFSET $5`,
		filters.ActiveOnly, filters.OrganizerID, filters.Upcoming, page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var e eventRow
		if err := rows.Scan(&e.ID, &e.OrganizerID, &e.Name, &e.Description, &e.StartTime, &e.EndTime,
			&e.SubmissionDeadline, &e.MaxTeamSize, &e.ParticipantLimit, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e.toDomain())
	}
	return out, total, rows.Err()
}

func (r *EventRepository) Update(ctx context.Context, id int64, params events.UpdateParams) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET name = $2, description = $3, start_time = $4, end_time = $5,
       submission_deadline = $6, max_team_size = $7, participant_limit = $8,
       updated_at = now()
 WHERE id = $1`,
		id, params.Name, params.Description, params.StartTime, params.EndTime,
		params.SubmissionDeadline, params.MaxTeamSize, params.ParticipantLimit,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx,
		`UPDATE events SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("soft delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

// EventInfo serves the membership rules.
func (r *EventRepository) EventInfo(ctx context.Context, eventID int64) (teams.EventInfo, error) {
	var info teams.EventInfo
	err := r.queryer().QueryRow(ctx,
		`SELECT id, max_team_size, is_active FROM events WHERE id = $1`, eventID,
	).Scan(&info.ID, &info.MaxTeamSize, &info.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return teams.EventInfo{}, events.ErrNotFound
		}
		return teams.EventInfo{}, fmt.Errorf("select event info: %w", err)
	}
	return info, nil
}

// EnrollmentEventInfo serves the enrollment rules.
func (r *EventRepository) EnrollmentEventInfo(ctx context.Context, eventID int64) (enrollments.EventInfo, error) {
	var info enrollments.EventInfo
	var start pgtype.Timestamptz
	err := r.queryer().QueryRow(ctx,
		`SELECT id, organizer_id, start_time, participant_limit, is_active FROM events WHERE id = $1`, eventID,
	).Scan(&info.ID, &info.OrganizerID, &start, &info.ParticipantLimit, &info.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return enrollments.EventInfo{}, events.ErrNotFound
		}
		return enrollments.EventInfo{}, fmt.Errorf("select event info: %w", err)
	}
	info.StartTime = start.Time
	return info, nil
}

// SubmissionWindow serves the submission deadline checks.
func (r *EventRepository) SubmissionWindow(ctx context.Context, eventID int64) (submissions.SubmissionWindow, error) {
	var window submissions.SubmissionWindow
	var deadline pgtype.Timestamptz
	err := r.queryer().QueryRow(ctx,
		`SELECT id, submission_deadline, is_active FROM events WHERE id = $1`, eventID,
	).Scan(&window.EventID, &deadline, &window.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return submissions.SubmissionWindow{}, events.ErrNotFound
		}
		return submissions.SubmissionWindow{}, fmt.Errorf("select submission window: %w", err)
	}
	window.Deadline = deadline.Time
	return window, nil
}
