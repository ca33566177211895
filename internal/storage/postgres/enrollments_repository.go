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
)

var _ enrollments.Repository = (*EnrollmentRepository)(nil)

type EnrollmentRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *EnrollmentRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

type enrollmentRow struct {
	ID        int64
	EventID   int64
	UserID    int64
	UserName  string
	Status    string
	TeamID    *int64
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

func (row enrollmentRow) toDomain() enrollments.Enrollment {
	return enrollments.Enrollment{
		ID:        row.ID,
		EventID:   row.EventID,
		UserID:    row.UserID,
		UserName:  row.UserName,
		Status:    enrollments.Status(row.Status),
		TeamID:    row.TeamID,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func (r *EnrollmentRepository) Get(ctx context.Context, eventID, userID int64) (enrollments.Enrollment, error) {
	var row enrollmentRow
	err := r.queryer().QueryRow(ctx, `
SELECT e.id, e.event_id, e.user_id, u.name, e.status, e.team_id, e.created_at, e.updated_at
  FROM enrollments e
  JOIN users u ON u.id = e.user_id
 WHERE e.event_id = $1 AND e.user_id = $2`,
		eventID, userID,
	).Scan(&row.ID, &row.EventID, &row.UserID, &row.UserName, &row.Status, &row.TeamID, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return enrollments.Enrollment{}, enrollments.ErrNotFound
		}
		return enrollments.Enrollment{}, fmt.Errorf("select enrollment: %w", err)
	}
	return row.toDomain(), nil
}

func (r *EnrollmentRepository) Create(ctx context.Context, eventID, userID int64, status enrollments.Status) (enrollments.Enrollment, error) {
	var row enrollmentRow
	err := r.queryer().QueryRow(ctx, `
INSERT INTO enrollments (event_id, user_id, status)
VALUES ($1, $2, $3)
RETURNING id, event_id, user_id, status, team_id, created_at, updated_at`,
		eventID, userID, string(status),
	).Scan(&row.ID, &row.EventID, &row.UserID, &row.Status, &row.TeamID, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return enrollments.Enrollment{}, enrollments.ErrAlreadyEnrolled
		}
		return enrollments.Enrollment{}, fmt.Errorf("insert enrollment: %w", err)
	}
	return row.toDomain(), nil
}

func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status enrollments.Status) error {
	tag, err := r.queryer().Exec(ctx,
		`UPDATE enrollments SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return enrollments.ErrNotFound
	}
	return nil
}

func (r *EnrollmentRepository) SetTeam(ctx context.Context, id int64, teamID *int64) error {
	tag, err := r.queryer().Exec(ctx,
		`UPDATE enrollments SET team_id = $2, updated_at = now() WHERE id = $1`, id, teamID)
	if err != nil {
		return fmt.Errorf("set enrollment team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return enrollments.ErrNotFound
	}
	return nil
}

func (r *EnrollmentRepository) ClearTeamForTeam(ctx context.Context, teamID int64) error {
	_, err := r.queryer().Exec(ctx,
		`UPDATE enrollments SET team_id = NULL, updated_at = now() WHERE team_id = $1`, teamID)
	if err != nil {
		return fmt.Errorf("clear enrollment team: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) ListByEvent(ctx context.Context, eventID int64, page pagination.Page) ([]enrollments.Enrollment, int64, error) {
	q := r.queryer()

	var total int64
	if err := q.QueryRow(ctx,
		`SELECT count(*) FROM enrollments WHERE event_id = $1`, eventID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}

	rows, err := q.Query(ctx, `
SELECT e.id, e.event_id, e.user_id, u.name, e.status, e.team_id, e.created_at, e.updated_at
  FROM enrollments e
  JOIN users u ON u.id = e.user_id
 WHERE e.event_id = $1
 ORDER BY e.created_at ASC, e.id ASC
 LIMIT $2 OFFSET $3`,
		eventID, page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var out []enrollments.Enrollment
	for rows.Next() {
		var row enrollmentRow
		if err := rows.Scan(&row.ID, &row.EventID, &row.UserID, &row.UserName, &row.Status, &row.TeamID, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan enrollment: %w", err)
		}
		out = append(out, row.toDomain())
	}
	return out, total, rows.Err()
}

func (r *EnrollmentRepository) CountByStatus(ctx context.Context, eventID int64) (enrollments.Stats, error) {
	var stats enrollments.Stats
	err := r.queryer().QueryRow(ctx, `
SELECT count(*) FILTER (WHERE status = 'enrolled'),
       count(*) FILTER (WHERE status = 'cancelled'),
       count(*) FILTER (WHERE status = 'waitlisted')
  FROM enrollments WHERE event_id = $1`, eventID,
	).Scan(&stats.Enrolled, &stats.Cancelled, &stats.Waitlisted)
	if err != nil {
		return enrollments.Stats{}, fmt.Errorf("count enrollments by status: %w", err)
	}
	return stats, nil
}

func (r *EnrollmentRepository) CancelAllForEvent(ctx context.Context, eventID int64) (int64, error) {
	tag, err := r.queryer().Exec(ctx, `
UPDATE enrollments
   SET status = 'cancelled', team_id = NULL, updated_at = now()
 WHERE event_id = $1 AND status IN ('enrolled', 'waitlisted')`, eventID)
	if err != nil {
		return 0, fmt.Errorf("cancel enrollments for event: %w", err)
	}
	return tag.RowsAffected(), nil
}
