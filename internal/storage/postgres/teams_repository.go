package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackpoint/server/internal/domain/enrollments"
	"github.com/hackpoint/server/internal/domain/submissions"
	"github.com/hackpoint/server/internal/domain/teams"
)

var (
	_ teams.Repository           = (*TeamRepository)(nil)
	_ enrollments.TeamDirectory  = (*TeamRepository)(nil)
	_ submissions.TeamDirectory  = (*TeamRepository)(nil)
)

type TeamRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *TeamRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

type teamRow struct {
	ID        int64
	EventID   int64
	Name      string
	CreatedBy int64
	CreatedAt pgtype.Timestamptz
}

func (row teamRow) toDomain() teams.Team {
	return teams.Team{
		ID:        row.ID,
		EventID:   row.EventID,
		Name:      row.Name,
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt.Time,
	}
}

// Create inserts the team and its leader membership in one transaction
// so a team can never exist without a leader.
func (r *TeamRepository) Create(ctx context.Context, params teams.CreateParams) (teams.Team, error) {
	var row teamRow

	agg := &Repository{pool: r.pool, tx: r.tx}
	err := agg.WithTx(ctx, func(ctx context.Context, txRepo *Repository) error {
		q := txRepo.queryer()
		err := q.QueryRow(ctx, `
INSERT INTO teams (event_id, name, created_by)
VALUES ($1, $2, $3)
RETURNING id, event_id, name, created_by, created_at`,
			params.EventID, params.Name, params.CreatedBy,
		).Scan(&row.ID, &row.EventID, &row.Name, &row.CreatedBy, &row.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return teams.ErrNameTaken
			}
			return fmt.Errorf("insert team: %w", err)
		}

		if _, err := q.Exec(ctx, `
INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)`,
			row.ID, params.CreatedBy, teams.RoleLeader,
		); err != nil {
			return fmt.Errorf("insert leader membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return teams.Team{}, err
	}
	return row.toDomain(), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (teams.Team, error) {
	var row teamRow
	err := r.queryer().QueryRow(ctx,
		`SELECT id, event_id, name, created_by, created_at FROM teams WHERE id = $1`, id,
	).Scan(&row.ID, &row.EventID, &row.Name, &row.CreatedBy, &row.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return teams.Team{}, teams.ErrNotFound
		}
		return teams.Team{}, fmt.Errorf("select team: %w", err)
	}
	return row.toDomain(), nil
}

func (r *TeamRepository) GetByName(ctx context.Context, eventID int64, name string) (*teams.Team, error) {
	var row teamRow
	err := r.queryer().QueryRow(ctx, `
SELECT id, event_id, name, created_by, created_at
  FROM teams WHERE event_id = $1 AND lower(name) = lower($2)`,
		eventID, name,
	).Scan(&row.ID, &row.EventID, &row.Name, &row.CreatedBy, &row.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select team by name: %w", err)
	}
	team := row.toDomain()
	return &team, nil
}

func (r *TeamRepository) ListByEvent(ctx context.Context, eventID int64) ([]teams.Team, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, event_id, name, created_by, created_at
  FROM teams WHERE event_id = $1 ORDER BY created_at ASC, id ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var out []teams.Team
	for rows.Next() {
		var row teamRow
		if err := rows.Scan(&row.ID, &row.EventID, &row.Name, &row.CreatedBy, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		out = append(out, row.toDomain())
	}
	return out, rows.Err()
}

func (r *TeamRepository) Members(ctx context.Context, teamID int64) ([]teams.Member, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT tm.team_id, tm.user_id, u.name, tm.role, tm.joined_at
  FROM team_members tm
  JOIN users u ON u.id = tm.user_id
 WHERE tm.team_id = $1
 ORDER BY tm.joined_at ASC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	var out []teams.Member
	for rows.Next() {
		var m teams.Member
		var joined pgtype.Timestamptz
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Name, &m.Role, &joined); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		m.JoinedAt = joined.Time
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *TeamRepository) CountMembers(ctx context.Context, teamID int64) (int, error) {
	var count int
	err := r.queryer().QueryRow(ctx,
		`SELECT count(*) FROM team_members WHERE team_id = $1`, teamID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count team members: %w", err)
	}
	return count, nil
}

func (r *TeamRepository) MembershipForUser(ctx context.Context, eventID, userID int64) (*teams.Membership, error) {
	var m teams.Membership
	err := r.queryer().QueryRow(ctx, `
SELECT tm.team_id, t.event_id, tm.user_id, tm.role
  FROM team_members tm
  JOIN teams t ON t.id = tm.team_id
 WHERE t.event_id = $1 AND tm.user_id = $2`,
		eventID, userID,
	).Scan(&m.TeamID, &m.EventID, &m.UserID, &m.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select membership: %w", err)
	}
	return &m, nil
}

func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID int64, role string) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)`,
		teamID, userID, role,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return teams.ErrAlreadyInTeam
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID int64) error {
	tag, err := r.queryer().Exec(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teams.ErrNotMember
	}
	return nil
}

func (r *TeamRepository) UpdateMemberRole(ctx context.Context, teamID, userID int64, role string) error {
	tag, err := r.queryer().Exec(ctx,
		`UPDATE team_members SET role = $3 WHERE team_id = $1 AND user_id = $2`, teamID, userID, role)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teams.ErrNotMember
	}
	return nil
}

func (r *TeamRepository) Rename(ctx context.Context, teamID int64, name string) error {
	tag, err := r.queryer().Exec(ctx,
		`UPDATE teams SET name = $2 WHERE id = $1`, teamID, name)
	if err != nil {
		if isUniqueViolation(err) {
			return teams.ErrNameTaken
		}
		return fmt.Errorf("rename team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teams.ErrNotFound
	}
	return nil
}

// Delete removes the team row; memberships go with it via ON DELETE
// CASCADE.
func (r *TeamRepository) Delete(ctx context.Context, teamID int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teams.ErrNotFound
	}
	return nil
}

// TeamEvent resolves a team's owning event.
func (r *TeamRepository) TeamEvent(ctx context.Context, teamID int64) (int64, error) {
	var eventID int64
	err := r.queryer().QueryRow(ctx,
		`SELECT event_id FROM teams WHERE id = $1`, teamID,
	).Scan(&eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, teams.ErrNotFound
		}
		return 0, fmt.Errorf("select team event: %w", err)
	}
	return eventID, nil
}

func (r *TeamRepository) IsMember(ctx context.Context, teamID, userID int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)`,
		teamID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

// IsTeamMember is the enrollment-side spelling of the same check.
func (r *TeamRepository) IsTeamMember(ctx context.Context, teamID, userID int64) (bool, error) {
	return r.IsMember(ctx, teamID, userID)
}

func (r *TeamRepository) IsLeader(ctx context.Context, teamID, userID int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2 AND role = $3)`,
		teamID, userID, teams.RoleLeader,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check leadership: %w", err)
	}
	return exists, nil
}
