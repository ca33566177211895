package enrollments

import (
	"context"
	"testing"
	"time"

	"github.com/hackpoint/server/internal/api/pagination"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	nextID int64
	rows   map[int64]*Enrollment // keyed by enrollment id
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, rows: map[int64]*Enrollment{}}
}

func (f *fakeRepo) Get(_ context.Context, eventID, userID int64) (Enrollment, error) {
	for _, row := range f.rows {
		if row.EventID == eventID && row.UserID == userID {
			return *row, nil
		}
	}
	return Enrollment{}, ErrNotFound
}

func (f *fakeRepo) Create(_ context.Context, eventID, userID int64, status Status) (Enrollment, error) {
	row := &Enrollment{ID: f.nextID, EventID: eventID, UserID: userID, Status: status}
	f.nextID++
	f.rows[row.ID] = row
	return *row, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	row, ok := f.rows[id]
	if !ok {
		return ErrNotFound
	}
	row.Status = status
	return nil
}

func (f *fakeRepo) SetTeam(_ context.Context, id int64, teamID *int64) error {
	row, ok := f.rows[id]
	if !ok {
		return ErrNotFound
	}
	row.TeamID = teamID
	return nil
}

func (f *fakeRepo) ClearTeamForTeam(_ context.Context, teamID int64) error {
	for _, row := range f.rows {
		if row.TeamID != nil && *row.TeamID == teamID {
			row.TeamID = nil
		}
	}
	return nil
}

func (f *fakeRepo) ListByEvent(_ context.Context, eventID int64, _ pagination.Page) ([]Enrollment, int64, error) {
	var out []Enrollment
	for _, row := range f.rows {
		if row.EventID == eventID {
			out = append(out, *row)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) CountByStatus(_ context.Context, eventID int64) (Stats, error) {
	var stats Stats
	for _, row := range f.rows {
		if row.EventID != eventID {
			continue
		}
		switch row.Status {
		case StatusEnrolled:
			stats.Enrolled++
		case StatusCancelled:
			stats.Cancelled++
		case StatusWaitlisted:
			stats.Waitlisted++
		}
	}
	return stats, nil
}

func (f *fakeRepo) CancelAllForEvent(_ context.Context, eventID int64) (int64, error) {
	var cancelled int64
	for _, row := range f.rows {
		if row.EventID == eventID && (row.Status == StatusEnrolled || row.Status == StatusWaitlisted) {
			row.Status = StatusCancelled
			cancelled++
		}
	}
	return cancelled, nil
}

type fakeEvents struct {
	info EventInfo
}

func (f fakeEvents) EnrollmentEventInfo(_ context.Context, eventID int64) (EventInfo, error) {
	info := f.info
	info.ID = eventID
	return info, nil
}

type fakeTeams struct {
	teamEvent int64
	members   map[int64]bool
}

func (f fakeTeams) TeamEvent(_ context.Context, _ int64) (int64, error) {
	return f.teamEvent, nil
}

func (f fakeTeams) IsTeamMember(_ context.Context, _, userID int64) (bool, error) {
	return f.members[userID], nil
}

func futureEvent() EventInfo {
	return EventInfo{OrganizerID: 1, StartTime: time.Now().Add(48 * time.Hour), IsActive: true}
}

func newTestService(repo *fakeRepo, events EventDirectory, teams TeamDirectory) *Service {
	return NewService(repo, events, teams, zerolog.Nop())
}

func TestEnrollAndDuplicate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{info: futureEvent()}, fakeTeams{})
	ctx := context.Background()

	enrollment, err := svc.Enroll(ctx, 5, 10)
	require.NoError(t, err)
	require.Equal(t, StatusEnrolled, enrollment.Status)

	_, err = svc.Enroll(ctx, 5, 10)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestReEnrollAfterCancel(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{info: futureEvent()}, fakeTeams{})
	ctx := context.Background()

	first, err := svc.Enroll(ctx, 5, 10)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, 5, 10))

	second, err := svc.Enroll(ctx, 5, 10)
	require.NoError(t, err)
	require.Equal(t, StatusEnrolled, second.Status)
	// Re-enroll reuses the row instead of duplicating it.
	require.Equal(t, first.ID, second.ID)
	require.Len(t, repo.rows, 1)
}

func TestCancelAfterStartRejected(t *testing.T) {
	repo := newFakeRepo()
	started := futureEvent()
	started.StartTime = time.Now().Add(-time.Hour)

	svc := newTestService(repo, fakeEvents{info: futureEvent()}, fakeTeams{})
	ctx := context.Background()
	_, err := svc.Enroll(ctx, 5, 10)
	require.NoError(t, err)

	svcStarted := newTestService(repo, fakeEvents{info: started}, fakeTeams{})
	require.ErrorIs(t, svcStarted.Cancel(ctx, 5, 10), ErrEventStarted)
}

func TestEnrollWaitlistsAtCapacity(t *testing.T) {
	repo := newFakeRepo()
	capped := futureEvent()
	capped.ParticipantLimit = 1

	svc := newTestService(repo, fakeEvents{info: capped}, fakeTeams{})
	ctx := context.Background()

	first, err := svc.Enroll(ctx, 5, 10)
	require.NoError(t, err)
	require.Equal(t, StatusEnrolled, first.Status)

	second, err := svc.Enroll(ctx, 5, 11)
	require.NoError(t, err)
	require.Equal(t, StatusWaitlisted, second.Status)
}

func TestAssociateTeamCrossChecks(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{info: futureEvent()}, fakeTeams{teamEvent: 5, members: map[int64]bool{10: true}})
	ctx := context.Background()

	_, err := svc.Enroll(ctx, 5, 10)
	require.NoError(t, err)

	require.NoError(t, svc.AssociateTeam(ctx, 5, 10, 77))

	enrollment, err := repo.Get(ctx, 5, 10)
	require.NoError(t, err)
	require.NotNil(t, enrollment.TeamID)
	require.Equal(t, int64(77), *enrollment.TeamID)
}

func TestAssociateTeamRejectsWrongEvent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{info: futureEvent()}, fakeTeams{teamEvent: 99, members: map[int64]bool{10: true}})
	ctx := context.Background()

	_, err := svc.Enroll(ctx, 5, 10)
	require.NoError(t, err)
	require.ErrorIs(t, svc.AssociateTeam(ctx, 5, 10, 77), ErrTeamMismatch)
}

func TestAssociateTeamRejectsNonMember(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{info: futureEvent()}, fakeTeams{teamEvent: 5, members: map[int64]bool{}})
	ctx := context.Background()

	_, err := svc.Enroll(ctx, 5, 10)
	require.NoError(t, err)
	require.ErrorIs(t, svc.AssociateTeam(ctx, 5, 10, 77), ErrTeamMismatch)
}

func TestCancelAllForEventCascade(t *testing.T) {
	repo := newFakeRepo()
	capped := futureEvent()
	capped.ParticipantLimit = 1
	svc := newTestService(repo, fakeEvents{info: capped}, fakeTeams{})
	ctx := context.Background()

	_, err := svc.Enroll(ctx, 5, 10) // enrolled
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, 5, 11) // waitlisted
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, 5, 10))
	_, err = svc.Enroll(ctx, 5, 12)
	require.NoError(t, err)

	cancelled, err := svc.CancelAllForEvent(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, int64(2), cancelled)

	stats, err := repo.CountByStatus(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, Stats{Cancelled: 3}, stats)
}

func TestListAndStatsOrganizerOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{info: futureEvent()}, fakeTeams{})
	ctx := context.Background()

	_, err := svc.Enroll(ctx, 5, 10)
	require.NoError(t, err)

	_, _, err = svc.ListByEvent(ctx, 2, 5, pagination.Page{Page: 1, Limit: 20})
	require.ErrorIs(t, err, ErrNotOrganizer)

	_, err = svc.Stats(ctx, 2, 5)
	require.ErrorIs(t, err, ErrNotOrganizer)

	stats, err := svc.Stats(ctx, 1, 5)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Enrolled)
}

func TestHasEnrolled(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, fakeEvents{info: futureEvent()}, fakeTeams{})
	ctx := context.Background()

	enrolled, err := svc.HasEnrolled(ctx, 5, 10)
	require.NoError(t, err)
	require.False(t, enrolled)

	_, err = svc.Enroll(ctx, 5, 10)
	require.NoError(t, err)

	enrolled, err = svc.HasEnrolled(ctx, 5, 10)
	require.NoError(t, err)
	require.True(t, enrolled)

	require.NoError(t, svc.Cancel(ctx, 5, 10))
	enrolled, err = svc.HasEnrolled(ctx, 5, 10)
	require.NoError(t, err)
	require.False(t, enrolled)
}
