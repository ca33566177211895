package events

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hackpoint/server/internal/api/pagination"
)

type fakeRepo struct {
	nextID int64
	events map[int64]Event
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, events: map[int64]Event{}}
}

func (f *fakeRepo) Create(_ context.Context, params CreateParams) (Event, error) {
	event := Event{
		ID:                 f.nextID,
		OrganizerID:        params.OrganizerID,
		Name:               params.Name,
		Description:        params.Description,
		StartTime:          params.StartTime,
		EndTime:            params.EndTime,
		SubmissionDeadline: params.SubmissionDeadline,
		MaxTeamSize:        params.MaxTeamSize,
		ParticipantLimit:   params.ParticipantLimit,
		IsActive:           true,
		CreatedAt:          time.Now(),
	}
	f.events[event.ID] = event
	f.nextID++
	return event, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (Event, error) {
	event, ok := f.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return event, nil
}

func (f *fakeRepo) List(_ context.Context, filters Filters, _ pagination.Page) ([]Event, int64, error) {
	var out []Event
	for _, event := range f.events {
		if filters.ActiveOnly && !event.IsActive {
			continue
		}
		if filters.OrganizerID != 0 && event.OrganizerID != filters.OrganizerID {
			continue
		}
		out = append(out, event)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, params UpdateParams) error {
	event, ok := f.events[id]
	if !ok {
		return ErrNotFound
	}
	event.Name = params.Name
	event.Description = params.Description
	event.StartTime = params.StartTime
	event.EndTime = params.EndTime
	event.SubmissionDeadline = params.SubmissionDeadline
	event.MaxTeamSize = params.MaxTeamSize
	event.ParticipantLimit = params.ParticipantLimit
	f.events[id] = event
	return nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id int64) error {
	event, ok := f.events[id]
	if !ok {
		return ErrNotFound
	}
	event.IsActive = false
	f.events[id] = event
	return nil
}

type fakeCanceller struct {
	cancelled map[int64]int64
}

func (f *fakeCanceller) CancelAllForEvent(_ context.Context, eventID int64) (int64, error) {
	if f.cancelled == nil {
		f.cancelled = map[int64]int64{}
	}
	f.cancelled[eventID] = 3
	return 3, nil
}

func validInput() EventInput {
	start := time.Now().Add(24 * time.Hour)
	return EventInput{
		Name:               "Spring Hack",
		Description:        "48 hours of building",
		StartTime:          start,
		EndTime:            start.Add(48 * time.Hour),
		SubmissionDeadline: start.Add(46 * time.Hour),
		MaxTeamSize:        5,
	}
}

func newTestService(repo Repository, enrollments EnrollmentCanceller) *Service {
	return NewService(repo, enrollments, zerolog.Nop())
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeCanceller{})

	input := validInput()
	input.StartTime, input.EndTime = input.EndTime, input.StartTime
	input.SubmissionDeadline = input.EndTime

	_, err := svc.Create(context.Background(), 1, input)
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestCreateRejectsDeadlineAfterEnd(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeCanceller{})

	input := validInput()
	input.SubmissionDeadline = input.EndTime.Add(time.Hour)

	_, err := svc.Create(context.Background(), 1, input)
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestCreateSetsOrganizerAndActive(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeCanceller{})

	event, err := svc.Create(context.Background(), 42, validInput())
	require.NoError(t, err)
	require.Equal(t, int64(42), event.OrganizerID)
	require.True(t, event.IsActive)
}

func TestUpdateRequiresOwnership(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeCanceller{})

	event, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 99, event.ID, validInput())
	require.ErrorIs(t, err, ErrNotOrganizer)
}

func TestSoftDeleteCascadesEnrollments(t *testing.T) {
	repo := newFakeRepo()
	canceller := &fakeCanceller{}
	svc := newTestService(repo, canceller)

	event, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(context.Background(), 1, event.ID))

	stored, err := repo.GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	require.False(t, stored.IsActive)
	require.Equal(t, int64(3), canceller.cancelled[event.ID])
}

func TestSoftDeleteRequiresOwnership(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeCanceller{})

	event, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	err = svc.SoftDelete(context.Background(), 2, event.ID)
	require.ErrorIs(t, err, ErrNotOrganizer)
	require.Empty(t, (&fakeCanceller{}).cancelled)
}

func TestListActiveOnlyFilter(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeCanceller{})

	first, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(context.Background(), 1, first.ID))

	active, total, err := svc.List(context.Background(), Filters{ActiveOnly: true}, pagination.Page{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, active, 1)
}
