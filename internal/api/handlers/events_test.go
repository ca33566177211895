package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackpoint/server/internal/api/pagination"
	"github.com/hackpoint/server/internal/auth"
	"github.com/hackpoint/server/internal/domain/events"
)

type fakeEventRepo struct {
	byID   map[int64]events.Event
	nextID int64
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[int64]events.Event), nextID: 1}
}

func (r *fakeEventRepo) Create(_ context.Context, params events.CreateParams) (events.Event, error) {
	event := events.Event{
		ID:                 r.nextID,
		OrganizerID:        params.OrganizerID,
		Name:               params.Name,
		Description:        params.Description,
		StartTime:          params.StartTime,
		EndTime:            params.EndTime,
		SubmissionDeadline: params.SubmissionDeadline,
		MaxTeamSize:        params.MaxTeamSize,
		ParticipantLimit:   params.ParticipantLimit,
		IsActive:           true,
	}
	r.nextID++
	r.byID[event.ID] = event
	return event, nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int64) (events.Event, error) {
	event, ok := r.byID[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	return event, nil
}

func (r *fakeEventRepo) List(_ context.Context, _ events.Filters, _ pagination.Page) ([]events.Event, int64, error) {
	out := make([]events.Event, 0, len(r.byID))
	for _, event := range r.byID {
		out = append(out, event)
	}
	return out, int64(len(out)), nil
}

func (r *fakeEventRepo) Update(_ context.Context, id int64, params events.UpdateParams) error {
	event, ok := r.byID[id]
	if !ok {
		return events.ErrNotFound
	}
	event.Name = params.Name
	r.byID[id] = event
	return nil
}

func (r *fakeEventRepo) SoftDelete(_ context.Context, id int64) error {
	event, ok := r.byID[id]
	if !ok {
		return events.ErrNotFound
	}
	event.IsActive = false
	r.byID[id] = event
	return nil
}

type noopCanceller struct{}

func (noopCanceller) CancelAllForEvent(context.Context, int64) (int64, error) { return 0, nil }

func newEventsHandler(repo events.Repository) *EventsHandler {
	return NewEventsHandler(events.NewService(repo, noopCanceller{}, zerolog.Nop()))
}

func eventBody(name string) string {
	start := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
	end := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	return `{"name":"` + name + `","start_time":"` + start + `","end_time":"` + end +
		`","submission_deadline":"` + end + `","max_team_size":4}`
}

func TestEventCreateRequiresAuth(t *testing.T) {
	handler := newEventsHandler(newFakeEventRepo())

	r := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(eventBody("Hack Night")))
	w := httptest.NewRecorder()
	handler.Create(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEventCreateInvalidWindow(t *testing.T) {
	handler := newEventsHandler(newFakeEventRepo())

	start := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	end := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
	body := `{"name":"Backwards","start_time":"` + start + `","end_time":"` + end +
		`","submission_deadline":"` + end + `","max_team_size":4}`

	r := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	w := authedRequest(t, 1, auth.RoleOrganizer, handler.Create, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventGetUnknownIsNotFound(t *testing.T) {
	handler := newEventsHandler(newFakeEventRepo())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/events/99", nil)
	r.SetPathValue("id", "99")
	w := httptest.NewRecorder()
	handler.Get(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventUpdateByNonOwnerForbidden(t *testing.T) {
	repo := newFakeEventRepo()
	handler := newEventsHandler(repo)

	create := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(eventBody("Owned")))
	created := authedRequest(t, 1, auth.RoleOrganizer, handler.Create, create)
	require.Equal(t, http.StatusCreated, created.Code)

	update := httptest.NewRequest(http.MethodPatch, "/api/v1/events/1", strings.NewReader(eventBody("Stolen")))
	update.SetPathValue("id", "1")
	w := authedRequest(t, 2, auth.RoleOrganizer, handler.Update, update)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEventDeleteDeactivates(t *testing.T) {
	repo := newFakeEventRepo()
	handler := newEventsHandler(repo)

	create := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(eventBody("Short-lived")))
	created := authedRequest(t, 1, auth.RoleOrganizer, handler.Create, create)
	require.Equal(t, http.StatusCreated, created.Code)

	del := httptest.NewRequest(http.MethodDelete, "/api/v1/events/1", nil)
	del.SetPathValue("id", "1")
	w := authedRequest(t, 1, auth.RoleOrganizer, handler.Delete, del)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, repo.byID[1].IsActive)
}
