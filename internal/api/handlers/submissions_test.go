package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackpoint/server/internal/auth"
	"github.com/hackpoint/server/internal/domain/refs"
	"github.com/hackpoint/server/internal/domain/submissions"
)

type memorySubmissionStore struct {
	byID   map[string]submissions.Submission
	nextID int
}

func newMemorySubmissionStore() *memorySubmissionStore {
	return &memorySubmissionStore{byID: make(map[string]submissions.Submission), nextID: 1}
}

func (s *memorySubmissionStore) Index(_ context.Context, sub submissions.Submission) (string, error) {
	id := fmt.Sprintf("sub-%d", s.nextID)
	s.nextID++
	sub.ID = id
	s.byID[id] = sub
	return id, nil
}

func (s *memorySubmissionStore) Get(_ context.Context, id string) (submissions.Submission, error) {
	sub, ok := s.byID[id]
	if !ok {
		return submissions.Submission{}, submissions.ErrNotFound
	}
	return sub, nil
}

func (s *memorySubmissionStore) FindByRound(_ context.Context, eventID, teamID int64, round int) (*submissions.Submission, error) {
	for _, sub := range s.byID {
		if sub.EventID == eventID && sub.TeamID == teamID && sub.Round == round {
			return &sub, nil
		}
	}
	return nil, nil
}

func (s *memorySubmissionStore) Search(_ context.Context, filters submissions.Filters) ([]submissions.Submission, error) {
	var out []submissions.Submission
	for _, sub := range s.byID {
		if filters.EventID != 0 && sub.EventID != filters.EventID {
			continue
		}
		if filters.TeamID != 0 && sub.TeamID != filters.TeamID {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *memorySubmissionStore) Update(_ context.Context, sub submissions.Submission) error {
	if _, ok := s.byID[sub.ID]; !ok {
		return submissions.ErrNotFound
	}
	s.byID[sub.ID] = sub
	return nil
}

func (s *memorySubmissionStore) Delete(_ context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return submissions.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// openWindow reports every event as active with a far-off deadline.
type openWindow struct{}

func (openWindow) SubmissionWindow(_ context.Context, eventID int64) (submissions.SubmissionWindow, error) {
	return submissions.SubmissionWindow{EventID: eventID, Deadline: time.Now().Add(24 * time.Hour), IsActive: true}, nil
}

// oneTeam maps team 1 to event 1 with user 1 as leader and user 2 as member.
type oneTeam struct{}

func (oneTeam) TeamEvent(_ context.Context, teamID int64) (int64, error) {
	if teamID != 1 {
		return 0, submissions.ErrNotFound
	}
	return 1, nil
}

func (oneTeam) IsMember(_ context.Context, teamID, userID int64) (bool, error) {
	return teamID == 1 && (userID == 1 || userID == 2), nil
}

func (oneTeam) IsLeader(_ context.Context, teamID, userID int64) (bool, error) {
	return teamID == 1 && userID == 1, nil
}

type allRefsValid struct{}

func (allRefsValid) EventExists(context.Context, int64) (bool, error) { return true, nil }
func (allRefsValid) UserExists(context.Context, int64) (bool, error)  { return true, nil }
func (allRefsValid) TeamExists(context.Context, int64) (bool, error)  { return true, nil }

func newSubmissionsHandler(store submissions.Store) *SubmissionsHandler {
	service := submissions.NewService(store, openWindow{}, oneTeam{}, refs.NewValidator(allRefsValid{}), zerolog.Nop())
	return NewSubmissionsHandler(service)
}

const submissionBody = `{"event_id":1,"team_id":1,"round":1,"title":"Cache Warmer","description":"demo"}`

func TestSubmissionCreate(t *testing.T) {
	handler := newSubmissionsHandler(newMemorySubmissionStore())

	r := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", strings.NewReader(submissionBody))
	w := authedRequest(t, 1, auth.RoleParticipant, handler.Create, r)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSubmissionDuplicateRoundConflicts(t *testing.T) {
	handler := newSubmissionsHandler(newMemorySubmissionStore())

	first := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", strings.NewReader(submissionBody))
	created := authedRequest(t, 1, auth.RoleParticipant, handler.Create, first)
	require.Equal(t, http.StatusCreated, created.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", strings.NewReader(submissionBody))
	w := authedRequest(t, 2, auth.RoleParticipant, handler.Create, second)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubmissionCreateByNonMemberForbidden(t *testing.T) {
	handler := newSubmissionsHandler(newMemorySubmissionStore())

	r := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", strings.NewReader(submissionBody))
	w := authedRequest(t, 9, auth.RoleParticipant, handler.Create, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmissionDeleteRequiresLeader(t *testing.T) {
	store := newMemorySubmissionStore()
	handler := newSubmissionsHandler(store)

	create := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", strings.NewReader(submissionBody))
	created := authedRequest(t, 1, auth.RoleParticipant, handler.Create, create)
	require.Equal(t, http.StatusCreated, created.Code)

	del := httptest.NewRequest(http.MethodDelete, "/api/v1/submissions/sub-1", nil)
	del.SetPathValue("id", "sub-1")
	w := authedRequest(t, 2, auth.RoleParticipant, handler.Delete, del)
	assert.Equal(t, http.StatusForbidden, w.Code)

	del2 := httptest.NewRequest(http.MethodDelete, "/api/v1/submissions/sub-1", nil)
	del2.SetPathValue("id", "sub-1")
	w2 := authedRequest(t, 1, auth.RoleParticipant, handler.Delete, del2)
	assert.Equal(t, http.StatusOK, w2.Code)
}

func TestSubmissionListFiltersByTeam(t *testing.T) {
	store := newMemorySubmissionStore()
	handler := newSubmissionsHandler(store)

	create := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", strings.NewReader(submissionBody))
	created := authedRequest(t, 1, auth.RoleParticipant, handler.Create, create)
	require.Equal(t, http.StatusCreated, created.Code)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/submissions?team_id=1", nil)
	w := authedRequest(t, 1, auth.RoleParticipant, handler.List, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cache Warmer")

	empty := httptest.NewRequest(http.MethodGet, "/api/v1/submissions?team_id=2", nil)
	w2 := authedRequest(t, 1, auth.RoleParticipant, handler.List, empty)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.NotContains(t, w2.Body.String(), "Cache Warmer")
}
