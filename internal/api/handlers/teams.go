package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/hackpoint/server/internal/api/respond"
	"github.com/hackpoint/server/internal/domain/events"
	"github.com/hackpoint/server/internal/domain/teams"
)

type TeamsHandler struct {
	teams *teams.Service
}

func NewTeamsHandler(service *teams.Service) *TeamsHandler {
	return &TeamsHandler{teams: service}
}

type teamResponse struct {
	ID        int64            `json:"id"`
	EventID   int64            `json:"event_id"`
	Name      string           `json:"name"`
	CreatedBy int64            `json:"created_by"`
	CreatedAt time.Time        `json:"created_at"`
	Members   []memberResponse `json:"members,omitempty"`
}

type memberResponse struct {
	UserID   int64     `json:"user_id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func toTeamResponse(t teams.Team, members []teams.Member) teamResponse {
	resp := teamResponse{
		ID:        t.ID,
		EventID:   t.EventID,
		Name:      t.Name,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
	for _, m := range members {
		resp.Members = append(resp.Members, memberResponse{
			UserID:   m.UserID,
			Name:     m.Name,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return resp
}

type createTeamRequest struct {
	EventID int64  `json:"event_id"`
	Name    string `json:"name"`
}

func (h *TeamsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}

	var req createTeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	team, err := h.teams.Create(r.Context(), userID, teams.CreateTeamParams{
		EventID: req.EventID,
		Name:    req.Name,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.Created(w, "team created", toTeamResponse(team, nil))
}

func (h *TeamsHandler) Get(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid team id", err)
		return
	}

	team, members, err := h.teams.Get(r.Context(), teamID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "team", toTeamResponse(team, members))
}

func (h *TeamsHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", err)
		return
	}

	list, err := h.teams.ListByEvent(r.Context(), eventID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]teamResponse, 0, len(list))
	for _, t := range list {
		items = append(items, toTeamResponse(t, nil))
	}
	respond.List(w, "teams", items, len(items), nil)
}

func (h *TeamsHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid team id", err)
		return
	}

	if err := h.teams.Join(r.Context(), userID, teamID); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "joined team", nil)
}

func (h *TeamsHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid team id", err)
		return
	}

	if err := h.teams.Leave(r.Context(), userID, teamID); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "left team", nil)
}

type renameTeamRequest struct {
	Name string `json:"name"`
}

func (h *TeamsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid team id", err)
		return
	}

	var req renameTeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.teams.Rename(r.Context(), userID, teamID, req.Name); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "team renamed", nil)
}

func (h *TeamsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid team id", err)
		return
	}

	if err := h.teams.Delete(r.Context(), userID, teamID); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "team deleted", nil)
}

func (h *TeamsHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid team id", err)
		return
	}
	memberID, err := pathID(r, "memberId")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid member id", err)
		return
	}

	if err := h.teams.RemoveMember(r.Context(), userID, teamID, memberID); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "member removed", nil)
}

type transferLeadershipRequest struct {
	NewLeaderID int64 `json:"new_leader_id"`
}

func (h *TeamsHandler) TransferLeadership(w http.ResponseWriter, r *http.Request) {
	userID, _, err := callerID(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required", err)
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid team id", err)
		return
	}

	var req transferLeadershipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.teams.TransferLeadership(r.Context(), userID, teamID, req.NewLeaderID); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.OK(w, "leadership transferred", nil)
}

func (h *TeamsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if writeValidationError(w, r, err) {
		return
	}
	switch {
	case errors.Is(err, teams.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "team not found", err)
	case errors.Is(err, events.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "event not found", err)
	case errors.Is(err, teams.ErrNameTaken):
		respond.Error(w, r, http.StatusConflict, "team name already taken for this event", err)
	case errors.Is(err, teams.ErrAlreadyInTeam):
		respond.Error(w, r, http.StatusConflict, "already in a team for this event", err)
	case errors.Is(err, teams.ErrTeamFull):
		respond.Error(w, r, http.StatusConflict, "team is full", err)
	case errors.Is(err, teams.ErrEventInactive):
		respond.Error(w, r, http.StatusBadRequest, "event is not active", err)
	case errors.Is(err, teams.ErrNotMember):
		respond.Error(w, r, http.StatusBadRequest, "user is not a member of this team", err)
	case errors.Is(err, teams.ErrNotLeader):
		respond.Error(w, r, http.StatusForbidden, "only the team leader may do this", err)
	case errors.Is(err, teams.ErrLeaderCannotLeave):
		respond.Error(w, r, http.StatusConflict, "leader must transfer leadership before leaving", err)
	case errors.Is(err, teams.ErrCannotRemoveSelf):
		respond.Error(w, r, http.StatusBadRequest, "use leave instead of removing yourself", err)
	default:
		respond.Error(w, r, http.StatusInternalServerError, "team operation failed", err)
	}
}
