package enrollments

import (
	"context"
	"time"

	"github.com/hackpoint/server/internal/api/pagination"
)

type Enrollment struct {
	ID        int64
	EventID   int64
	UserID    int64
	UserName  string
	Status    Status
	TeamID    *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stats are per-event enrollment counts broken down by status.
type Stats struct {
	Enrolled   int `json:"enrolled"`
	Cancelled  int `json:"cancelled"`
	Waitlisted int `json:"waitlisted"`
}

type Repository interface {
	Get(ctx context.Context, eventID, userID int64) (Enrollment, error)
	Create(ctx context.Context, eventID, userID int64, status Status) (Enrollment, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	SetTeam(ctx context.Context, id int64, teamID *int64) error
	ClearTeamForTeam(ctx context.Context, teamID int64) error
	ListByEvent(ctx context.Context, eventID int64, page pagination.Page) ([]Enrollment, int64, error)
	CountByStatus(ctx context.Context, eventID int64) (Stats, error)
	// CancelAllForEvent moves every enrolled or waitlisted row for the
	// event to cancelled; the compensating action behind event soft delete.
	CancelAllForEvent(ctx context.Context, eventID int64) (int64, error)
}

// EventDirectory supplies the event facts enrollment rules depend on.
type EventDirectory interface {
	EnrollmentEventInfo(ctx context.Context, eventID int64) (EventInfo, error)
}

type EventInfo struct {
	ID               int64
	OrganizerID      int64
	StartTime        time.Time
	ParticipantLimit int
	IsActive         bool
}

// TeamDirectory answers the membership cross-checks for team association.
type TeamDirectory interface {
	TeamEvent(ctx context.Context, teamID int64) (int64, error)
	IsTeamMember(ctx context.Context, teamID, userID int64) (bool, error)
}
