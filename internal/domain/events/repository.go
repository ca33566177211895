package events

import (
	"context"
	"errors"
	"time"

	"github.com/hackpoint/server/internal/api/pagination"
)

var (
	ErrNotFound      = errors.New("event not found")
	ErrNotOrganizer  = errors.New("caller is not the organizer of this event")
	ErrInvalidWindow = errors.New("invalid event schedule window")
	ErrInactive      = errors.New("event is not active")
)

type Event struct {
	ID                 int64
	OrganizerID        int64
	Name               string
	Description        string
	StartTime          time.Time
	EndTime            time.Time
	SubmissionDeadline time.Time
	MaxTeamSize        int
	ParticipantLimit   int
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type CreateParams struct {
	OrganizerID        int64
	Name               string
	Description        string
	StartTime          time.Time
	EndTime            time.Time
	SubmissionDeadline time.Time
	MaxTeamSize        int
	ParticipantLimit   int
}

type UpdateParams struct {
	Name               string
	Description        string
	StartTime          time.Time
	EndTime            time.Time
	SubmissionDeadline time.Time
	MaxTeamSize        int
	ParticipantLimit   int
}

type Filters struct {
	ActiveOnly  bool
	OrganizerID int64
	Upcoming    bool
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (Event, error)
	GetByID(ctx context.Context, id int64) (Event, error)
	List(ctx context.Context, filters Filters, page pagination.Page) ([]Event, int64, error)
	Update(ctx context.Context, id int64, params UpdateParams) error
	SoftDelete(ctx context.Context, id int64) error
}

// EnrollmentCanceller is the cascade hook fired on soft delete.
type EnrollmentCanceller interface {
	CancelAllForEvent(ctx context.Context, eventID int64) (int64, error)
}
