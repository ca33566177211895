// Package submissions manages project submissions stored in the
// document store. A submission belongs to a team within an event and
// is unique per (event, team, round).
package submissions

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("submission not found")
	ErrNotTeamMember  = errors.New("caller is not a member of this team")
	ErrNotTeamLeader  = errors.New("caller is not the leader of this team")
	ErrDeadlinePassed = errors.New("submission deadline has passed")
	ErrDuplicateRound = errors.New("team already has a submission for this round")
	ErrEventInactive  = errors.New("event is not active")
	ErrTeamMismatch   = errors.New("team does not belong to this event")
)

type Submission struct {
	ID          string    `json:"id"`
	EventID     int64     `json:"event_id"`
	TeamID      int64     `json:"team_id"`
	Round       int       `json:"round"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Track       string    `json:"track,omitempty"`
	Links       []string  `json:"links,omitempty"`
	Docs        []string  `json:"docs,omitempty"`
	SubmittedBy int64     `json:"submitted_by"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Filters struct {
	EventID int64
	TeamID  int64
}

// Store is the document-store backing for submissions.
type Store interface {
	Index(ctx context.Context, sub Submission) (string, error)
	Get(ctx context.Context, id string) (Submission, error)
	FindByRound(ctx context.Context, eventID, teamID int64, round int) (*Submission, error)
	Search(ctx context.Context, filters Filters) ([]Submission, error)
	Update(ctx context.Context, sub Submission) error
	Delete(ctx context.Context, id string) error
}

// EventDirectory exposes the schedule facts submissions depend on.
type EventDirectory interface {
	SubmissionWindow(ctx context.Context, eventID int64) (SubmissionWindow, error)
}

type SubmissionWindow struct {
	EventID  int64
	Deadline time.Time
	IsActive bool
}

// TeamDirectory answers membership questions for authorization.
type TeamDirectory interface {
	TeamEvent(ctx context.Context, teamID int64) (int64, error)
	IsMember(ctx context.Context, teamID, userID int64) (bool, error)
	IsLeader(ctx context.Context, teamID, userID int64) (bool, error)
}
