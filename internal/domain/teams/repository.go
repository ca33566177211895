package teams

import (
	"context"
	"time"
)

const (
	RoleLeader = "leader"
	RoleMember = "member"
)

type Team struct {
	ID        int64
	EventID   int64
	Name      string
	CreatedBy int64
	CreatedAt time.Time
}

type Member struct {
	TeamID   int64
	UserID   int64
	Name     string
	Role     string
	JoinedAt time.Time
}

// Membership is a user's team link within one event.
type Membership struct {
	TeamID  int64
	EventID int64
	UserID  int64
	Role    string
}

type CreateParams struct {
	EventID   int64
	Name      string
	CreatedBy int64
}

// Repository is implemented by the postgres storage layer. Create inserts
// the team and its leader row in one transaction.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Team, error)
	GetByID(ctx context.Context, id int64) (Team, error)
	GetByName(ctx context.Context, eventID int64, name string) (*Team, error)
	ListByEvent(ctx context.Context, eventID int64) ([]Team, error)
	Members(ctx context.Context, teamID int64) ([]Member, error)
	CountMembers(ctx context.Context, teamID int64) (int, error)
	MembershipForUser(ctx context.Context, eventID, userID int64) (*Membership, error)
	AddMember(ctx context.Context, teamID, userID int64, role string) error
	RemoveMember(ctx context.Context, teamID, userID int64) error
	UpdateMemberRole(ctx context.Context, teamID, userID int64, role string) error
	Rename(ctx context.Context, teamID int64, name string) error
	Delete(ctx context.Context, teamID int64) error
}

// EventDirectory supplies the event facts membership rules depend on.
type EventDirectory interface {
	EventInfo(ctx context.Context, eventID int64) (EventInfo, error)
}

type EventInfo struct {
	ID          int64
	MaxTeamSize int
	IsActive    bool
}

// EnrollmentSync keeps EventEnrollment.teamId in step with membership
// writes. Membership removal must always clear the association.
type EnrollmentSync interface {
	ClearTeamForUser(ctx context.Context, eventID, userID int64) error
	ClearTeamForTeam(ctx context.Context, teamID int64) error
}
