package teams

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Service enforces the membership rules on top of the teams repository.
// Every membership mutation is paired with an enrollment teamId write so
// the two tables cannot drift apart.
type Service struct {
	repo        Repository
	events      EventDirectory
	enrollments EnrollmentSync
	logger      zerolog.Logger
}

func NewService(repo Repository, events EventDirectory, enrollments EnrollmentSync, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		events:      events,
		enrollments: enrollments,
		logger:      logger.With().Str("component", "teams").Logger(),
	}
}

type CreateTeamParams struct {
	EventID int64  `validate:"required,gt=0"`
	Name    string `validate:"required,min=2,max=100"`
}

func stateOf(membership *Membership) MembershipState {
	if membership == nil {
		return StateNoTeam
	}
	if membership.Role == RoleLeader {
		return StateLeader
	}
	return StateMember
}

// Create makes a new team for the event with the caller as Leader.
func (s *Service) Create(ctx context.Context, userID int64, params CreateTeamParams) (Team, error) {
	params.Name = strings.TrimSpace(params.Name)

	event, err := s.events.EventInfo(ctx, params.EventID)
	if err != nil {
		return Team{}, err
	}

	membership, err := s.repo.MembershipForUser(ctx, params.EventID, userID)
	if err != nil {
		return Team{}, fmt.Errorf("lookup membership: %w", err)
	}

	if _, err := Transition(stateOf(membership), ActionCreateTeam, RuleContext{EventActive: event.IsActive}); err != nil {
		return Team{}, err
	}

	existing, err := s.repo.GetByName(ctx, params.EventID, params.Name)
	if err != nil {
		return Team{}, fmt.Errorf("check team name: %w", err)
	}
	if existing != nil {
		return Team{}, ErrNameTaken
	}

	team, err := s.repo.Create(ctx, CreateParams{
		EventID:   params.EventID,
		Name:      params.Name,
		CreatedBy: userID,
	})
	if err != nil {
		return Team{}, fmt.Errorf("create team: %w", err)
	}

	s.logger.Info().Int64("team_id", team.ID).Int64("event_id", team.EventID).Int64("user_id", userID).Msg("team created")
	return team, nil
}

// Join adds the caller to a team as a Member. The capacity check is a
// read followed by a write with no lock between them.
func (s *Service) Join(ctx context.Context, userID, teamID int64) error {
	team, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	event, err := s.events.EventInfo(ctx, team.EventID)
	if err != nil {
		return err
	}

	membership, err := s.repo.MembershipForUser(ctx, team.EventID, userID)
	if err != nil {
		return fmt.Errorf("lookup membership: %w", err)
	}

	count, err := s.repo.CountMembers(ctx, teamID)
	if err != nil {
		return fmt.Errorf("count members: %w", err)
	}

	rc := RuleContext{
		EventActive: event.IsActive,
		MemberCount: count,
		MaxTeamSize: event.MaxTeamSize,
	}
	if _, err := Transition(stateOf(membership), ActionJoin, rc); err != nil {
		return err
	}

	if err := s.repo.AddMember(ctx, teamID, userID, RoleMember); err != nil {
		return fmt.Errorf("add member: %w", err)
	}

	s.logger.Info().Int64("team_id", teamID).Int64("user_id", userID).Msg("member joined")
	return nil
}

// Leave removes the caller from their team. A Leader can only leave an
// otherwise empty team, and taking the last member out deletes the team.
func (s *Service) Leave(ctx context.Context, userID, teamID int64) error {
	team, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	membership, err := s.repo.MembershipForUser(ctx, team.EventID, userID)
	if err != nil {
		return fmt.Errorf("lookup membership: %w", err)
	}
	if membership == nil || membership.TeamID != teamID {
		return ErrNotMember
	}

	count, err := s.repo.CountMembers(ctx, teamID)
	if err != nil {
		return fmt.Errorf("count members: %w", err)
	}

	rc := RuleContext{TeammatesRemain: count > 1}
	if _, err := Transition(stateOf(membership), ActionLeave, rc); err != nil {
		return err
	}

	if count == 1 {
		// Last member out deletes the team entirely.
		if err := s.enrollments.ClearTeamForTeam(ctx, teamID); err != nil {
			return fmt.Errorf("clear enrollments: %w", err)
		}
		if err := s.repo.Delete(ctx, teamID); err != nil {
			return fmt.Errorf("delete team: %w", err)
		}
		s.logger.Info().Int64("team_id", teamID).Msg("team deleted after last member left")
		return nil
	}

	if err := s.repo.RemoveMember(ctx, teamID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if err := s.enrollments.ClearTeamForUser(ctx, team.EventID, userID); err != nil {
		return fmt.Errorf("clear enrollment: %w", err)
	}

	s.logger.Info().Int64("team_id", teamID).Int64("user_id", userID).Msg("member left")
	return nil
}

// RemoveMember ejects a member. Leader-only, and the leader cannot remove
// themselves through this path.
func (s *Service) RemoveMember(ctx context.Context, callerID, teamID, memberID int64) error {
	team, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	caller, err := s.repo.MembershipForUser(ctx, team.EventID, callerID)
	if err != nil {
		return fmt.Errorf("lookup caller membership: %w", err)
	}
	if caller == nil || caller.TeamID != teamID || caller.Role != RoleLeader {
		return ErrNotLeader
	}
	if callerID == memberID {
		return ErrCannotRemoveSelf
	}

	target, err := s.repo.MembershipForUser(ctx, team.EventID, memberID)
	if err != nil {
		return fmt.Errorf("lookup target membership: %w", err)
	}
	if target == nil || target.TeamID != teamID {
		return ErrNotMember
	}

	if _, err := Transition(stateOf(target), ActionRemoved, RuleContext{}); err != nil {
		return err
	}

	if err := s.repo.RemoveMember(ctx, teamID, memberID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if err := s.enrollments.ClearTeamForUser(ctx, team.EventID, memberID); err != nil {
		return fmt.Errorf("clear enrollment: %w", err)
	}

	s.logger.Info().Int64("team_id", teamID).Int64("member_id", memberID).Int64("by", callerID).Msg("member removed")
	return nil
}

// Rename changes the team name. Leader-only; the new name must stay
// unique within the event.
func (s *Service) Rename(ctx context.Context, callerID, teamID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrNameTaken)
	}

	team, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	if err := s.requireLeader(ctx, team, callerID); err != nil {
		return err
	}

	existing, err := s.repo.GetByName(ctx, team.EventID, name)
	if err != nil {
		return fmt.Errorf("check team name: %w", err)
	}
	if existing != nil && existing.ID != teamID {
		return ErrNameTaken
	}

	if err := s.repo.Rename(ctx, teamID, name); err != nil {
		return fmt.Errorf("rename team: %w", err)
	}
	return nil
}

// Delete removes the team and all memberships. Leader-only.
func (s *Service) Delete(ctx context.Context, callerID, teamID int64) error {
	team, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	if err := s.requireLeader(ctx, team, callerID); err != nil {
		return err
	}

	if err := s.enrollments.ClearTeamForTeam(ctx, teamID); err != nil {
		return fmt.Errorf("clear enrollments: %w", err)
	}
	if err := s.repo.Delete(ctx, teamID); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}

	s.logger.Info().Int64("team_id", teamID).Int64("by", callerID).Msg("team deleted")
	return nil
}

// TransferLeadership hands the Leader role to another member; the old
// leader stays on the team as a Member.
func (s *Service) TransferLeadership(ctx context.Context, callerID, teamID, newLeaderID int64) error {
	team, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	if err := s.requireLeader(ctx, team, callerID); err != nil {
		return err
	}
	if callerID == newLeaderID {
		return ErrNotMember
	}

	target, err := s.repo.MembershipForUser(ctx, team.EventID, newLeaderID)
	if err != nil {
		return fmt.Errorf("lookup target membership: %w", err)
	}
	if target == nil || target.TeamID != teamID {
		return ErrNotMember
	}

	if _, err := Transition(stateOf(target), ActionTakeOver, RuleContext{}); err != nil {
		return err
	}

	if err := s.repo.UpdateMemberRole(ctx, teamID, newLeaderID, RoleLeader); err != nil {
		return fmt.Errorf("promote member: %w", err)
	}
	if err := s.repo.UpdateMemberRole(ctx, teamID, callerID, RoleMember); err != nil {
		return fmt.Errorf("demote leader: %w", err)
	}

	s.logger.Info().Int64("team_id", teamID).Int64("from", callerID).Int64("to", newLeaderID).Msg("leadership transferred")
	return nil
}

// Get returns a team with its member list.
func (s *Service) Get(ctx context.Context, teamID int64) (Team, []Member, error) {
	team, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return Team{}, nil, err
	}
	members, err := s.repo.Members(ctx, teamID)
	if err != nil {
		return Team{}, nil, fmt.Errorf("list members: %w", err)
	}
	return team, members, nil
}

// ListByEvent returns all teams for an event.
func (s *Service) ListByEvent(ctx context.Context, eventID int64) ([]Team, error) {
	return s.repo.ListByEvent(ctx, eventID)
}

func (s *Service) requireLeader(ctx context.Context, team Team, userID int64) error {
	membership, err := s.repo.MembershipForUser(ctx, team.EventID, userID)
	if err != nil {
		return fmt.Errorf("lookup membership: %w", err)
	}
	if membership == nil || membership.TeamID != team.ID || membership.Role != RoleLeader {
		return ErrNotLeader
	}
	return nil
}

// IsMember reports whether the user belongs to the team. Used by the
// document services for authorization gates.
func (s *Service) IsMember(ctx context.Context, teamID, userID int64) (bool, error) {
	team, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	membership, err := s.repo.MembershipForUser(ctx, team.EventID, userID)
	if err != nil {
		return false, err
	}
	return membership != nil && membership.TeamID == teamID, nil
}

// IsLeader reports whether the user leads the team.
func (s *Service) IsLeader(ctx context.Context, teamID, userID int64) (bool, error) {
	team, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	membership, err := s.repo.MembershipForUser(ctx, team.EventID, userID)
	if err != nil {
		return false, err
	}
	return membership != nil && membership.TeamID == teamID && membership.Role == RoleLeader, nil
}
