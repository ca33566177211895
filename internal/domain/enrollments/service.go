package enrollments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hackpoint/server/internal/api/pagination"
	"github.com/hackpoint/server/internal/metrics"
	"github.com/rs/zerolog"
)

var ErrNotOrganizer = errors.New("caller is not the organizer of this event")

// Service tracks the enrollment lifecycle and its team association.
type Service struct {
	repo   Repository
	events EventDirectory
	teams  TeamDirectory
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(repo Repository, events EventDirectory, teams TeamDirectory, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		teams:  teams,
		now:    time.Now,
		logger: logger.With().Str("component", "enrollments").Logger(),
	}
}

// Enroll registers the user for the event. A previously cancelled row is
// re-activated; a capped event waitlists the overflow.
func (s *Service) Enroll(ctx context.Context, eventID, userID int64) (Enrollment, error) {
	event, err := s.events.EnrollmentEventInfo(ctx, eventID)
	if err != nil {
		return Enrollment{}, err
	}

	current := StatusNone
	existing, err := s.repo.Get(ctx, eventID, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Enrollment{}, fmt.Errorf("lookup enrollment: %w", err)
	}
	if err == nil {
		current = existing.Status
	}

	rc := RuleContext{
		EventActive:  event.IsActive,
		EventStarted: !s.now().Before(event.StartTime),
	}
	if event.ParticipantLimit > 0 {
		stats, err := s.repo.CountByStatus(ctx, eventID)
		if err != nil {
			return Enrollment{}, fmt.Errorf("count enrollments: %w", err)
		}
		rc.AtCapacity = stats.Enrolled >= event.ParticipantLimit
	}

	next, err := Transition(current, ActionEnroll, rc)
	if err != nil {
		return Enrollment{}, err
	}

	if current == StatusCancelled {
		existing.Status = next
		if err := s.repo.UpdateStatus(ctx, existing.ID, next); err != nil {
			return Enrollment{}, fmt.Errorf("re-enroll: %w", err)
		}
		metrics.EnrollmentsTotal.WithLabelValues(string(next)).Inc()
		s.logger.Info().Int64("event_id", eventID).Int64("user_id", userID).Str("status", string(next)).Msg("re-enrolled")
		return existing, nil
	}

	enrollment, err := s.repo.Create(ctx, eventID, userID, next)
	if err != nil {
		return Enrollment{}, fmt.Errorf("create enrollment: %w", err)
	}

	metrics.EnrollmentsTotal.WithLabelValues(string(next)).Inc()
	s.logger.Info().Int64("event_id", eventID).Int64("user_id", userID).Str("status", string(next)).Msg("enrolled")
	return enrollment, nil
}

// Cancel withdraws the user's enrollment; only allowed before the event
// starts.
func (s *Service) Cancel(ctx context.Context, eventID, userID int64) error {
	event, err := s.events.EnrollmentEventInfo(ctx, eventID)
	if err != nil {
		return err
	}

	enrollment, err := s.repo.Get(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("lookup enrollment: %w", err)
	}

	rc := RuleContext{
		EventActive:  event.IsActive,
		EventStarted: !s.now().Before(event.StartTime),
	}
	if _, err := Transition(enrollment.Status, ActionCancel, rc); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, enrollment.ID, StatusCancelled); err != nil {
		return fmt.Errorf("cancel enrollment: %w", err)
	}
	metrics.EnrollmentsTotal.WithLabelValues(string(StatusCancelled)).Inc()
	if enrollment.TeamID != nil {
		if err := s.repo.SetTeam(ctx, enrollment.ID, nil); err != nil {
			return fmt.Errorf("clear team association: %w", err)
		}
	}

	s.logger.Info().Int64("event_id", eventID).Int64("user_id", userID).Msg("enrollment cancelled")
	return nil
}

// AssociateTeam links the caller's enrollment to a team. The team must
// belong to the same event and the caller must already be one of its
// members.
func (s *Service) AssociateTeam(ctx context.Context, eventID, userID, teamID int64) error {
	enrollment, err := s.repo.Get(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("lookup enrollment: %w", err)
	}
	if enrollment.Status != StatusEnrolled {
		return ErrNotEnrolled
	}

	teamEvent, err := s.teams.TeamEvent(ctx, teamID)
	if err != nil {
		return err
	}
	if teamEvent != eventID {
		return ErrTeamMismatch
	}

	member, err := s.teams.IsTeamMember(ctx, teamID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !member {
		return ErrTeamMismatch
	}

	if err := s.repo.SetTeam(ctx, enrollment.ID, &teamID); err != nil {
		return fmt.Errorf("associate team: %w", err)
	}
	return nil
}

// ListByEvent returns enrollments for an event; organizer-only.
func (s *Service) ListByEvent(ctx context.Context, callerID, eventID int64, page pagination.Page) ([]Enrollment, int64, error) {
	event, err := s.events.EnrollmentEventInfo(ctx, eventID)
	if err != nil {
		return nil, 0, err
	}
	if event.OrganizerID != callerID {
		return nil, 0, ErrNotOrganizer
	}
	return s.repo.ListByEvent(ctx, eventID, page)
}

// Stats returns per-status counts for an event; organizer-only.
func (s *Service) Stats(ctx context.Context, callerID, eventID int64) (Stats, error) {
	event, err := s.events.EnrollmentEventInfo(ctx, eventID)
	if err != nil {
		return Stats{}, err
	}
	if event.OrganizerID != callerID {
		return Stats{}, ErrNotOrganizer
	}
	return s.repo.CountByStatus(ctx, eventID)
}

// CancelAllForEvent is the cascade used when an event is soft-deleted.
func (s *Service) CancelAllForEvent(ctx context.Context, eventID int64) (int64, error) {
	cancelled, err := s.repo.CancelAllForEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("cancel enrollments for event: %w", err)
	}
	if cancelled > 0 {
		s.logger.Info().Int64("event_id", eventID).Int64("cancelled", cancelled).Msg("enrollments cancelled with event")
	}
	return cancelled, nil
}

// HasEnrolled reports whether the user holds an Enrolled row for the
// event. Certificate issuance gates on this.
func (s *Service) HasEnrolled(ctx context.Context, eventID, userID int64) (bool, error) {
	enrollment, err := s.repo.Get(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return enrollment.Status == StatusEnrolled, nil
}

// IsEnrolled is the gate the Q&A board uses for posting rights.
func (s *Service) IsEnrolled(ctx context.Context, eventID, userID int64) (bool, error) {
	return s.HasEnrolled(ctx, eventID, userID)
}

// ClearTeamForUser drops the team association on a user's enrollment, if
// any. Invoked by the membership engine when a user leaves or is removed.
func (s *Service) ClearTeamForUser(ctx context.Context, eventID, userID int64) error {
	enrollment, err := s.repo.Get(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if enrollment.TeamID == nil {
		return nil
	}
	return s.repo.SetTeam(ctx, enrollment.ID, nil)
}

// ClearTeamForTeam drops the association for every enrollment pointing at
// the team. Invoked when a team is deleted.
func (s *Service) ClearTeamForTeam(ctx context.Context, teamID int64) error {
	return s.repo.ClearTeamForTeam(ctx, teamID)
}
