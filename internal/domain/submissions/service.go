package submissions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/hackpoint/server/internal/domain/refs"
)

type Service struct {
	store    Store
	events   EventDirectory
	teams    TeamDirectory
	refs     *refs.Validator
	validate *validator.Validate
	now      func() time.Time
	logger   zerolog.Logger
}

func NewService(store Store, events EventDirectory, teams TeamDirectory, refCheck *refs.Validator, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		events:   events,
		teams:    teams,
		refs:     refCheck,
		validate: validator.New(),
		now:      time.Now,
		logger:   logger.With().Str("component", "submissions").Logger(),
	}
}

type CreateInput struct {
	EventID     int64    `validate:"required,gt=0"`
	TeamID      int64    `validate:"required,gt=0"`
	Round       int      `validate:"gte=1,lte=20"`
	Title       string   `validate:"required,min=3,max=200"`
	Description string   `validate:"max=10000"`
	Track       string   `validate:"max=100"`
	Links       []string `validate:"dive,url"`
	Docs        []string `validate:"dive,url"`
}

type UpdateInput struct {
	Title       string   `validate:"required,min=3,max=200"`
	Description string   `validate:"max=10000"`
	Track       string   `validate:"max=100"`
	Links       []string `validate:"dive,url"`
	Docs        []string `validate:"dive,url"`
}

// guard verifies the caller may touch submissions for this team: the
// team must belong to the event, the caller must be on the team, and
// the event must be active with an open deadline.
func (s *Service) guard(ctx context.Context, eventID, teamID, userID int64) error {
	teamEvent, err := s.teams.TeamEvent(ctx, teamID)
	if err != nil {
		return err
	}
	if teamEvent != eventID {
		return ErrTeamMismatch
	}

	member, err := s.teams.IsMember(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotTeamMember
	}

	window, err := s.events.SubmissionWindow(ctx, eventID)
	if err != nil {
		return err
	}
	if !window.IsActive {
		return ErrEventInactive
	}
	if s.now().After(window.Deadline) {
		return ErrDeadlinePassed
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID int64, input CreateInput) (Submission, error) {
	input.Title = strings.TrimSpace(input.Title)

	if err := s.validate.Struct(input); err != nil {
		return Submission{}, fmt.Errorf("validate submission: %w", err)
	}
	if input.Round == 0 {
		input.Round = 1
	}

	if err := s.refs.Check(ctx, refs.Refs{EventID: input.EventID, TeamID: input.TeamID}); err != nil {
		return Submission{}, err
	}
	if err := s.guard(ctx, input.EventID, input.TeamID, userID); err != nil {
		return Submission{}, err
	}

	existing, err := s.store.FindByRound(ctx, input.EventID, input.TeamID, input.Round)
	if err != nil {
		return Submission{}, fmt.Errorf("check round uniqueness: %w", err)
	}
	if existing != nil {
		return Submission{}, ErrDuplicateRound
	}

	now := s.now().UTC()
	sub := Submission{
		EventID:     input.EventID,
		TeamID:      input.TeamID,
		Round:       input.Round,
		Title:       input.Title,
		Description: input.Description,
		Track:       input.Track,
		Links:       input.Links,
		Docs:        input.Docs,
		SubmittedBy: userID,
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	id, err := s.store.Index(ctx, sub)
	if err != nil {
		return Submission{}, fmt.Errorf("index submission: %w", err)
	}
	sub.ID = id

	s.logger.Info().Str("submission_id", id).Int64("event_id", sub.EventID).
		Int64("team_id", sub.TeamID).Int("round", sub.Round).Msg("submission created")
	return sub, nil
}

func (s *Service) Get(ctx context.Context, id string) (Submission, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Submission, error) {
	return s.store.Search(ctx, filters)
}

func (s *Service) Update(ctx context.Context, userID int64, id string, input UpdateInput) (Submission, error) {
	input.Title = strings.TrimSpace(input.Title)

	if err := s.validate.Struct(input); err != nil {
		return Submission{}, fmt.Errorf("validate submission: %w", err)
	}

	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	if err := s.guard(ctx, sub.EventID, sub.TeamID, userID); err != nil {
		return Submission{}, err
	}

	sub.Title = input.Title
	sub.Description = input.Description
	sub.Track = input.Track
	sub.Links = input.Links
	sub.Docs = input.Docs
	sub.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, sub); err != nil {
		return Submission{}, fmt.Errorf("update submission: %w", err)
	}
	return sub, nil
}

// Delete removes a submission; reserved for the team leader.
func (s *Service) Delete(ctx context.Context, userID int64, id string) error {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	leader, err := s.teams.IsLeader(ctx, sub.TeamID, userID)
	if err != nil {
		return err
	}
	if !leader {
		return ErrNotTeamLeader
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}

	s.logger.Info().Str("submission_id", id).Int64("team_id", sub.TeamID).Msg("submission deleted")
	return nil
}
