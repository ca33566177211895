package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hackpoint/server/internal/api/pagination"
	"github.com/rs/zerolog"
)

type Service struct {
	repo        Repository
	enrollments EnrollmentCanceller
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewService(repo Repository, enrollments EnrollmentCanceller, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		enrollments: enrollments,
		validate:    validator.New(),
		logger:      logger.With().Str("component", "events").Logger(),
	}
}

type EventInput struct {
	Name               string    `validate:"required,min=3,max=200"`
	Description        string    `validate:"max=5000"`
	StartTime          time.Time `validate:"required"`
	EndTime            time.Time `validate:"required"`
	SubmissionDeadline time.Time `validate:"required"`
	MaxTeamSize        int       `validate:"required,gte=1,lte=50"`
	ParticipantLimit   int       `validate:"gte=0"`
}

// validateWindow enforces start < end and deadline <= end.
func validateWindow(input EventInput) error {
	if !input.StartTime.Before(input.EndTime) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidWindow)
	}
	if input.SubmissionDeadline.After(input.EndTime) {
		return fmt.Errorf("%w: submission deadline must be on or before end", ErrInvalidWindow)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, organizerID int64, input EventInput) (Event, error) {
	input.Name = strings.TrimSpace(input.Name)

	if err := s.validate.Struct(input); err != nil {
		return Event{}, fmt.Errorf("%w: %s", ErrInvalidWindow, err)
	}
	if err := validateWindow(input); err != nil {
		return Event{}, err
	}

	event, err := s.repo.Create(ctx, CreateParams{
		OrganizerID:        organizerID,
		Name:               input.Name,
		Description:        input.Description,
		StartTime:          input.StartTime,
		EndTime:            input.EndTime,
		SubmissionDeadline: input.SubmissionDeadline,
		MaxTeamSize:        input.MaxTeamSize,
		ParticipantLimit:   input.ParticipantLimit,
	})
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().Int64("event_id", event.ID).Int64("organizer_id", organizerID).Msg("event created")
	return event, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Event, error) {
	return s.repo.GetByID(ctx, id)
}

// EventOrganizer resolves the owning organizer, for callers that only
// need the authorization fact.
func (s *Service) EventOrganizer(ctx context.Context, id int64) (int64, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return event.OrganizerID, nil
}

func (s *Service) List(ctx context.Context, filters Filters, page pagination.Page) ([]Event, int64, error) {
	return s.repo.List(ctx, filters, page)
}

// Update edits an event; owner organizer only, window invariants re-checked.
func (s *Service) Update(ctx context.Context, callerID, id int64, input EventInput) (Event, error) {
	input.Name = strings.TrimSpace(input.Name)

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if event.OrganizerID != callerID {
		return Event{}, ErrNotOrganizer
	}

	if err := s.validate.Struct(input); err != nil {
		return Event{}, fmt.Errorf("%w: %s", ErrInvalidWindow, err)
	}
	if err := validateWindow(input); err != nil {
		return Event{}, err
	}

	if err := s.repo.Update(ctx, id, UpdateParams{
		Name:               input.Name,
		Description:        input.Description,
		StartTime:          input.StartTime,
		EndTime:            input.EndTime,
		SubmissionDeadline: input.SubmissionDeadline,
		MaxTeamSize:        input.MaxTeamSize,
		ParticipantLimit:   input.ParticipantLimit,
	}); err != nil {
		return Event{}, fmt.Errorf("update event: %w", err)
	}

	return s.repo.GetByID(ctx, id)
}

// SoftDelete clears the active flag and cancels every open enrollment.
// The store enforces no cascade; this compensating action is mandatory.
func (s *Service) SoftDelete(ctx context.Context, callerID, id int64) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event.OrganizerID != callerID {
		return ErrNotOrganizer
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("soft delete event: %w", err)
	}

	cancelled, err := s.enrollments.CancelAllForEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("cascade enrollment cancellation: %w", err)
	}

	s.logger.Info().Int64("event_id", id).Int64("enrollments_cancelled", cancelled).Msg("event soft-deleted")
	return nil
}
