// Package announcements covers organizer broadcasts attached to an
// event, stored in the document store and listed important-first.
package announcements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/hackpoint/server/internal/domain/refs"
)

var (
	ErrNotFound     = errors.New("announcement not found")
	ErrNotOrganizer = errors.New("caller is not the organizer of this event")
)

type Announcement struct {
	ID        string    `json:"id"`
	EventID   int64     `json:"event_id"`
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Important bool      `json:"important"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store lists newest-first within each importance tier.
type Store interface {
	Index(ctx context.Context, ann Announcement) (string, error)
	Get(ctx context.Context, id string) (Announcement, error)
	ListByEvent(ctx context.Context, eventID int64) ([]Announcement, error)
	Update(ctx context.Context, ann Announcement) error
	Delete(ctx context.Context, id string) error
}

type EventDirectory interface {
	EventOrganizer(ctx context.Context, eventID int64) (int64, error)
}

type Service struct {
	store    Store
	events   EventDirectory
	refs     *refs.Validator
	validate *validator.Validate
	now      func() time.Time
	logger   zerolog.Logger
}

func NewService(store Store, events EventDirectory, refCheck *refs.Validator, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		events:   events,
		refs:     refCheck,
		validate: validator.New(),
		now:      time.Now,
		logger:   logger.With().Str("component", "announcements").Logger(),
	}
}

type Input struct {
	Title     string `validate:"required,min=3,max=200"`
	Body      string `validate:"required,max=10000"`
	Important bool
}

func (s *Service) requireOrganizer(ctx context.Context, eventID, callerID int64) error {
	organizerID, err := s.events.EventOrganizer(ctx, eventID)
	if err != nil {
		return err
	}
	if organizerID != callerID {
		return ErrNotOrganizer
	}
	return nil
}

func (s *Service) Create(ctx context.Context, callerID, eventID int64, input Input) (Announcement, error) {
	input.Title = strings.TrimSpace(input.Title)

	if err := s.validate.Struct(input); err != nil {
		return Announcement{}, fmt.Errorf("validate announcement: %w", err)
	}
	if err := s.refs.Check(ctx, refs.Refs{EventID: eventID}); err != nil {
		return Announcement{}, err
	}
	if err := s.requireOrganizer(ctx, eventID, callerID); err != nil {
		return Announcement{}, err
	}

	now := s.now().UTC()
	ann := Announcement{
		EventID:   eventID,
		AuthorID:  callerID,
		Title:     input.Title,
		Body:      input.Body,
		Important: input.Important,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.store.Index(ctx, ann)
	if err != nil {
		return Announcement{}, fmt.Errorf("index announcement: %w", err)
	}
	ann.ID = id

	s.logger.Info().Str("announcement_id", id).Int64("event_id", eventID).
		Bool("important", ann.Important).Msg("announcement published")
	return ann, nil
}

func (s *Service) ListByEvent(ctx context.Context, eventID int64) ([]Announcement, error) {
	return s.store.ListByEvent(ctx, eventID)
}

func (s *Service) Update(ctx context.Context, callerID int64, id string, input Input) (Announcement, error) {
	input.Title = strings.TrimSpace(input.Title)

	if err := s.validate.Struct(input); err != nil {
		return Announcement{}, fmt.Errorf("validate announcement: %w", err)
	}

	ann, err := s.store.Get(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if err := s.requireOrganizer(ctx, ann.EventID, callerID); err != nil {
		return Announcement{}, err
	}

	ann.Title = input.Title
	ann.Body = input.Body
	ann.Important = input.Important
	ann.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, ann); err != nil {
		return Announcement{}, fmt.Errorf("update announcement: %w", err)
	}
	return ann, nil
}

func (s *Service) Delete(ctx context.Context, callerID int64, id string) error {
	ann, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireOrganizer(ctx, ann.EventID, callerID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return nil
}
