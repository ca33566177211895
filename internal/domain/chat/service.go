// Package chat is the per-event Q&A board. Questions come from
// enrolled participants; replies append to the question document and
// are never removed.
package chat

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
	ErrNotFound    = errors.New("question not found")
	ErrNotEnrolled = errors.New("caller is not enrolled in this event")
)

type Question struct {
	ID        string    `json:"id"`
	EventID   int64     `json:"event_id"`
	AuthorID  int64     `json:"author_id"`
	Message   string    `json:"message"`
	Replies   []Reply   `json:"replies"`
	CreatedAt time.Time `json:"created_at"`
}

type Reply struct {
	AuthorID  int64     `json:"author_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type Store interface {
	Index(ctx context.Context, q Question) (string, error)
	Get(ctx context.Context, id string) (Question, error)
	ListByEvent(ctx context.Context, eventID int64) ([]Question, error)
	AppendReply(ctx context.Context, id string, reply Reply) error
}

// EnrollmentDirectory reports whether a user currently holds an active
// enrollment in the event.
type EnrollmentDirectory interface {
	IsEnrolled(ctx context.Context, eventID, userID int64) (bool, error)
}

type EventDirectory interface {
	EventOrganizer(ctx context.Context, eventID int64) (int64, error)
}

type Service struct {
	store       Store
	enrollments EnrollmentDirectory
	events      EventDirectory
	refs        *refs.Validator
	validate    *validator.Validate
	now         func() time.Time
	logger      zerolog.Logger
}

func NewService(store Store, enrollments EnrollmentDirectory, events EventDirectory, refCheck *refs.Validator, logger zerolog.Logger) *Service {
	return &Service{
		store:       store,
		enrollments: enrollments,
		events:      events,
		refs:        refCheck,
		validate:    validator.New(),
		now:         time.Now,
		logger:      logger.With().Str("component", "chat").Logger(),
	}
}

type MessageInput struct {
	Message string `validate:"required,min=1,max=5000"`
}

// canPost allows enrolled participants and the event organizer.
func (s *Service) canPost(ctx context.Context, eventID, userID int64) error {
	enrolled, err := s.enrollments.IsEnrolled(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if enrolled {
		return nil
	}

	organizerID, err := s.events.EventOrganizer(ctx, eventID)
	if err != nil {
		return err
	}
	if organizerID == userID {
		return nil
	}
	return ErrNotEnrolled
}

func (s *Service) Ask(ctx context.Context, userID, eventID int64, input MessageInput) (Question, error) {
	input.Message = strings.TrimSpace(input.Message)

	if err := s.validate.Struct(input); err != nil {
		return Question{}, fmt.Errorf("validate question: %w", err)
	}
	if err := s.refs.Check(ctx, refs.Refs{EventID: eventID}); err != nil {
		return Question{}, err
	}
	if err := s.canPost(ctx, eventID, userID); err != nil {
		return Question{}, err
	}

	q := Question{
		EventID:   eventID,
		AuthorID:  userID,
		Message:   input.Message,
		Replies:   []Reply{},
		CreatedAt: s.now().UTC(),
	}

	id, err := s.store.Index(ctx, q)
	if err != nil {
		return Question{}, fmt.Errorf("index question: %w", err)
	}
	q.ID = id

	s.logger.Info().Str("question_id", id).Int64("event_id", eventID).Msg("question posted")
	return q, nil
}

func (s *Service) ListByEvent(ctx context.Context, eventID int64) ([]Question, error) {
	return s.store.ListByEvent(ctx, eventID)
}

func (s *Service) Reply(ctx context.Context, userID int64, questionID string, input MessageInput) (Question, error) {
	input.Message = strings.TrimSpace(input.Message)

	if err := s.validate.Struct(input); err != nil {
		return Question{}, fmt.Errorf("validate reply: %w", err)
	}

	q, err := s.store.Get(ctx, questionID)
	if err != nil {
		return Question{}, err
	}
	if err := s.canPost(ctx, q.EventID, userID); err != nil {
		return Question{}, err
	}

	reply := Reply{
		AuthorID:  userID,
		Message:   input.Message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.AppendReply(ctx, questionID, reply); err != nil {
		return Question{}, fmt.Errorf("append reply: %w", err)
	}

	q.Replies = append(q.Replies, reply)
	return q, nil
}
