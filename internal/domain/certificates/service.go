// Package certificates issues participation certificates. A user may
// hold at most one certificate per event, and only for events they
// actually enrolled in.
package certificates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/hackpoint/server/internal/domain/refs"
	"github.com/hackpoint/server/internal/metrics"
)

var (
	ErrNotFound      = errors.New("certificate not found")
	ErrNotOrganizer  = errors.New("caller is not the organizer of this event")
	ErrNotEnrolled   = errors.New("user never enrolled in this event")
	ErrAlreadyIssued = errors.New("certificate already issued for this user and event")
)

type Certificate struct {
	ID             string    `json:"id"`
	EventID        int64     `json:"event_id"`
	UserID         int64     `json:"user_id"`
	Title          string    `json:"title"`
	CertificateURL string    `json:"certificate_url"`
	IssuedBy       int64     `json:"issued_by"`
	IssuedAt       time.Time `json:"issued_at"`
}

type Store interface {
	Index(ctx context.Context, cert Certificate) (string, error)
	Find(ctx context.Context, eventID, userID int64) (*Certificate, error)
	ListByEvent(ctx context.Context, eventID int64) ([]Certificate, error)
	ListByUser(ctx context.Context, userID int64) ([]Certificate, error)
}

type EventDirectory interface {
	EventOrganizer(ctx context.Context, eventID int64) (int64, error)
}

// EnrollmentDirectory reports whether a user holds an active enrollment
// for the event. Cancelled enrollments do not count.
type EnrollmentDirectory interface {
	HasEnrolled(ctx context.Context, eventID, userID int64) (bool, error)
}

type Service struct {
	store       Store
	events      EventDirectory
	enrollments EnrollmentDirectory
	refs        *refs.Validator
	validate    *validator.Validate
	now         func() time.Time
	logger      zerolog.Logger
}

func NewService(store Store, events EventDirectory, enrollments EnrollmentDirectory, refCheck *refs.Validator, logger zerolog.Logger) *Service {
	return &Service{
		store:       store,
		events:      events,
		enrollments: enrollments,
		refs:        refCheck,
		validate:    validator.New(),
		now:         time.Now,
		logger:      logger.With().Str("component", "certificates").Logger(),
	}
}

// Input carries the issuance payload shared by single and bulk issue.
// The URL points at the rendered certificate document.
type Input struct {
	Title          string `validate:"omitempty,min=3,max=200"`
	CertificateURL string `validate:"required,url,max=2048"`
}

// BulkResult reports per-recipient outcomes. Issuance is never atomic:
// one bad recipient does not void the rest of the batch.
type BulkResult struct {
	Issued  []Certificate `json:"issued"`
	Skipped []BulkSkip    `json:"skipped"`
	Errors  []BulkSkip    `json:"errors"`
}

type BulkSkip struct {
	UserID int64  `json:"user_id"`
	Reason string `json:"reason"`
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

// issue performs the checks and write for a single recipient. Callers
// have already validated the input and confirmed the caller is the
// event organizer.
func (s *Service) issue(ctx context.Context, callerID, eventID, userID int64, input Input) (Certificate, error) {
	if err := s.refs.Check(ctx, refs.Refs{EventID: eventID, UserID: userID}); err != nil {
		return Certificate{}, err
	}

	enrolled, err := s.enrollments.HasEnrolled(ctx, eventID, userID)
	if err != nil {
		return Certificate{}, err
	}
	if !enrolled {
		return Certificate{}, ErrNotEnrolled
	}

	existing, err := s.store.Find(ctx, eventID, userID)
	if err != nil {
		return Certificate{}, fmt.Errorf("check existing certificate: %w", err)
	}
	if existing != nil {
		return Certificate{}, ErrAlreadyIssued
	}

	title := input.Title
	if title == "" {
		title = "Certificate of Participation"
	}
	cert := Certificate{
		EventID:        eventID,
		UserID:         userID,
		Title:          title,
		CertificateURL: input.CertificateURL,
		IssuedBy:       callerID,
		IssuedAt:       s.now().UTC(),
	}

	id, err := s.store.Index(ctx, cert)
	if err != nil {
		return Certificate{}, fmt.Errorf("index certificate: %w", err)
	}
	cert.ID = id

	metrics.CertificatesIssued.Inc()
	return cert, nil
}

func (s *Service) Issue(ctx context.Context, callerID, eventID, userID int64, input Input) (Certificate, error) {
	if err := s.validate.Struct(input); err != nil {
		return Certificate{}, fmt.Errorf("validate certificate: %w", err)
	}
	if err := s.requireOrganizer(ctx, eventID, callerID); err != nil {
		return Certificate{}, err
	}

	cert, err := s.issue(ctx, callerID, eventID, userID, input)
	if err != nil {
		return Certificate{}, err
	}

	s.logger.Info().Str("certificate_id", cert.ID).Int64("event_id", eventID).
		Int64("user_id", userID).Msg("certificate issued")
	return cert, nil
}

func (s *Service) BulkIssue(ctx context.Context, callerID, eventID int64, userIDs []int64, input Input) (BulkResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return BulkResult{}, fmt.Errorf("validate certificate: %w", err)
	}
	if err := s.requireOrganizer(ctx, eventID, callerID); err != nil {
		return BulkResult{}, err
	}

	result := BulkResult{
		Issued:  []Certificate{},
		Skipped: []BulkSkip{},
		Errors:  []BulkSkip{},
	}
	for _, userID := range userIDs {
		cert, err := s.issue(ctx, callerID, eventID, userID, input)
		switch {
		case err == nil:
			result.Issued = append(result.Issued, cert)
		case errors.Is(err, ErrAlreadyIssued):
			result.Skipped = append(result.Skipped, BulkSkip{UserID: userID, Reason: "already issued"})
		case errors.Is(err, ErrNotEnrolled):
			result.Skipped = append(result.Skipped, BulkSkip{UserID: userID, Reason: "never enrolled"})
		default:
			result.Errors = append(result.Errors, BulkSkip{UserID: userID, Reason: err.Error()})
		}
	}

	s.logger.Info().Int64("event_id", eventID).Int("issued", len(result.Issued)).
		Int("skipped", len(result.Skipped)).Int("errors", len(result.Errors)).
		Msg("bulk certificate issuance finished")
	return result, nil
}

func (s *Service) ListByEvent(ctx context.Context, callerID, eventID int64) ([]Certificate, error) {
	if err := s.requireOrganizer(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	return s.store.ListByEvent(ctx, eventID)
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]Certificate, error) {
	return s.store.ListByUser(ctx, userID)
}
