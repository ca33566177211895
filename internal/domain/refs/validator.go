package refs

import (
	"context"
	"fmt"
	"strings"
)

// Directory answers existence checks against the relational store.
type Directory interface {
	EventExists(ctx context.Context, id int64) (bool, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	TeamExists(ctx context.Context, id int64) (bool, error)
}

// Refs names the relational IDs a document write embeds. Zero values are
// skipped.
type Refs struct {
	EventID int64
	UserID  int64
	TeamID  int64
}

// Violation cites one unresolvable reference field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ReferenceError aggregates the violations of one check. It is a business
// rejection, never a store failure.
type ReferenceError struct {
	Violations []Violation
}

func (e *ReferenceError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return "unresolvable references: " + strings.Join(fields, ", ")
}

// Validator gates every document-store write that embeds relational IDs.
// The document store enforces no referential integrity, so presence of an
// ID is never proof of existence.
type Validator struct {
	dir Directory
}

func NewValidator(dir Directory) *Validator {
	return &Validator{dir: dir}
}

// Check confirms each named ID exists. A nil return means all references
// resolved; a *ReferenceError lists the offending fields. Store failures
// surface as ordinary errors.
func (v *Validator) Check(ctx context.Context, refs Refs) error {
	var violations []Violation

	if refs.EventID != 0 {
		ok, err := v.dir.EventExists(ctx, refs.EventID)
		if err != nil {
			return fmt.Errorf("check event reference: %w", err)
		}
		if !ok {
			violations = append(violations, Violation{Field: "eventId", Message: "event does not exist"})
		}
	}

	if refs.UserID != 0 {
		ok, err := v.dir.UserExists(ctx, refs.UserID)
		if err != nil {
			return fmt.Errorf("check user reference: %w", err)
		}
		if !ok {
			violations = append(violations, Violation{Field: "userId", Message: "user does not exist"})
		}
	}

	if refs.TeamID != 0 {
		ok, err := v.dir.TeamExists(ctx, refs.TeamID)
		if err != nil {
			return fmt.Errorf("check team reference: %w", err)
		}
		if !ok {
			violations = append(violations, Violation{Field: "teamId", Message: "team does not exist"})
		}
	}

	if len(violations) > 0 {
		return &ReferenceError{Violations: violations}
	}
	return nil
}
