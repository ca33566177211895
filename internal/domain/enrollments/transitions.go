package enrollments

import "errors"

// Status is the lifecycle state of an event enrollment.
type Status string

const (
	// StatusNone marks the absence of any enrollment row.
	StatusNone       Status = ""
	StatusEnrolled   Status = "enrolled"
	StatusCancelled  Status = "cancelled"
	StatusWaitlisted Status = "waitlisted"
)

type Action int

const (
	ActionEnroll Action = iota
	ActionCancel
)

// RuleContext carries the event facts an enrollment decision depends on.
type RuleContext struct {
	EventActive  bool
	EventStarted bool
	AtCapacity   bool
}

var (
	ErrNotFound        = errors.New("enrollment not found")
	ErrEventInactive   = errors.New("event is not active")
	ErrEventStarted    = errors.New("event has already started")
	ErrAlreadyEnrolled = errors.New("user is already enrolled in this event")
	ErrNotEnrolled     = errors.New("user is not enrolled in this event")
	ErrTeamMismatch    = errors.New("team does not belong to this event or user is not a member")
)

// Transition applies an enrollment action and returns the new status.
// A Cancelled row re-enrolls; a fresh enrollment against a capped event
// lands on the waitlist instead.
func Transition(current Status, action Action, rc RuleContext) (Status, error) {
	switch action {
	case ActionEnroll:
		switch current {
		case StatusEnrolled, StatusWaitlisted:
			return current, ErrAlreadyEnrolled
		case StatusNone, StatusCancelled:
			if !rc.EventActive {
				return current, ErrEventInactive
			}
			if rc.EventStarted {
				return current, ErrEventStarted
			}
			if rc.AtCapacity {
				return StatusWaitlisted, nil
			}
			return StatusEnrolled, nil
		}

	case ActionCancel:
		switch current {
		case StatusEnrolled, StatusWaitlisted:
			if rc.EventStarted {
				return current, ErrEventStarted
			}
			return StatusCancelled, nil
		default:
			return current, ErrNotEnrolled
		}
	}

	return current, ErrNotEnrolled
}
