package enrollments

import (
	"errors"
	"testing"
)

func TestTransitionEnroll(t *testing.T) {
	open := RuleContext{EventActive: true, EventStarted: false}

	tests := []struct {
		name    string
		current Status
		rc      RuleContext
		want    Status
		wantErr error
	}{
		{"fresh enrollment", StatusNone, open, StatusEnrolled, nil},
		{"re-enroll after cancel", StatusCancelled, open, StatusEnrolled, nil},
		{"duplicate enrollment", StatusEnrolled, open, StatusEnrolled, ErrAlreadyEnrolled},
		{"already waitlisted", StatusWaitlisted, open, StatusWaitlisted, ErrAlreadyEnrolled},
		{"inactive event", StatusNone, RuleContext{EventActive: false}, StatusNone, ErrEventInactive},
		{"event started", StatusNone, RuleContext{EventActive: true, EventStarted: true}, StatusNone, ErrEventStarted},
		{"capped event waitlists", StatusNone, RuleContext{EventActive: true, AtCapacity: true}, StatusWaitlisted, nil},
		{"re-enroll into capped event waitlists", StatusCancelled, RuleContext{EventActive: true, AtCapacity: true}, StatusWaitlisted, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, ActionEnroll, tt.rc)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransitionCancel(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		rc      RuleContext
		want    Status
		wantErr error
	}{
		{"cancel before start", StatusEnrolled, RuleContext{EventActive: true}, StatusCancelled, nil},
		{"cancel waitlisted", StatusWaitlisted, RuleContext{EventActive: true}, StatusCancelled, nil},
		{"cancel after start", StatusEnrolled, RuleContext{EventActive: true, EventStarted: true}, StatusEnrolled, ErrEventStarted},
		{"cancel twice", StatusCancelled, RuleContext{EventActive: true}, StatusCancelled, ErrNotEnrolled},
		{"cancel without enrollment", StatusNone, RuleContext{EventActive: true}, StatusNone, ErrNotEnrolled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, ActionCancel, tt.rc)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}
