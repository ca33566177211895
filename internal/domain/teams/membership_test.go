package teams

import (
	"errors"
	"testing"
)

func TestTransitionCreateTeam(t *testing.T) {
	tests := []struct {
		name    string
		state   MembershipState
		rc      RuleContext
		want    MembershipState
		wantErr error
	}{
		{"no team on active event", StateNoTeam, RuleContext{EventActive: true}, StateLeader, nil},
		{"inactive event", StateNoTeam, RuleContext{EventActive: false}, StateNoTeam, ErrEventInactive},
		{"already member", StateMember, RuleContext{EventActive: true}, StateMember, ErrAlreadyInTeam},
		{"already leader", StateLeader, RuleContext{EventActive: true}, StateLeader, ErrAlreadyInTeam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.state, ActionCreateTeam, tt.rc)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("state = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransitionJoin(t *testing.T) {
	tests := []struct {
		name    string
		state   MembershipState
		rc      RuleContext
		want    MembershipState
		wantErr error
	}{
		{"open slot", StateNoTeam, RuleContext{EventActive: true, MemberCount: 2, MaxTeamSize: 4}, StateMember, nil},
		{"last slot", StateNoTeam, RuleContext{EventActive: true, MemberCount: 3, MaxTeamSize: 4}, StateMember, nil},
		{"at capacity", StateNoTeam, RuleContext{EventActive: true, MemberCount: 4, MaxTeamSize: 4}, StateNoTeam, ErrTeamFull},
		{"over capacity", StateNoTeam, RuleContext{EventActive: true, MemberCount: 5, MaxTeamSize: 4}, StateNoTeam, ErrTeamFull},
		{"inactive event", StateNoTeam, RuleContext{EventActive: false, MemberCount: 0, MaxTeamSize: 4}, StateNoTeam, ErrEventInactive},
		{"already on a team", StateMember, RuleContext{EventActive: true, MemberCount: 1, MaxTeamSize: 4}, StateMember, ErrAlreadyInTeam},
		{"unlimited when size unset", StateNoTeam, RuleContext{EventActive: true, MemberCount: 50, MaxTeamSize: 0}, StateMember, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.state, ActionJoin, tt.rc)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("state = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransitionLeave(t *testing.T) {
	tests := []struct {
		name    string
		state   MembershipState
		rc      RuleContext
		want    MembershipState
		wantErr error
	}{
		{"member leaves", StateMember, RuleContext{TeammatesRemain: true}, StateNoTeam, nil},
		{"leader with teammates", StateLeader, RuleContext{TeammatesRemain: true}, StateLeader, ErrLeaderCannotLeave},
		{"leader alone", StateLeader, RuleContext{TeammatesRemain: false}, StateNoTeam, nil},
		{"not a member", StateNoTeam, RuleContext{}, StateNoTeam, ErrNotMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.state, ActionLeave, tt.rc)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("state = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransitionRemoved(t *testing.T) {
	if _, err := Transition(StateLeader, ActionRemoved, RuleContext{}); !errors.Is(err, ErrCannotRemoveSelf) {
		t.Errorf("removing a leader should fail, got %v", err)
	}
	got, err := Transition(StateMember, ActionRemoved, RuleContext{})
	if err != nil || got != StateNoTeam {
		t.Errorf("removing a member: state=%v err=%v", got, err)
	}
	if _, err := Transition(StateNoTeam, ActionRemoved, RuleContext{}); !errors.Is(err, ErrNotMember) {
		t.Errorf("removing a non-member should fail, got %v", err)
	}
}

func TestTransitionTakeOver(t *testing.T) {
	got, err := Transition(StateMember, ActionTakeOver, RuleContext{})
	if err != nil || got != StateLeader {
		t.Errorf("member takeover: state=%v err=%v", got, err)
	}
	if _, err := Transition(StateNoTeam, ActionTakeOver, RuleContext{}); !errors.Is(err, ErrNotMember) {
		t.Errorf("non-member takeover should fail, got %v", err)
	}
}
