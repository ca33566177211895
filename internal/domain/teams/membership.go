package teams

import "errors"

// MembershipState is a user's standing with respect to one event.
type MembershipState int

const (
	StateNoTeam MembershipState = iota
	StateMember
	StateLeader
)

func (s MembershipState) String() string {
	switch s {
	case StateMember:
		return "member"
	case StateLeader:
		return "leader"
	default:
		return "no_team"
	}
}

// Action is a membership-changing operation.
type Action int

const (
	ActionCreateTeam Action = iota
	ActionJoin
	ActionLeave
	ActionRemoved
	ActionTakeOver
)

// RuleContext carries the facts a transition decision depends on, read
// before the write. The capacity check is not atomic with the insert; two
// concurrent joins can both observe a free slot.
type RuleContext struct {
	EventActive     bool
	MemberCount     int
	MaxTeamSize     int
	TeammatesRemain bool
}

var (
	ErrNotFound          = errors.New("team not found")
	ErrEventInactive     = errors.New("event is not active")
	ErrAlreadyInTeam     = errors.New("user already belongs to a team for this event")
	ErrTeamFull          = errors.New("team is at maximum capacity")
	ErrNameTaken         = errors.New("team name already taken for this event")
	ErrNotMember         = errors.New("user is not a member of this team")
	ErrNotLeader         = errors.New("only the team leader may perform this operation")
	ErrLeaderCannotLeave = errors.New("leader cannot leave while other members remain")
	ErrCannotRemoveSelf  = errors.New("leader cannot remove themselves")
)

// Transition applies a membership action to the current state and returns
// the resulting state, or the rule violation that forbids it. It is a pure
// function; callers gather RuleContext from storage first.
func Transition(state MembershipState, action Action, rc RuleContext) (MembershipState, error) {
	switch action {
	case ActionCreateTeam:
		if !rc.EventActive {
			return state, ErrEventInactive
		}
		if state != StateNoTeam {
			return state, ErrAlreadyInTeam
		}
		return StateLeader, nil

	case ActionJoin:
		if !rc.EventActive {
			return state, ErrEventInactive
		}
		if state != StateNoTeam {
			return state, ErrAlreadyInTeam
		}
		if rc.MaxTeamSize > 0 && rc.MemberCount >= rc.MaxTeamSize {
			return state, ErrTeamFull
		}
		return StateMember, nil

	case ActionLeave:
		switch state {
		case StateMember:
			return StateNoTeam, nil
		case StateLeader:
			if rc.TeammatesRemain {
				return state, ErrLeaderCannotLeave
			}
			// Last member out: the team itself is deleted.
			return StateNoTeam, nil
		default:
			return state, ErrNotMember
		}

	case ActionRemoved:
		switch state {
		case StateMember:
			return StateNoTeam, nil
		case StateLeader:
			return state, ErrCannotRemoveSelf
		default:
			return state, ErrNotMember
		}

	case ActionTakeOver:
		if state != StateMember {
			return state, ErrNotMember
		}
		return StateLeader, nil
	}

	return state, ErrNotMember
}
