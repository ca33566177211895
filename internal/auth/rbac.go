package auth

import "strings"

type Role string

const (
	RoleParticipant Role = "participant"
	RoleOrganizer   Role = "organizer"
	RoleJudge       Role = "judge"
)

// NormalizeRole maps arbitrary input onto a known role, defaulting to
// participant for anything unrecognized.
func NormalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleOrganizer):
		return RoleOrganizer
	case string(RoleJudge):
		return RoleJudge
	case string(RoleParticipant):
		return RoleParticipant
	default:
		return RoleParticipant
	}
}

// ValidRole reports whether the input names one of the known roles exactly.
func ValidRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleParticipant), string(RoleOrganizer), string(RoleJudge):
		return true
	default:
		return false
	}
}

func HasRole(role string, allowed ...Role) bool {
	if len(allowed) == 0 {
		return false
	}
	current := NormalizeRole(role)
	for _, candidate := range allowed {
		if current == candidate {
			return true
		}
	}
	return false
}

func IsOrganizer(role string) bool {
	return NormalizeRole(role) == RoleOrganizer
}
