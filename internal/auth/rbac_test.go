package auth

import "testing"

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{"organizer", RoleOrganizer},
		{" Organizer ", RoleOrganizer},
		{"JUDGE", RoleJudge},
		{"participant", RoleParticipant},
		{"admin", RoleParticipant},
		{"", RoleParticipant},
	}
	for _, tt := range tests {
		if got := NormalizeRole(tt.input); got != tt.want {
			t.Errorf("NormalizeRole(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestValidRole(t *testing.T) {
	if !ValidRole("judge") || !ValidRole("Participant") {
		t.Error("expected known roles to validate")
	}
	if ValidRole("admin") || ValidRole("") {
		t.Error("expected unknown roles to fail validation")
	}
}

func TestHasRole(t *testing.T) {
	if !HasRole("organizer", RoleOrganizer, RoleJudge) {
		t.Error("organizer should match")
	}
	if HasRole("participant", RoleOrganizer) {
		t.Error("participant must not match organizer-only")
	}
	if HasRole("organizer") {
		t.Error("empty allowed list must never match")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword(hash, "correct horse battery staple"); err != nil {
		t.Errorf("VerifyPassword: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Error("expected mismatch error")
	}
}
