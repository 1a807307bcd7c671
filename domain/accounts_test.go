package domain

import (
	"strings"
	"testing"
)

func strPtr(s string) *string {
	return &s
}

func TestUserToString(t *testing.T) {
	u := &User{
		ID:          "1",
		Username:    "alice",
		DisplayName: strPtr("Alice"),
	}

	result := u.ToString()

	if len(result) == 0 {
		t.Error("ToString() returned empty string")
	}

	if !strings.Contains(result, "alice") {
		t.Errorf("ToString() should contain username, got: %s", result)
	}

	if !strings.Contains(result, "Alice") {
		t.Errorf("ToString() should contain display name, got: %s", result)
	}
}

func TestUserName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{"display name", User{Username: "alice", DisplayName: strPtr("Alice A.")}, "Alice A."},
		{"nil display name", User{Username: "alice"}, "alice"},
		{"empty display name", User{Username: "alice", DisplayName: strPtr("")}, "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.Name(); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}
