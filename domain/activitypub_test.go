package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestActivityJSONFieldNames(t *testing.T) {
	a := Activity{
		ID:           "a1",
		Permalink:    "https://example.com/a1",
		Verb:         "post",
		Time:         time.Date(2017, time.May, 1, 12, 0, 0, 0, time.UTC),
		InReplyToURL: strPtr("https://example.com/a0"),
		Object:       Object{ID: "o1", Content: strPtr("hi")},
	}

	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	s := string(b)
	for _, field := range []string{`"id":"a1"`, `"permalink"`, `"verb":"post"`, `"time":"2017-05-01T12:00:00Z"`, `"inReplyToURL"`, `"content":"hi"`} {
		if !strings.Contains(s, field) {
			t.Errorf("Expected %s in %s", field, s)
		}
	}
}

func TestActivityActorName(t *testing.T) {
	tests := []struct {
		name     string
		actor    *Person
		expected string
	}{
		{"nil actor", nil, "unknown"},
		{"display name", &Person{ID: "p1", DisplayName: strPtr("Carol")}, "Carol"},
		{"permalink fallback", &Person{ID: "p1", Permalink: "https://example.com/carol"}, "https://example.com/carol"},
		{"id fallback", &Person{ID: "p1"}, "p1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Activity{Actor: tt.actor}
			if got := a.ActorName(); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestActivityToString(t *testing.T) {
	a := &Activity{ID: "a1", Verb: "share"}
	result := a.ToString()

	if !strings.Contains(result, "a1") || !strings.Contains(result, "share") {
		t.Errorf("ToString() should contain id and verb, got: %s", result)
	}
}
