package domain

import (
	"testing"
	"time"
)

func TestPostActivity(t *testing.T) {
	now := time.Date(2017, time.March, 4, 10, 0, 0, 0, time.UTC)
	post := Post{
		ID:          "tag:example.com,2017:post/1",
		AuthorName:  strPtr("Bob"),
		AuthorAcct:  strPtr("bob@example.com"),
		Time:        now,
		ContentHTML: "<p>hello</p>",
	}

	a := post.Activity()

	if a.ID != post.ID {
		t.Errorf("Expected ID '%s', got '%s'", post.ID, a.ID)
	}
	if a.Verb != VerbPost {
		t.Errorf("Expected Verb '%s', got '%s'", VerbPost, a.Verb)
	}
	if !a.Time.Equal(now) {
		t.Errorf("Expected Time %v, got %v", now, a.Time)
	}
	if a.Content() != "<p>hello</p>" {
		t.Errorf("Expected content '<p>hello</p>', got '%s'", a.Content())
	}
	if a.ActorName() != "Bob" {
		t.Errorf("Expected actor 'Bob', got '%s'", a.ActorName())
	}
	if a.Actor.ID != "bob@example.com" {
		t.Errorf("Expected actor id 'bob@example.com', got '%s'", a.Actor.ID)
	}
	if a.Object.ObjectType == nil || *a.Object.ObjectType != ObjectTypeNote {
		t.Error("Expected object type note")
	}
}

func TestPostActivityWithoutAuthor(t *testing.T) {
	post := Post{ID: "1", ContentText: "plain"}

	a := post.Activity()

	if a.Actor != nil {
		t.Error("Expected nil actor for a post without author")
	}
	if a.ActorName() != "unknown" {
		t.Errorf("Expected 'unknown', got '%s'", a.ActorName())
	}
	if a.Content() != "plain" {
		t.Errorf("Expected text content fallback, got '%s'", a.Content())
	}
}
