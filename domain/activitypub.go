package domain

import (
	"fmt"
	"time"
)

// Person is the actor of an activity as the backend reports it
type Person struct {
	ID          string    `json:"id"`
	Host        string    `json:"host,omitempty"`
	FirstSeen   time.Time `json:"firstSeen,omitzero"`
	Permalink   string    `json:"permalink"`
	DisplayName *string   `json:"displayName"`
	Avatar      *string   `json:"avatar"`
	Summary     *string   `json:"summary,omitempty"`
}

// Object is the thing an activity acts upon (a note, a comment, ...)
type Object struct {
	ID                  string  `json:"id"`
	Name                *string `json:"name,omitempty"`
	Summary             *string `json:"summary,omitempty"`
	RepresentativeImage *string `json:"representativeImage,omitempty"`
	Permalink           *string `json:"permalink"`
	ObjectType          *string `json:"objectType"`
	Content             *string `json:"content"`
}

// Activity is one entry of the public timeline. Id is unique within a timeline,
// Time is the display sort key and is not monotonic in arrival order.
type Activity struct {
	ID           string    `json:"id"`
	Permalink    string    `json:"permalink"`
	ActorID      *string   `json:"actorID,omitempty"`
	Actor        *Person   `json:"actor"`
	ObjectID     string    `json:"objectID,omitempty"`
	Object       Object    `json:"object"`
	Verb         string    `json:"verb"`
	Time         time.Time `json:"time"`
	Title        string    `json:"title,omitempty"`
	InReplyToID  *string   `json:"inReplyToID,omitempty"`
	InReplyToURL *string   `json:"inReplyToURL,omitempty"`
}

// ActorName returns the best human readable name of the actor
func (a *Activity) ActorName() string {
	if a.Actor == nil {
		return "unknown"
	}
	if a.Actor.DisplayName != nil && *a.Actor.DisplayName != "" {
		return *a.Actor.DisplayName
	}
	if a.Actor.Permalink != "" {
		return a.Actor.Permalink
	}
	return a.Actor.ID
}

// Content returns the object content or an empty string
func (a *Activity) Content() string {
	if a.Object.Content == nil {
		return ""
	}
	return *a.Object.Content
}

func (a *Activity) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tVerb: %s \n\tActor: %s \n\tTime: %s)", a.ID, a.Verb, a.ActorName(), a.Time)
}
