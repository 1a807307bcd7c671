package domain

import "time"

// Post is the earlier, flat timeline record. It is converted into an Activity
// before it reaches the store.
type Post struct {
	ID          string    `json:"id"`
	AuthorName  *string   `json:"authorName"`
	AuthorAcct  *string   `json:"authorAcct"`
	Time        time.Time `json:"time"`
	ContentHTML string    `json:"contentHTML"`
	ContentText string    `json:"contentText,omitempty"`
}

const (
	VerbPost       = "post"
	ObjectTypeNote = "note"
)

// Activity converts the post into the activity shape used by the stores
func (p *Post) Activity() Activity {
	objectType := ObjectTypeNote
	content := p.ContentHTML
	if content == "" {
		content = p.ContentText
	}

	var actor *Person
	if p.AuthorName != nil || p.AuthorAcct != nil {
		actor = &Person{DisplayName: p.AuthorName}
		if p.AuthorAcct != nil {
			actor.ID = *p.AuthorAcct
			actor.Permalink = *p.AuthorAcct
		}
	}

	return Activity{
		ID:        p.ID,
		Permalink: p.ID,
		Actor:     actor,
		ObjectID:  p.ID,
		Object: Object{
			ID:         p.ID,
			ObjectType: &objectType,
			Content:    &content,
		},
		Verb: VerbPost,
		Time: p.Time,
	}
}
