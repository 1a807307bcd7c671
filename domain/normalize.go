package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMissingID = errors.New("timeline item without id")

// NormalizeItem decodes one timeline record. Records carrying a verb or an
// object are activities, everything else is read as a post and converted.
func NormalizeItem(raw []byte) (Activity, error) {
	var head struct {
		ID     string          `json:"id"`
		Verb   string          `json:"verb"`
		Object json.RawMessage `json:"object"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return Activity{}, fmt.Errorf("decoding timeline item: %w", err)
	}
	if head.ID == "" {
		return Activity{}, ErrMissingID
	}

	if head.Verb != "" || len(head.Object) > 0 {
		var a Activity
		if err := json.Unmarshal(raw, &a); err != nil {
			return Activity{}, fmt.Errorf("decoding activity %s: %w", head.ID, err)
		}
		return a, nil
	}

	var p Post
	if err := json.Unmarshal(raw, &p); err != nil {
		return Activity{}, fmt.Errorf("decoding post %s: %w", head.ID, err)
	}
	return p.Activity(), nil
}

// NormalizeItems normalizes a list of records. Records that cannot be
// normalized are skipped and reported through skipped.
func NormalizeItems(raws []json.RawMessage, skipped func(raw []byte, err error)) []Activity {
	activities := make([]Activity, 0, len(raws))
	for _, raw := range raws {
		a, err := NormalizeItem(raw)
		if err != nil {
			if skipped != nil {
				skipped(raw, err)
			}
			continue
		}
		activities = append(activities, a)
	}
	return activities
}
