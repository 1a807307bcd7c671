package store

import (
	"encoding/json"
	"errors"

	"github.com/deemkeen/don/domain"
)

// TimelineState is the public timeline as the client knows it. Activities is
// nil until the first successful load.
type TimelineState struct {
	Loading    bool
	Activities []domain.Activity
	Err        error
}

// Loaded reports whether a snapshot was ever applied
func (s TimelineState) Loaded() bool {
	return s.Activities != nil
}

// BeginLoad marks a fetch as in flight. Activities are kept.
func BeginLoad(s TimelineState) TimelineState {
	s.Loading = true
	s.Err = nil
	return s
}

// LoadSucceeded replaces the activities wholesale with a fetched snapshot.
// The snapshot is clipped so later appends never write into the caller's
// backing array.
func LoadSucceeded(s TimelineState, activities []domain.Activity) TimelineState {
	if activities == nil {
		activities = []domain.Activity{}
	}
	s.Loading = false
	s.Err = nil
	s.Activities = activities[:len(activities):len(activities)]
	return s
}

// LoadFailed records a failed fetch. Activities are kept.
func LoadFailed(s TimelineState, err error) TimelineState {
	s.Loading = false
	s.Err = err
	return s
}

// ItemArrived appends a live activity in amortized O(1). The backing array of
// s.Activities may be reused, so s must not be reduced again after the call.
func ItemArrived(s TimelineState, activity domain.Activity) TimelineState {
	s.Activities = append(s.Activities, activity)
	return s
}

type timelineJSON struct {
	Loading    bool              `json:"loading"`
	Activities []domain.Activity `json:"activities"`
	Error      *string           `json:"error"`
}

func (s TimelineState) MarshalJSON() ([]byte, error) {
	v := timelineJSON{Loading: s.Loading, Activities: s.Activities}
	if s.Err != nil {
		msg := s.Err.Error()
		v.Error = &msg
	}
	return json.Marshal(v)
}

func (s *TimelineState) UnmarshalJSON(b []byte) error {
	var v timelineJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s.Loading = v.Loading
	s.Activities = v.Activities
	s.Err = nil
	if v.Error != nil {
		s.Err = errors.New(*v.Error)
	}
	return nil
}
