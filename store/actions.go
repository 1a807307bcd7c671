package store

import "github.com/deemkeen/don/domain"

// Action is a state transition. The set of actions is closed: every action
// type implements its own reduction, so there is no unhandled case.
type Action interface {
	Name() string
	reduce(State) State
}

// TimelineLoading starts a timeline fetch
type TimelineLoading struct{}

// TimelineLoaded replaces the timeline with a fetched snapshot
type TimelineLoaded struct {
	Activities []domain.Activity
}

// TimelineFailed records a failed timeline fetch
type TimelineFailed struct {
	Err error
}

// ActivityArrived appends one live activity
type ActivityArrived struct {
	Activity domain.Activity
}

// AuthLoading starts a login, register or logout call
type AuthLoading struct{}

// AuthSucceeded stores the user returned by login or register
type AuthSucceeded struct {
	User *domain.User
}

// AuthFailed stores a normalized error message
type AuthFailed struct {
	Message string
}

// AuthReset returns authentication to its default after logout
type AuthReset struct{}

func (TimelineLoading) Name() string { return "don/publicTimeline/LOADING" }
func (TimelineLoaded) Name() string  { return "don/publicTimeline/LOADED" }
func (TimelineFailed) Name() string  { return "don/publicTimeline/ERROR" }
func (ActivityArrived) Name() string { return "don/publicTimeline/ADD" }
func (AuthLoading) Name() string     { return "don/authentication/LOADING" }
func (AuthSucceeded) Name() string   { return "don/authentication/SUCCESS" }
func (AuthFailed) Name() string      { return "don/authentication/ERROR" }
func (AuthReset) Name() string       { return "don/authentication/RESET" }

func (a TimelineLoading) reduce(s State) State {
	s.PublicTimeline = BeginLoad(s.PublicTimeline)
	return s
}

func (a TimelineLoaded) reduce(s State) State {
	s.PublicTimeline = LoadSucceeded(s.PublicTimeline, a.Activities)
	return s
}

func (a TimelineFailed) reduce(s State) State {
	s.PublicTimeline = LoadFailed(s.PublicTimeline, a.Err)
	return s
}

func (a ActivityArrived) reduce(s State) State {
	s.PublicTimeline = ItemArrived(s.PublicTimeline, a.Activity)
	return s
}

func (a AuthLoading) reduce(s State) State {
	s.Authentication = authLoading(s.Authentication)
	return s
}

func (a AuthSucceeded) reduce(s State) State {
	s.Authentication = authSucceeded(s.Authentication, a.User)
	return s
}

func (a AuthFailed) reduce(s State) State {
	s.Authentication = authFailed(s.Authentication, a.Message)
	return s
}

func (a AuthReset) reduce(s State) State {
	s.Authentication = DefaultAuthState()
	return s
}

// State combines both stores
type State struct {
	Authentication AuthState     `json:"authentication"`
	PublicTimeline TimelineState `json:"publicTimeline"`
}

func DefaultState() State {
	return State{}
}

// Reduce applies a to s
func Reduce(s State, a Action) State {
	return a.reduce(s)
}
