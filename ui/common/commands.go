package common

import (
	"github.com/deemkeen/don/feed"
	"github.com/deemkeen/don/store"
)

type SessionState uint

const (
	TimelineView SessionState = iota
	LoginView
	RegisterView
)

// StateMsg carries the latest store state into the update loop
type StateMsg struct {
	State store.State
}

// FeedStatusMsg reports the live feed after a connect attempt
type FeedStatusMsg struct {
	State feed.State
	Err   error
}

// FilterMsg asks for the timeline of the topic Q
type FilterMsg struct {
	Q string
}

// RefreshMsg asks for a fresh timeline snapshot
type RefreshMsg struct{}

type LoginMsg struct {
	Username string
	Password string
}

type RegisterMsg struct {
	Email    string
	Username string
	Password string
}

type LogoutMsg struct{}

// AuthDoneMsg ends a login, register or logout call. Err is nil on success.
type AuthDoneMsg struct {
	Err error
}
