package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/feed"
	"github.com/deemkeen/don/store"
	"github.com/deemkeen/don/ui/common"
)

// Backend is what the views need from the HTTP collaborator
type Backend interface {
	store.TimelineFetcher
	store.Authenticator
}

// Session wires one viewer: its store, the backend and the live feed
type Session struct {
	Store   *store.Store
	Backend Backend
	Feed    *feed.Manager

	mu         sync.Mutex
	filter     domain.Filter
	connectSeq uint64

	// held from the sequence check until Connect returns
	connectMu sync.Mutex

	ctx         context.Context
	updates     chan store.State
	unsubscribe func()
	closeOnce   sync.Once
}

// NewSession subscribes to st. Close must be called when the program ends.
func NewSession(ctx context.Context, st *store.Store, backend Backend, fm *feed.Manager, filter domain.Filter) *Session {
	s := &Session{
		Store:   st,
		Backend: backend,
		Feed:    fm,
		filter:  filter,
		ctx:     ctx,
		updates: make(chan store.State, 1),
	}
	s.unsubscribe = st.Subscribe(s.publish)
	return s
}

// Filter is the filter the viewer currently looks at
func (s *Session) Filter() domain.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *Session) SetFilter(f domain.Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

// publish never blocks the store: a pending state nobody picked up yet is
// replaced by the newer one
func (s *Session) publish(st store.State) {
	select {
	case s.updates <- st:
		return
	default:
	}
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- st:
	default:
	}
}

// Close stops the state updates and the live feed
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.unsubscribe()
		if s.Feed != nil {
			s.Feed.Disconnect()
		}
	})
}

func (s *Session) waitForState() tea.Cmd {
	return func() tea.Msg {
		select {
		case st := <-s.updates:
			return common.StateMsg{State: st}
		case <-s.ctx.Done():
			return nil
		}
	}
}

// fetchCmd starts the fetch right away so that the latest call wins no
// matter in which order the commands run
func (s *Session) fetchCmd(filter domain.Filter) tea.Cmd {
	gen := s.Store.BeginFetch()
	return func() tea.Msg {
		s.Store.CompleteFetch(s.ctx, s.Backend, filter, gen)
		return nil
	}
}

// ensureCmd fetches only when the timeline was never loaded and no fetch is
// in flight
func (s *Session) ensureCmd(filter domain.Filter) tea.Cmd {
	st := s.Store.State().PublicTimeline
	if st.Loaded() || st.Loading {
		return nil
	}
	return s.fetchCmd(filter)
}

// connectCmd opens the live feed for filter unless a newer connect was
// requested before it ran
func (s *Session) connectCmd(filter domain.Filter) tea.Cmd {
	if s.Feed == nil {
		return nil
	}

	s.mu.Lock()
	s.connectSeq++
	seq := s.connectSeq
	s.mu.Unlock()

	return func() tea.Msg {
		s.connectMu.Lock()
		defer s.connectMu.Unlock()

		if !s.latestConnect(seq) {
			return nil
		}
		err := s.Feed.Connect(s.ctx, filter)
		return common.FeedStatusMsg{State: s.Feed.State(), Err: err}
	}
}

func (s *Session) latestConnect(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectSeq == seq
}

// feedConnected reports whether a live feed is open
func (s *Session) feedConnected() bool {
	return s.Feed != nil && s.Feed.State().Connected
}

func (s *Session) loginCmd(msg common.LoginMsg) tea.Cmd {
	return func() tea.Msg {
		return common.AuthDoneMsg{Err: s.Store.Login(s.ctx, s.Backend, msg.Username, msg.Password)}
	}
}

func (s *Session) registerCmd(msg common.RegisterMsg) tea.Cmd {
	return func() tea.Msg {
		return common.AuthDoneMsg{Err: s.Store.Register(s.ctx, s.Backend, msg.Email, msg.Username, msg.Password)}
	}
}

func (s *Session) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		return common.AuthDoneMsg{Err: s.Store.Logout(s.ctx, s.Backend)}
	}
}
