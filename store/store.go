package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/don/domain"
)

// ErrNoUser is reported when login or register succeed without a user
var ErrNoUser = errors.New("no user returned")

// TimelineFetcher loads a timeline snapshot for a filter
type TimelineFetcher interface {
	FetchTimeline(ctx context.Context, filter domain.Filter) ([]domain.Activity, error)
}

// Authenticator performs the authentication calls against the backend
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*domain.User, error)
	Register(ctx context.Context, email, username, password string) (*domain.User, error)
	Logout(ctx context.Context) error
}

// Listener receives the state after every applied action, in dispatch order.
// Listeners run synchronously and must not call back into the store.
type Listener func(State)

type listenerEntry struct {
	id int
	fn Listener
}

// Store holds the state of one client session. All transitions go through
// Dispatch and are serialized.
type Store struct {
	mu         sync.Mutex
	state      State
	generation uint64
	reconciler *reconciler
	listeners  []listenerEntry
	nextID     int

	// held while listeners run so notifications keep dispatch order
	notifyMu sync.Mutex

	logger *log.Logger
}

type Option func(*Store)

// WithState seeds the store, e.g. with a hydrated snapshot
func WithState(s State) Option {
	return func(st *Store) {
		st.state = s
	}
}

func WithLogger(l *log.Logger) Option {
	return func(st *Store) {
		st.logger = l
	}
}

// New creates a store in the default state unless seeded with WithState
func New(opts ...Option) *Store {
	s := &Store{
		state:  DefaultState(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reconciler = newReconciler(s.state.PublicTimeline.Activities)
	return s
}

// State returns the current state. The activity slice must be treated as read-only.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() State {
	st := s.state
	if a := st.PublicTimeline.Activities; a != nil {
		st.PublicTimeline.Activities = a[:len(a):len(a)]
	}
	return st
}

// Subscribe registers l and returns a func removing it again
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: l})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(e listenerEntry) bool {
			return e.id == id
		})
	}
}

// Dispatch applies a and notifies the listeners
func (s *Store) Dispatch(a Action) {
	s.dispatch(a, func() bool { return true })
}

func (s *Store) dispatch(a Action, current func() bool) {
	start := time.Now()

	s.mu.Lock()
	if !current() {
		s.mu.Unlock()
		s.logger.Debug("dropping stale action", "action", a.Name())
		return
	}
	if !s.apply(a) {
		s.mu.Unlock()
		s.logger.Debug("dropping duplicate action", "action", a.Name())
		return
	}
	state := s.snapshot()
	listeners := slices.Clone(s.listeners)

	s.notifyMu.Lock()
	s.mu.Unlock()
	for _, l := range listeners {
		l.fn(state)
	}
	s.notifyMu.Unlock()

	s.logger.Debug("dispatch", "action", a.Name(), "duration", time.Since(start))
}

// apply runs the reducer together with the reconciler bookkeeping. It
// reports false when the action was dropped. Must be called with mu held.
func (s *Store) apply(a Action) bool {
	switch a := a.(type) {
	case TimelineLoading:
		s.reconciler.begin()
	case TimelineFailed:
		s.reconciler.failed()
	case ActivityArrived:
		if !s.reconciler.admit(a.Activity) {
			return false
		}
	case TimelineLoaded:
		missing := s.reconciler.loaded(a.Activities)
		s.state = Reduce(s.state, a)
		for _, m := range missing {
			s.state = Reduce(s.state, ActivityArrived{Activity: m})
		}
		return true
	}

	s.state = Reduce(s.state, a)
	return true
}

// FetchTimeline loads the timeline for filter. Failures end up in the
// timeline error. A result that completes after a newer fetch was started is
// discarded.
func (s *Store) FetchTimeline(ctx context.Context, f TimelineFetcher, filter domain.Filter) {
	s.CompleteFetch(ctx, f, filter, s.BeginFetch())
}

// BeginFetch marks a fetch as in flight and returns its generation. Only the
// generation of the latest BeginFetch may complete into the store.
func (s *Store) BeginFetch() uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.dispatch(TimelineLoading{}, s.isGeneration(gen))
	return gen
}

// CompleteFetch runs the fetch started by BeginFetch as gen
func (s *Store) CompleteFetch(ctx context.Context, f TimelineFetcher, filter domain.Filter, gen uint64) {
	isCurrent := s.isGeneration(gen)

	activities, err := f.FetchTimeline(ctx, filter)
	if err != nil {
		s.logger.Warn("timeline fetch failed", "filter", filter.Key(), "err", err)
		s.dispatch(TimelineFailed{Err: err}, isCurrent)
		return
	}

	s.dispatch(TimelineLoaded{Activities: activities}, isCurrent)
}

// isGeneration is evaluated by dispatch with mu held
func (s *Store) isGeneration(gen uint64) func() bool {
	return func() bool { return s.generation == gen }
}

// EnsureTimeline fetches only when the timeline was never loaded
func (s *Store) EnsureTimeline(ctx context.Context, f TimelineFetcher, filter domain.Filter) {
	if s.State().PublicTimeline.Loaded() {
		return
	}
	s.FetchTimeline(ctx, f, filter)
}

// LiveActivity applies an activity delivered by a live subscription
func (s *Store) LiveActivity(a domain.Activity) {
	s.Dispatch(ActivityArrived{Activity: a})
}

// Login authenticates and stores the user. The error is returned as well so
// callers can skip follow-up navigation.
func (s *Store) Login(ctx context.Context, auth Authenticator, username, password string) error {
	s.Dispatch(AuthLoading{})

	user, err := auth.Login(ctx, username, password)
	if err == nil && user == nil {
		err = ErrNoUser
	}
	if err != nil {
		s.Dispatch(AuthFailed{Message: NormalizeError(err)})
		return err
	}

	s.logger.Debug("logged in", "user", user.ToString())
	s.Dispatch(AuthSucceeded{User: user})
	return nil
}

// Register creates an account and stores the user
func (s *Store) Register(ctx context.Context, auth Authenticator, email, username, password string) error {
	s.Dispatch(AuthLoading{})

	user, err := auth.Register(ctx, email, username, password)
	if err == nil && user == nil {
		err = ErrNoUser
	}
	if err != nil {
		s.Dispatch(AuthFailed{Message: NormalizeError(err)})
		return err
	}

	s.Dispatch(AuthSucceeded{User: user})
	return nil
}

// Logout ends the session and resets the authentication state
func (s *Store) Logout(ctx context.Context, auth Authenticator) error {
	s.Dispatch(AuthLoading{})

	if err := auth.Logout(ctx); err != nil {
		s.Dispatch(AuthFailed{Message: NormalizeError(err)})
		return err
	}

	s.Dispatch(AuthReset{})
	return nil
}

// MarshalState encodes the current state for embedding or persisting
func (s *Store) MarshalState() ([]byte, error) {
	return json.Marshal(s.State())
}
