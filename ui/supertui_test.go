package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/store"
	"github.com/deemkeen/don/ui/common"
)

type fakeBackend struct {
	activities []domain.Activity
	fetches    int
	loginErr   error
}

func (b *fakeBackend) FetchTimeline(ctx context.Context, filter domain.Filter) ([]domain.Activity, error) {
	b.fetches++
	return b.activities, nil
}

func (b *fakeBackend) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if b.loginErr != nil {
		return nil, b.loginErr
	}
	return &domain.User{ID: "1", Username: username}, nil
}

func (b *fakeBackend) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	return &domain.User{ID: "2", Username: username}, nil
}

func (b *fakeBackend) Logout(ctx context.Context) error {
	return nil
}

func newTestModel(t *testing.T, backend *fakeBackend) (MainModel, *Session) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sess := NewSession(ctx, store.New(), backend, nil, domain.Filter{})
	t.Cleanup(sess.Close)
	return NewModel(sess, 100, 40), sess
}

func update(m MainModel, msg tea.Msg) (MainModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(MainModel), cmd
}

func TestLoginSwitchesBackToTimeline(t *testing.T) {
	m, sess := newTestModel(t, &fakeBackend{})

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != common.LoginView {
		t.Fatalf("Expected login view, got %v", m.state)
	}

	m, cmd := update(m, common.LoginMsg{Username: "alice", Password: "pw"})
	done := cmd()
	m, _ = update(m, done)

	if m.state != common.TimelineView {
		t.Errorf("Expected timeline view after login, got %v", m.state)
	}
	if u := sess.Store.State().Authentication.User; u == nil || u.Username != "alice" {
		t.Errorf("Expected alice to be logged in, got %+v", u)
	}
}

func TestFailedLoginStaysOnForm(t *testing.T) {
	m, sess := newTestModel(t, &fakeBackend{loginErr: errors.New("bad credentials")})

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	m, cmd := update(m, common.LoginMsg{Username: "alice", Password: "wrong"})
	m, _ = update(m, cmd())

	if m.state != common.LoginView {
		t.Errorf("Expected to stay on the login view, got %v", m.state)
	}
	if e := sess.Store.State().Authentication.Error; e != "bad credentials" {
		t.Errorf("Expected 'bad credentials', got '%s'", e)
	}
}

func TestStateUpdatesReachTheTimeline(t *testing.T) {
	backend := &fakeBackend{activities: []domain.Activity{{ID: "a", Verb: "post", Time: time.Now()}}}
	m, sess := newTestModel(t, backend)

	sess.fetchCmd(domain.Filter{})()

	msg := sess.waitForState()()
	st, ok := msg.(common.StateMsg)
	if !ok {
		t.Fatalf("Expected StateMsg, got %#v", msg)
	}
	if st.State.PublicTimeline.Loading {
		t.Error("Expected the latest state to win over the loading state")
	}

	m, _ = update(m, st)
	if len(m.timelineModel.Activities) != 1 {
		t.Errorf("Expected 1 activity in the timeline, got %d", len(m.timelineModel.Activities))
	}
}

func TestFilterRefetches(t *testing.T) {
	backend := &fakeBackend{}
	m, sess := newTestModel(t, backend)

	m, cmd := update(m, common.FilterMsg{Q: "cats"})
	if m.filter.Q != "cats" || sess.Filter().Q != "cats" {
		t.Errorf("Expected filter cats, got %+v", m.filter)
	}

	// fetch only; there is no feed manager in this session
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c != nil {
				c()
			}
		}
	}

	if backend.fetches != 1 {
		t.Errorf("Expected 1 fetch, got %d", backend.fetches)
	}
}

func TestTabOnlyCyclesWhenLoggedOut(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{})
	m.user = &domain.User{ID: "1", Username: "alice"}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != common.TimelineView {
		t.Errorf("Expected to stay on the timeline, got %v", m.state)
	}
}

func TestSessionCloseStopsWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sess := NewSession(ctx, store.New(), &fakeBackend{}, nil, domain.Filter{})
	defer sess.Close()

	cancel()
	if msg := sess.waitForState()(); msg != nil {
		t.Errorf("Expected nil after cancel, got %#v", msg)
	}
}
