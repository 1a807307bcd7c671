package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/store"
)

type memSnapshots map[string][]byte

func (m memSnapshots) SaveSnapshot(key string, state []byte) error {
	m[key] = state
	return nil
}

func (m memSnapshots) ReadSnapshot(key string) ([]byte, error) {
	b, ok := m[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

func TestConnectRestoresTimelineButNotLogin(t *testing.T) {
	filter := domain.Filter{Q: "cats"}
	seeded := store.New()
	seeded.Dispatch(store.TimelineLoaded{Activities: []domain.Activity{{ID: "a", Verb: "post", Time: time.Now()}}})
	seeded.Dispatch(store.AuthSucceeded{User: &domain.User{ID: "1", Username: "alice"}})

	snaps := memSnapshots{}
	if err := seeded.Persist(snaps, filter); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := Connect(ctx, "http://127.0.0.1:1", snaps, filter, nil)
	defer sess.Close()

	st := sess.Store.State()
	if len(st.PublicTimeline.Activities) != 1 {
		t.Errorf("Expected 1 restored activity, got %d", len(st.PublicTimeline.Activities))
	}
	if st.Authentication.User != nil {
		t.Errorf("Expected no restored user, got %+v", st.Authentication.User)
	}
	if sess.Filter().Q != "cats" {
		t.Errorf("Expected filter cats, got '%s'", sess.Filter().Q)
	}
	if sess.Feed.State().Connected {
		t.Error("Expected the feed to start disconnected")
	}
}

func TestSessionPersistUsesCurrentFilter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snaps := memSnapshots{}
	sess := Connect(ctx, "http://127.0.0.1:1", nil, domain.Filter{}, nil)
	defer sess.Close()

	sess.SetFilter(domain.Filter{Q: "dogs"})
	if err := sess.Persist(snaps); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	if _, ok := snaps[domain.Filter{Q: "dogs"}.Key()]; !ok {
		t.Errorf("Expected a snapshot for dogs, got keys %v", keys(snaps))
	}
}

func keys(m memSnapshots) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
