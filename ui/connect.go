package ui

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/don/api"
	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/feed"
	"github.com/deemkeen/don/store"
)

// Connect builds a session against the backend at baseURL. When snapshots is
// not nil the store starts from the state persisted for filter. The login is
// never restored since the session cookie does not survive.
func Connect(ctx context.Context, baseURL string, snapshots store.SnapshotStore, filter domain.Filter, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}

	client := api.New(baseURL, api.WithLogger(logger))

	initial := store.DefaultState()
	if snapshots != nil {
		initial = store.Restore(snapshots, filter)
		initial.Authentication = store.DefaultAuthState()
	}

	st := store.New(store.WithState(initial), store.WithLogger(logger))
	dialer := &feed.HTTPDialer{
		Client: client.StreamClient(),
		URL:    client.FeedURL,
		Logger: logger,
	}
	fm := feed.NewManager(dialer, st.LiveActivity, logger)

	return NewSession(ctx, st, client, fm, filter)
}

// Persist stores the state for the current filter
func (s *Session) Persist(snapshots store.SnapshotStore) error {
	return s.Store.Persist(snapshots, s.Filter())
}
