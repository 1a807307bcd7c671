package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/don/domain"
)

// Hydrate decodes a persisted or embedded state. Anything that does not parse
// yields the default state. Loading flags are cleared since nothing is in
// flight in a fresh session.
func Hydrate(blob []byte) State {
	if len(strings.TrimSpace(string(blob))) == 0 {
		return DefaultState()
	}

	s := DefaultState()
	if err := json.Unmarshal(blob, &s); err != nil {
		log.Debug("ignoring unparsable initial state", "err", err)
		return DefaultState()
	}

	s.PublicTimeline.Loading = false
	s.Authentication.Loading = false
	return s
}

// SnapshotStore persists serialized states by filter key
type SnapshotStore interface {
	SaveSnapshot(key string, state []byte) error
	ReadSnapshot(key string) ([]byte, error)
}

// Restore reads the state persisted for filter. A missing or unreadable
// snapshot yields the default state.
func Restore(ss SnapshotStore, filter domain.Filter) State {
	blob, err := ss.ReadSnapshot(filter.Key())
	if err != nil {
		log.Debug("no persisted state", "filter", filter.Key(), "err", err)
		return DefaultState()
	}
	return Hydrate(blob)
}

// Persist stores the current state under the key of filter
func (s *Store) Persist(ss SnapshotStore, filter domain.Filter) error {
	blob, err := s.MarshalState()
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return ss.SaveSnapshot(filter.Key(), blob)
}
