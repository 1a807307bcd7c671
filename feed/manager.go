package feed

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/don/domain"
)

// Dialer opens a live stream for a filter
type Dialer interface {
	Dial(ctx context.Context, filter domain.Filter) (Stream, error)
}

// State of the manager. The zero value is Disconnected.
type State struct {
	Connected bool
	Filter    domain.Filter
}

type connection struct {
	filter domain.Filter
	stream Stream

	// held while an activity is delivered
	mu     sync.Mutex
	closed bool
}

// Manager keeps at most one live subscription open and delivers its
// activities to the sink.
type Manager struct {
	mu      sync.Mutex
	dialer  Dialer
	sink    func(domain.Activity)
	current *connection
	logger  *log.Logger
}

// NewManager creates a disconnected manager. The sink must not call back into
// the manager.
func NewManager(dialer Dialer, sink func(domain.Activity), logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{dialer: dialer, sink: sink, logger: logger}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return State{}
	}
	return State{Connected: true, Filter: m.current.filter}
}

// Connect opens a subscription for filter. An open subscription is closed
// first, so Connect while connected behaves as Reconnect.
func (m *Manager) Connect(ctx context.Context, filter domain.Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.disconnectLocked()

	stream, err := m.dialer.Dial(ctx, filter)
	if err != nil {
		m.logger.Warn("feed connect failed", "q", filter.Q, "err", err)
		return err
	}

	c := &connection{filter: filter, stream: stream}
	m.current = c
	m.logger.Debug("feed connected", "q", filter.Q)

	go m.consume(c)
	return nil
}

// Disconnect closes the open subscription, if any. Once it returns no
// activity of that subscription reaches the sink anymore.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnectLocked()
}

// Reconnect replaces the subscription with one for filter
func (m *Manager) Reconnect(ctx context.Context, filter domain.Filter) error {
	return m.Connect(ctx, filter)
}

func (m *Manager) disconnectLocked() {
	c := m.current
	if c == nil {
		return
	}
	m.current = nil

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	if err := c.stream.Close(); err != nil {
		m.logger.Debug("closing feed", "err", err)
	}
	m.logger.Debug("feed disconnected", "q", c.filter.Q)
}

func (m *Manager) consume(c *connection) {
	for a := range c.stream.Activities() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		m.sink(a)
		c.mu.Unlock()
	}

	m.mu.Lock()
	if m.current == c {
		m.current = nil
		m.logger.Info("feed ended by server", "q", c.filter.Q)
	}
	m.mu.Unlock()
}
