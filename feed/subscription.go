package feed

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/don/domain"
)

// Stream is an open live feed
type Stream interface {
	// Activities yields the activities of the stream. It can be ranged over
	// once and ends when the stream is closed or the server ends it.
	Activities() iter.Seq[domain.Activity]
	Close() error
}

// Subscription is a Stream reading server-sent events from a response body
type Subscription struct {
	body      io.ReadCloser
	cancel    context.CancelFunc
	logger    *log.Logger
	started   atomic.Bool
	closeOnce sync.Once
}

// NewSubscription wraps an event stream body. cancel is called on Close and
// may be nil.
func NewSubscription(body io.ReadCloser, cancel context.CancelFunc, logger *log.Logger) *Subscription {
	if logger == nil {
		logger = log.Default()
	}
	return &Subscription{body: body, cancel: cancel, logger: logger}
}

// Activities returns a lazy sequence over the activity events. Payloads that
// do not normalize are dropped.
func (s *Subscription) Activities() iter.Seq[domain.Activity] {
	return func(yield func(domain.Activity) bool) {
		if !s.started.CompareAndSwap(false, true) {
			return
		}
		defer s.Close()

		err := readEvents(s.body, func(ev Event) bool {
			if ev.Name != EventActivity {
				return true
			}
			a, err := domain.NormalizeItem([]byte(ev.Data))
			if err != nil {
				s.logger.Debug("dropping feed payload", "err", err)
				return true
			}
			s.logger.Debug("feed activity", "activity", a.ToString())
			return yield(a)
		})
		if err != nil {
			s.logger.Debug("feed stream ended", "err", err)
		}
	}
}

// Close ends the stream. It is safe to call more than once and from another
// goroutine than the one ranging over Activities.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		err = s.body.Close()
	})
	return err
}

// HTTPDialer opens feeds with GET <feed url>
type HTTPDialer struct {
	Client *http.Client
	// URL builds the feed endpoint for the topic q
	URL    func(q string) string
	Logger *log.Logger
}

// Dial opens the stream for filter.Q. ctx bounds the handshake only, the
// stream lives until it is closed.
func (d *HTTPDialer) Dial(ctx context.Context, filter domain.Filter) (Stream, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, d.URL(filter.Q), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("feed request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("feed request failed with status: %d", resp.StatusCode)
	}

	return NewSubscription(resp.Body, cancel, d.Logger), nil
}
