package domain

import (
	"fmt"
	"net/url"
	"time"
)

// Filter selects the historical window of the timeline (Before, After) and the
// live stream topic (Q). Zero values mean unset.
type Filter struct {
	Before time.Time
	After  time.Time
	Q      string
}

// Values renders the filter as timeline query parameters
func (f Filter) Values() url.Values {
	v := url.Values{}
	if !f.Before.IsZero() {
		v.Set("before", f.Before.UTC().Format(time.RFC3339))
	}
	if !f.After.IsZero() {
		v.Set("after", f.After.UTC().Format(time.RFC3339))
	}
	if f.Q != "" {
		v.Set("q", f.Q)
	}
	return v
}

// Key identifies the filter, e.g. for persisted snapshots
func (f Filter) Key() string {
	return f.Values().Encode()
}

// SameStream reports whether both filters select the same live stream
func (f Filter) SameStream(other Filter) bool {
	return f.Q == other.Q
}

// ParseFilter reads a filter from query parameters. Timestamps are RFC 3339.
func ParseFilter(v url.Values) (Filter, error) {
	var f Filter
	f.Q = v.Get("q")

	if s := v.Get("before"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return f, fmt.Errorf("invalid before: %w", err)
		}
		f.Before = t
	}

	if s := v.Get("after"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return f, fmt.Errorf("invalid after: %w", err)
		}
		f.After = t
	}

	return f, nil
}
