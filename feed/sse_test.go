package feed

import (
	"strings"
	"testing"
)

func collect(t *testing.T, stream string) []Event {
	t.Helper()
	var events []Event
	if err := readEvents(strings.NewReader(stream), func(ev Event) bool {
		events = append(events, ev)
		return true
	}); err != nil {
		t.Fatalf("readEvents failed: %v", err)
	}
	return events
}

func TestReadEvents(t *testing.T) {
	tests := []struct {
		name     string
		stream   string
		expected []Event
	}{
		{
			name:     "named event",
			stream:   "event: activity\ndata: {\"id\":\"a\"}\n\n",
			expected: []Event{{Name: "activity", Data: `{"id":"a"}`}},
		},
		{
			name:     "without space",
			stream:   "event:activity\nid:7\ndata:x\n\n",
			expected: []Event{{Name: "activity", Data: "x", ID: "7"}},
		},
		{
			name:     "multi line data",
			stream:   "data: a\ndata: b\n\n",
			expected: []Event{{Data: "a\nb"}},
		},
		{
			name:     "comments and unknown fields",
			stream:   ": keepalive\nretry: 100\ndata: x\n\n",
			expected: []Event{{Data: "x"}},
		},
		{
			name:     "event without data is not dispatched",
			stream:   "event: activity\n\ndata: y\n\n",
			expected: []Event{{Data: "y"}},
		},
		{
			name:     "unterminated event is not dispatched",
			stream:   "data: a\n\ndata: b\n",
			expected: []Event{{Data: "a"}},
		},
		{
			name:     "crlf",
			stream:   "event: activity\r\ndata: z\r\n\r\n",
			expected: []Event{{Name: "activity", Data: "z"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := collect(t, tt.stream)
			if len(events) != len(tt.expected) {
				t.Fatalf("Expected %d events, got %d: %+v", len(tt.expected), len(events), events)
			}
			for i := range events {
				if events[i] != tt.expected[i] {
					t.Errorf("Expected %+v, got %+v", tt.expected[i], events[i])
				}
			}
		})
	}
}

func TestReadEventsStopsWhenYieldReturnsFalse(t *testing.T) {
	calls := 0
	readEvents(strings.NewReader("data: a\n\ndata: b\n\n"), func(Event) bool {
		calls++
		return false
	})

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestReadEventsSkipsOversizedEvent(t *testing.T) {
	huge := strings.Repeat("x", 2*maxLineSize)

	tests := []struct {
		name     string
		stream   string
		expected []Event
	}{
		{
			name:     "oversized data line",
			stream:   "event: activity\ndata: " + huge + "\n\nevent: activity\ndata: ok\n\n",
			expected: []Event{{Name: "activity", Data: "ok"}},
		},
		{
			name:     "oversized line drops the whole event",
			stream:   "data: before\ndata: " + huge + "\ndata: after\n\ndata: next\n\n",
			expected: []Event{{Data: "next"}},
		},
		{
			name:     "oversized comment",
			stream:   ":" + huge + "\r\n\r\ndata: ok\r\n\r\n",
			expected: []Event{{Data: "ok"}},
		},
		{
			name:     "line at the limit is kept",
			stream:   "data: " + strings.Repeat("y", maxLineSize-len("data: \n")) + "\n\n",
			expected: []Event{{Data: strings.Repeat("y", maxLineSize-len("data: \n"))}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := collect(t, tt.stream)
			if len(events) != len(tt.expected) {
				t.Fatalf("Expected %d events, got %d", len(tt.expected), len(events))
			}
			for i := range events {
				if events[i] != tt.expected[i] {
					t.Errorf("Expected event %d to be %q, got %q", i, tt.expected[i].Data, events[i].Data)
				}
			}
		})
	}
}
