package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/feed"
	"github.com/deemkeen/don/util"
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

type fakeFetcher struct {
	activities []domain.Activity
	err        error
	got        domain.Filter
}

func (f *fakeFetcher) FetchTimeline(ctx context.Context, filter domain.Filter) ([]domain.Activity, error) {
	f.got = filter
	return f.activities, f.err
}

type fakeDialer struct {
	stream string
	err    error
	gotQ   string
}

func (d *fakeDialer) Dial(ctx context.Context, filter domain.Filter) (feed.Stream, error) {
	d.gotQ = filter.Q
	if d.err != nil {
		return nil, d.err
	}
	return feed.NewSubscription(io.NopCloser(strings.NewReader(d.stream)), nil, nil), nil
}

type fakeArchive struct {
	mu    sync.Mutex
	saved []domain.Activity
}

func (a *fakeArchive) SaveActivities(activities []domain.Activity) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = append(a.saved, activities...)
	return len(activities), nil
}

func (a *fakeArchive) ReadRecentActivities(limit int) ([]domain.Activity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saved, nil
}

func testConf() *util.AppConfig {
	conf := &util.AppConfig{}
	conf.Conf.Host = "localhost"
	conf.Conf.HttpPort = 9797
	conf.Conf.SshPort = 23235
	conf.Conf.PageSize = 20
	return conf
}

func webActivity(id, actor string, at time.Time, content string) domain.Activity {
	return domain.Activity{
		ID:        id,
		Permalink: "https://example.com/" + id,
		Actor:     &domain.Person{ID: actor, DisplayName: &actor},
		Verb:      domain.VerbPost,
		Time:      at,
		Object:    domain.Object{ID: "o-" + id, Content: &content},
	}
}

func serve(s *Server, method, target string, header map[string]string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleIndexRendersTimeline(t *testing.T) {
	base := time.Now().Add(-2 * time.Hour)
	fetcher := &fakeFetcher{activities: []domain.Activity{
		webActivity("older", "alice", base, "<p>first &amp; oldest</p>"),
		webActivity("newer", "bob", base.Add(time.Hour), "<p>second</p>"),
	}}
	s := NewServer(testConf(), fetcher, &fakeDialer{}, nil, nil)

	w := serve(s, "GET", "/?q=cats", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()

	if fetcher.got.Q != "cats" {
		t.Errorf("Expected filter q 'cats', got '%s'", fetcher.got.Q)
	}
	if !strings.Contains(body, "first &amp; oldest") {
		t.Error("Expected stripped activity content in page")
	}
	if strings.Index(body, `id="newer"`) > strings.Index(body, `id="older"`) {
		t.Error("Expected newest activity first")
	}
	if !strings.Contains(body, `<script id="app-state" type="application/json">`) {
		t.Error("Expected embedded state script")
	}
	if !strings.Contains(body, `"publicTimeline":{"loading":false`) {
		t.Error("Expected embedded state JSON")
	}
}

func TestHandleIndexJSON(t *testing.T) {
	fetcher := &fakeFetcher{activities: []domain.Activity{webActivity("a", "alice", time.Now(), "hi")}}
	s := NewServer(testConf(), fetcher, &fakeDialer{}, nil, nil)

	w := serve(s, "GET", "/", map[string]string{"Accept": "application/json"})

	var resp struct {
		PublicTimeline struct {
			Activities []domain.Activity `json:"activities"`
		} `json:"publicTimeline"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Expected JSON body, got error %v: %s", err, w.Body.String())
	}
	if len(resp.PublicTimeline.Activities) != 1 || resp.PublicTimeline.Activities[0].ID != "a" {
		t.Errorf("Unexpected activities %+v", resp.PublicTimeline.Activities)
	}
}

func TestHandleIndexFetchError(t *testing.T) {
	s := NewServer(testConf(), &fakeFetcher{err: errors.New("backend down")}, &fakeDialer{}, nil, nil)

	w := serve(s, "GET", "/", nil)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "backend down") {
		t.Error("Expected the error to be shown")
	}
	if !strings.Contains(w.Body.String(), `"error":"backend down"`) {
		t.Error("Expected the error in the embedded state")
	}
}

func TestHandleIndexBadFilter(t *testing.T) {
	s := NewServer(testConf(), &fakeFetcher{}, &fakeDialer{}, nil, nil)

	w := serve(s, "GET", "/?before=yesterday", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestFeedRSS(t *testing.T) {
	fetcher := &fakeFetcher{activities: []domain.Activity{webActivity("a", "alice", time.Now(), "<b>hello rss</b>")}}
	s := NewServer(testConf(), fetcher, &fakeDialer{}, nil, nil)

	w := serve(s, "GET", "/feed.rss?q=cats", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<rss") {
		t.Error("Expected RSS document")
	}
	if !strings.Contains(body, "don public timeline - cats") {
		t.Error("Expected filtered feed title")
	}
	if !strings.Contains(body, "https://example.com/a") {
		t.Error("Expected activity permalink")
	}
}

func TestFeedRSSFallsBackToArchive(t *testing.T) {
	archive := &fakeArchive{saved: []domain.Activity{webActivity("archived", "alice", time.Now(), "kept")}}
	s := NewServer(testConf(), &fakeFetcher{err: errors.New("down")}, &fakeDialer{}, archive, nil)

	w := serve(s, "GET", "/feed.rss", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "https://example.com/archived") {
		t.Error("Expected archived activity in feed")
	}
}

func TestFeedRSSWithoutArchive(t *testing.T) {
	s := NewServer(testConf(), &fakeFetcher{err: errors.New("down")}, &fakeDialer{}, nil, nil)

	w := serve(s, "GET", "/feed.rss", nil)

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", w.Code)
	}
}

func TestHandleFeedRelaysAndArchives(t *testing.T) {
	gin.SetMode(gin.TestMode)

	upstream := strings.Join([]string{
		"event: activity\ndata: {\"id\":\"a\",\"verb\":\"post\"}\n",
		"event: activity\ndata: broken\n",
		"event: activity\ndata: {\"id\":\"b\",\"verb\":\"post\"}\n",
	}, "\n") + "\n"
	dialer := &fakeDialer{stream: upstream}
	archive := &fakeArchive{}
	s := NewServer(testConf(), &fakeFetcher{}, dialer, archive, nil)

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/feed?q=cats")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Expected event stream, got '%s'", ct)
	}

	events, err := sse.Decode(resp.Body)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 relayed events, got %d", len(events))
	}
	if events[0].Event != "activity" || events[0].Id != "a" {
		t.Errorf("Unexpected first event %+v", events[0])
	}
	if dialer.gotQ != "cats" {
		t.Errorf("Expected upstream q 'cats', got '%s'", dialer.gotQ)
	}
	if len(archive.saved) != 2 {
		t.Errorf("Expected 2 archived activities, got %d", len(archive.saved))
	}
}

func TestHandleFeedUpstreamDown(t *testing.T) {
	s := NewServer(testConf(), &fakeFetcher{}, &fakeDialer{err: errors.New("refused")}, nil, nil)

	w := serve(s, "GET", "/api/feed", nil)

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", w.Code)
	}
}
