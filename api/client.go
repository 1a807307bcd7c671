package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/util"
)

const maxBodySize = 4 << 20

// ErrResponseTooLarge is returned for response bodies over 4 MiB
var ErrResponseTooLarge = errors.New("response too large")

// Client talks to the don backend. Session cookies are kept between calls.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	logger    *log.Logger
}

type Option func(*Client)

// WithHTTPClient uses a copy of c. A copy without a cookie jar gets one, c
// itself is never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New creates a client. baseURL is prefixed to every request path and may be
// empty for same-origin use behind a proxy.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		userAgent: fmt.Sprintf("%s/%s", util.Name, util.GetVersion()),
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.http
	if hc.Jar == nil {
		jar, _ := cookiejar.New(nil)
		hc.Jar = jar
	}
	c.http = &hc
	return c
}

// URL resolves a backend path against the base URL
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

// FeedURL is the live stream endpoint for the topic q
func (c *Client) FeedURL(q string) string {
	return c.URL("/api/feed?" + url.Values{"q": {q}}.Encode())
}

// StreamClient shares the session cookies of the client but has no overall
// timeout, so it can hold a live feed open.
func (c *Client) StreamClient() *http.Client {
	sc := *c.http
	sc.Timeout = 0
	return &sc
}

type timelineResponse struct {
	PublicTimeline *struct {
		Activities []json.RawMessage `json:"activities"`
	} `json:"publicTimeline"`
	Posts []json.RawMessage `json:"posts"`
}

// FetchTimeline loads the public timeline for filter. Records that cannot be
// normalized are skipped.
func (c *Client) FetchTimeline(ctx context.Context, filter domain.Filter) ([]domain.Activity, error) {
	path := "/"
	if v := filter.Values(); len(v) > 0 {
		path += "?" + v.Encode()
	}

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	raws, err := timelineItems(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timeline: %w", err)
	}

	return domain.NormalizeItems(raws, func(raw []byte, err error) {
		c.logger.Debug("skipping timeline item", "err", err)
	}), nil
}

func timelineItems(body []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var raws []json.RawMessage
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, err
		}
		return raws, nil
	}

	var resp timelineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.PublicTimeline != nil {
		return resp.PublicTimeline.Activities, nil
	}
	if resp.Posts != nil {
		return resp.Posts, nil
	}
	return nil, fmt.Errorf("no activities in response")
}

type userResponse struct {
	User *domain.User `json:"user"`
}

// Login authenticates with username and password
func (c *Client) Login(ctx context.Context, username, password string) (*domain.User, error) {
	return c.postUser(ctx, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
}

// Register creates an account and logs it in
func (c *Client) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	return c.postUser(ctx, "/register", url.Values{
		"email":    {email},
		"username": {username},
		"password": {password},
	})
}

// Logout ends the session of the cookie jar
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/logout", nil)
	return err
}

func (c *Client) postUser(ctx context.Context, path string, form url.Values) (*domain.User, error) {
	body, err := c.do(ctx, http.MethodPost, path, form)
	if err != nil {
		return nil, err
	}

	var resp userResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%s response without user", path)
	}
	return resp.User, nil
}

// do sends a request and returns the body of a 2xx response. form is sent
// url-encoded when not nil.
func (c *Client) do(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrResponseTooLarge)
	}

	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       decodeBody(body),
		}
	}

	return body, nil
}
