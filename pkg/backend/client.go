// Package backend is the single gateway to the SmartShelf REST API.
//
// Every call goes through Client, which attaches the session's bearer
// token, applies the fixed timeout, and sorts failures into a small
// taxonomy:
//
//	ErrUnauthorized   401/403 on an authenticated call; the session is revoked
//	*RejectedError    any other non-2xx; Message is shown to the user
//	ErrUnavailable    no response at all (refused, reset, timed out)
//
// Calls are never retried.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/smartshelf/shelfweb/config"
	"github.com/smartshelf/shelfweb/pkg/event"
	shelfhttp "github.com/smartshelf/shelfweb/pkg/http"
	"github.com/smartshelf/shelfweb/pkg/logger"
	"github.com/smartshelf/shelfweb/pkg/metrics"
	"github.com/smartshelf/shelfweb/pkg/reqid"
)

// EventUnauthorized is fired on the bus after a session was revoked because
// the backend rejected its token. The payload is the endpoint template.
const EventUnauthorized = "backend.unauthorized"

// Credentials supplies the bearer token and is told when the backend
// rejects it. *session.Session satisfies it.
type Credentials interface {
	Token() string
	Revoke(ctx context.Context) error
}

// Config locates the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Bus     *event.Bus
}

// ConfigFromEnv reads API_BASE_URL and API_TIMEOUT.
func ConfigFromEnv(bus *event.Bus) Config {
	return Config{BaseURL: config.APIBaseURL(), Timeout: config.APITimeout(), Bus: bus}
}

// Client calls the backend on behalf of one set of credentials.
type Client struct {
	cfg   Config
	creds Credentials
}

// New returns a Client. A nil creds makes anonymous calls, used by the
// public auth endpoints; a 401/403 there is an ordinary rejection.
func New(cfg Config, creds Credentials) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, creds: creds}
}

// Get fetches path with query params into dest.
func (c *Client) Get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	return c.do(ctx, shelfhttp.Get(c.cfg.BaseURL+path).Query(params), path, dest)
}

// Post sends body as JSON and decodes the answer into dest.
func (c *Client) Post(ctx context.Context, path string, body, dest interface{}) error {
	return c.do(ctx, shelfhttp.Post(c.cfg.BaseURL+path).Body(body), path, dest)
}

// Put sends body (may be nil) and decodes the answer into dest.
func (c *Client) Put(ctx context.Context, path string, body, dest interface{}) error {
	req := shelfhttp.Put(c.cfg.BaseURL + path)
	if body != nil {
		req.Body(body)
	}
	return c.do(ctx, req, path, dest)
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string, dest interface{}) error {
	return c.do(ctx, shelfhttp.Delete(c.cfg.BaseURL+path), path, dest)
}

func (c *Client) do(ctx context.Context, req *shelfhttp.Request, path string, dest interface{}) error {
	endpoint := Template(path)
	method := req.Method()
	log := logger.WithCtx(ctx).With("endpoint", endpoint, "method", method)

	if c.creds != nil {
		req.Bearer(c.creds.Token())
	}
	if id := reqid.FromCtx(ctx); id != "" {
		req.Header(reqid.Header, id)
	}

	start := time.Now()
	resp, err := req.Timeout(c.cfg.Timeout).WithContext(ctx).Send()
	if err != nil {
		metrics.ObserveBackend(method, endpoint, 0, start)
		var te *shelfhttp.TransportError
		if errors.As(err, &te) {
			metrics.BackendFailures.WithLabelValues("unavailable").Inc()
			log.Warn("backend unreachable", "error", err, "timeout", te.Timeout())
			return ErrUnavailable
		}
		return fmt.Errorf("backend: %s %s: %w", method, endpoint, err)
	}
	metrics.ObserveBackend(method, endpoint, resp.StatusCode, start)

	if resp.OK() {
		return decode(resp, dest)
	}

	if (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) && c.creds != nil {
		metrics.BackendFailures.WithLabelValues("unauthorized").Inc()
		log.Warn("backend rejected credentials, revoking session", "status", resp.StatusCode)
		if err := c.creds.Revoke(ctx); err != nil {
			log.Error("session revoke failed", "error", err)
		}
		c.cfg.Bus.Fire(EventUnauthorized, endpoint)
		return ErrUnauthorized
	}

	metrics.BackendFailures.WithLabelValues("rejected").Inc()
	rejected := &RejectedError{Status: resp.StatusCode, Message: message(resp)}
	if resp.StatusCode >= 500 {
		log.Error("backend failed", "status", resp.StatusCode, "message", rejected.Message)
	} else {
		log.Warn("backend rejected request", "status", resp.StatusCode, "message", rejected.Message)
	}
	return rejected
}

func decode(resp *shelfhttp.Response, dest interface{}) error {
	if dest == nil || len(strings.TrimSpace(resp.Text())) == 0 {
		return nil
	}
	if s, ok := dest.(*string); ok {
		if err := json.Unmarshal(resp.Raw, s); err != nil {
			*s = resp.Text()
		}
		return nil
	}
	if err := resp.JSON(dest); err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	return nil
}

// message extracts the user-facing text of an error response: a JSON
// {"message": ...}, a JSON string, or the raw body.
func message(resp *shelfhttp.Response) string {
	raw := strings.TrimSpace(resp.Text())

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	var s string
	if err := json.Unmarshal(resp.Raw, &s); err == nil && s != "" {
		return s
	}
	if raw != "" && !strings.HasPrefix(raw, "{") && !strings.HasPrefix(raw, "<") {
		return raw
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "Invalid credentials"
	}
	return http.StatusText(resp.StatusCode)
}

var idSegment = regexp.MustCompile(`/\d+(/|$)`)

// Template replaces numeric path segments with {id} so metrics and logs
// group calls by endpoint rather than by record.
func Template(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for idSegment.MatchString(path) {
		path = idSegment.ReplaceAllString(path, "/{id}$1")
	}
	return path
}
