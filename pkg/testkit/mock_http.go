// Package testkit fakes the SmartShelf backend for tests.
//
// MockTransport is installed on the shared pkg/http client so every backend
// call made by the code under test is answered from stubs instead of the
// network:
//
//	mt := testkit.Install(t)
//	mt.Stub("GET", "/api/products", 200, []models.Product{...})
//	mt.StubError("GET", "/api/forecast", io.ErrUnexpectedEOF)
//	// ... exercise the code ...
//	mt.AssertCalled(t, "GET", "/api/products", 1)
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	shelfhttp "github.com/smartshelf/shelfweb/pkg/http"
)

// Call is one request observed by the transport.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded request body into dest.
func (c Call) JSON(dest interface{}) error {
	return json.Unmarshal(c.Body, dest)
}

type stub struct {
	method string
	path   string
	status int
	body   []byte
	err    error
}

// MockTransport implements http.RoundTripper. Stubs are matched on method
// and URL path; the most recently registered stub for a pair wins so a test
// can change the backend's answer between calls.
type MockTransport struct {
	mu    sync.Mutex
	stubs []stub
	calls []Call
}

// NewMockTransport returns an empty transport. Unmatched requests fail.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Install creates a MockTransport, puts it on pkg/http.DefaultClient and
// restores the real transport when t finishes.
func Install(t testing.TB) *MockTransport {
	t.Helper()
	mt := NewMockTransport()
	shelfhttp.DefaultClient.Transport = mt
	t.Cleanup(shelfhttp.ResetTransport)
	return mt
}

// Stub answers method+path with status and body. body is JSON-encoded
// unless it is a string or []byte.
func (mt *MockTransport) Stub(method, path string, status int, body interface{}) *MockTransport {
	var raw []byte
	switch v := body.(type) {
	case nil:
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			panic(fmt.Sprintf("testkit: encode stub body: %v", err))
		}
		raw = b
	}

	mt.mu.Lock()
	mt.stubs = append(mt.stubs, stub{method: method, path: path, status: status, body: raw})
	mt.mu.Unlock()
	return mt
}

// StubError makes method+path fail at the transport level, as a refused
// connection or timeout would.
func (mt *MockTransport) StubError(method, path string, err error) *MockTransport {
	mt.mu.Lock()
	mt.stubs = append(mt.stubs, stub{method: method, path: path, err: err})
	mt.mu.Unlock()
	return mt
}

// RoundTrip records the request and returns the matching stub's response.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.calls = append(mt.calls, Call{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Header: req.Header.Clone(),
		Body:   body,
	})

	for i := len(mt.stubs) - 1; i >= 0; i-- {
		s := mt.stubs[i]
		if s.method != req.Method || s.path != req.URL.Path {
			continue
		}
		if s.err != nil {
			return nil, s.err
		}

		header := make(http.Header)
		if looksLikeJSON(s.body) {
			header.Set("Content-Type", "application/json")
		} else {
			header.Set("Content-Type", "text/plain")
		}
		return &http.Response{
			StatusCode: s.status,
			Status:     fmt.Sprintf("%d %s", s.status, http.StatusText(s.status)),
			Header:     header,
			Body:       io.NopCloser(bytes.NewReader(s.body)),
			Request:    req,
		}, nil
	}

	return nil, fmt.Errorf("testkit: unexpected backend call %s %s", req.Method, req.URL)
}

// Calls returns every request seen so far.
func (mt *MockTransport) Calls() []Call {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	out := make([]Call, len(mt.calls))
	copy(out, mt.calls)
	return out
}

// CallsTo returns the requests made to method+path.
func (mt *MockTransport) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range mt.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Last returns the most recent request to method+path and whether one exists.
func (mt *MockTransport) Last(method, path string) (Call, bool) {
	calls := mt.CallsTo(method, path)
	if len(calls) == 0 {
		return Call{}, false
	}
	return calls[len(calls)-1], true
}

// Reset forgets recorded calls but keeps stubs.
func (mt *MockTransport) Reset() {
	mt.mu.Lock()
	mt.calls = nil
	mt.mu.Unlock()
}

func looksLikeJSON(b []byte) bool {
	s := strings.TrimSpace(string(b))
	return s != "" && (s[0] == '{' || s[0] == '[' || s[0] == '"')
}
