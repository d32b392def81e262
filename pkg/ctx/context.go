// Package ctx gives handlers a single request context with helpers for
// params, binding and the JSON envelope.
//
//	func (c *SupplierController) Update(x *ctx.Context) {
//	    id, ok := x.ParamID("id")
//	    if !ok {
//	        return // 404 already sent
//	    }
//	    var in models.Supplier
//	    if err := x.Bind(&in); err != nil { ... }
//	    x.Success(page)
//	}
//
//	router.Put("/suppliers/{id}", "suppliers.update", ctx.Wrap(c.Update))
package ctx

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/smartshelf/shelfweb/pkg/bind"
	"github.com/smartshelf/shelfweb/pkg/response"
	"github.com/smartshelf/shelfweb/pkg/session"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// ─── Context ──────────────────────────────────────────────────────────────────

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int // written status code (0 = not written yet)
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W, c.R, c.status = w, r, 0
	return c
}

func release(c *Context) {
	c.W, c.R = nil, nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/suppliers/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamID parses a positive integer path parameter. On failure it sends a
// 404 and returns false.
func (c *Context) ParamID(key string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || id <= 0 {
		c.Error(http.StatusNotFound, "Not found")
		return 0, false
	}
	return id, true
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// QueryBool reports whether a query flag is set to a true value.
func (c *Context) QueryBool(key string) bool {
	b, _ := strconv.ParseBool(c.Query(key))
	return b
}

// Header returns the value of a request header.
func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// Method returns the HTTP method of the request.
func (c *Context) Method() string { return c.R.Method }

// Path returns the request URL path.
func (c *Context) Path() string { return c.R.URL.Path }

// ClientIP returns the real client IP, respecting X-Forwarded-For.
func (c *Context) ClientIP() string {
	if fwd := c.R.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	ip := c.R.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Session returns the caller's session.
func (c *Context) Session() *session.Session {
	return session.FromCtx(c.R.Context())
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// Bind decodes the JSON body into dest and runs validation. It writes no
// response; see bind.JSON for the errors.
func (c *Context) Bind(dest any) error {
	return bind.JSON(c.R, dest)
}

// Decode decodes the JSON body into dest without validating.
func (c *Context) Decode(dest any) error {
	return bind.Decode(c.R, dest)
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// JSON writes an envelope with the given status code.
func (c *Context) JSON(code int, body response.Envelope) {
	c.status = code
	response.Write(c.W, code, body)
}

// Success sends a 200 envelope: {"status":200,"data":...}
func (c *Context) Success(data any) {
	c.status = http.StatusOK
	response.Success(c.W, data)
}

// Created sends a 201 envelope.
func (c *Context) Created(data any) {
	c.status = http.StatusCreated
	response.Created(c.W, data)
}

// Error sends an error envelope.
func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

// ValidationError sends a 422 with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	c.status = http.StatusUnprocessableEntity
	response.ValidationError(c.W, errs)
}

// SeeOther sends a 303 to location.
func (c *Context) SeeOther(location, message string) {
	c.status = http.StatusSeeOther
	response.SeeOther(c.W, location, message)
}

// Attachment sends data as a download.
func (c *Context) Attachment(filename, contentType string, data []byte) {
	c.status = http.StatusOK
	response.Attachment(c.W, filename, contentType, data)
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
