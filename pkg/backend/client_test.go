package backend_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartshelf/shelfweb/pkg/backend"
	"github.com/smartshelf/shelfweb/pkg/event"
	"github.com/smartshelf/shelfweb/pkg/reqid"
	"github.com/smartshelf/shelfweb/pkg/testkit"
)

const base = "http://backend.test/api"

type fakeCreds struct {
	token   string
	revoked int
}

func (f *fakeCreds) Token() string { return f.token }
func (f *fakeCreds) Revoke(context.Context) error {
	f.revoked++
	f.token = ""
	return nil
}

func newClient(creds backend.Credentials, bus *event.Bus) *backend.Client {
	return backend.New(backend.Config{BaseURL: base + "/", Timeout: time.Second, Bus: bus}, creds)
}

func TestGet_AttachesBearerAndQuery(t *testing.T) {
	mt := testkit.Install(t)
	mt.Stub("GET", "/api/products", 200, []map[string]interface{}{{"id": 1, "productName": "Milk"}})

	creds := &fakeCreds{token: "abc"}
	ctx := reqid.WithValue(context.Background(), "req-1")

	var out []map[string]interface{}
	err := newClient(creds, nil).Get(ctx, "/products", url.Values{"category": {"Dairy"}, "supplier": {""}}, &out)
	require.NoError(t, err)
	require.Len(t, out, 1)

	call, ok := mt.Last("GET", "/api/products")
	require.True(t, ok)
	assert.Equal(t, "Bearer abc", call.Header.Get("Authorization"))
	assert.Equal(t, "req-1", call.Header.Get(reqid.Header))
	assert.Equal(t, "Dairy", call.Query.Get("category"))
	assert.False(t, call.Query.Has("supplier"))
}

func TestAnonymousSendsNoAuthorization(t *testing.T) {
	mt := testkit.Install(t)
	mt.Stub("POST", "/api/auth/login", 200, map[string]string{"token": "t", "role": "ADMIN"})

	var out map[string]string
	require.NoError(t, newClient(nil, nil).Post(context.Background(), "/auth/login", map[string]string{"email": "a"}, &out))

	call, _ := mt.Last("POST", "/api/auth/login")
	assert.Empty(t, call.Header.Get("Authorization"))
	assert.Equal(t, "t", out["token"])
}

func TestUnauthorizedRevokesSession(t *testing.T) {
	for _, status := range []int{401, 403} {
		mt := testkit.Install(t)
		mt.Stub("GET", "/api/pos", status, nil)

		bus := event.New()
		var fired []interface{}
		bus.Listen(backend.EventUnauthorized, func(p interface{}) { fired = append(fired, p) })

		creds := &fakeCreds{token: "stale"}
		c := newClient(creds, bus)

		err := c.Get(context.Background(), "/pos", nil, nil)
		assert.ErrorIs(t, err, backend.ErrUnauthorized)
		err = c.Get(context.Background(), "/pos", nil, nil)
		assert.ErrorIs(t, err, backend.ErrUnauthorized)

		assert.Equal(t, 2, creds.revoked)
		assert.Empty(t, creds.token)
		assert.Equal(t, []interface{}{"/pos", "/pos"}, fired)
	}
}

func TestAnonymous401IsRejection(t *testing.T) {
	mt := testkit.Install(t)
	mt.Stub("POST", "/api/auth/login", 401, `"Bad password"`)

	err := newClient(nil, nil).Post(context.Background(), "/auth/login", nil, nil)
	re, ok := backend.IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, 401, re.Status)
	assert.Equal(t, "Bad password", re.Message)

	mt.Stub("POST", "/api/auth/login", 403, nil)
	err = newClient(nil, nil).Post(context.Background(), "/auth/login", nil, nil)
	re, _ = backend.IsRejected(err)
	assert.Equal(t, "Invalid credentials", re.Message)
}

func TestRejectedMessageSources(t *testing.T) {
	cases := []struct {
		name string
		body interface{}
		want string
	}{
		{"json message", map[string]string{"message": "Insufficient stock"}, "Insufficient stock"},
		{"json string", `"Only pending orders can be approved"`, "Only pending orders can be approved"},
		{"raw text", "Supplier not found", "Supplier not found"},
		{"empty", nil, "Conflict"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mt := testkit.Install(t)
			mt.Stub("POST", "/api/sales", 409, tc.body)

			err := newClient(&fakeCreds{token: "x"}, nil).Post(context.Background(), "/sales", map[string]int{"productId": 1}, nil)
			re, ok := backend.IsRejected(err)
			require.True(t, ok)
			assert.Equal(t, tc.want, re.Message)
		})
	}
}

func TestServerErrorIsRejected(t *testing.T) {
	mt := testkit.Install(t)
	mt.Stub("GET", "/api/forecast", 500, map[string]string{"message": "model offline"})

	creds := &fakeCreds{token: "x"}
	err := newClient(creds, nil).Get(context.Background(), "/forecast", nil, nil)
	re, ok := backend.IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, 500, re.Status)
	assert.Zero(t, creds.revoked)
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	mt := testkit.Install(t)
	mt.StubError("GET", "/api/suppliers", errors.New("connection refused"))

	err := newClient(&fakeCreds{token: "x"}, nil).Get(context.Background(), "/suppliers", nil, nil)
	assert.ErrorIs(t, err, backend.ErrUnavailable)
	mt.AssertCalled(t, "GET", "/api/suppliers", 1)
}

func TestDecodeStringBody(t *testing.T) {
	mt := testkit.Install(t)
	mt.Stub("POST", "/api/auth/register", 200, "User registered successfully")
	mt.Stub("PUT", "/api/pos/7/approve", 200, `"approved"`)

	c := newClient(&fakeCreds{token: "x"}, nil)

	var msg string
	require.NoError(t, c.Post(context.Background(), "/auth/register", map[string]string{}, &msg))
	assert.Equal(t, "User registered successfully", msg)

	require.NoError(t, c.Put(context.Background(), "/pos/7/approve", nil, &msg))
	assert.Equal(t, "approved", msg)
}

func TestTemplate(t *testing.T) {
	assert.Equal(t, "/pos/{id}/approve", backend.Template("/pos/12/approve"))
	assert.Equal(t, "/suppliers/{id}", backend.Template("/suppliers/3"))
	assert.Equal(t, "/products", backend.Template("/products?category=x"))
	assert.Equal(t, "/a/{id}/{id}", backend.Template("/a/1/2"))
}
