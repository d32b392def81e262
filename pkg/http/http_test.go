package http_test

import (
	"context"
	"errors"
	"io"
	gohttp "net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shelfhttp "github.com/smartshelf/shelfweb/pkg/http"
)

func TestSend_AttachesBearerQueryAndBody(t *testing.T) {
	var gotAuth, gotQuery, gotBody, gotCT string
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(gohttp.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer srv.Close()

	resp, err := shelfhttp.Post(srv.URL + "/pos").
		Bearer("tok").
		Query(url.Values{"a": {"1"}, "empty": {""}}).
		Body(map[string]int{"productId": 3}).
		Send()
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "a=1", gotQuery)
	assert.Equal(t, "application/json", gotCT)
	assert.JSONEq(t, `{"productId":3}`, gotBody)

	var out struct{ ID int }
	require.NoError(t, resp.JSON(&out))
	assert.Equal(t, 7, out.ID)
}

func TestSend_EmptyBearerIsSkipped(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	_, err := shelfhttp.Get(srv.URL).Bearer("").Send()
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestSend_NonSuccessIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		w.WriteHeader(gohttp.StatusBadRequest)
		_, _ = w.Write([]byte("Error: Not enough stock!"))
	}))
	defer srv.Close()

	resp, err := shelfhttp.Post(srv.URL).Send()
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "Error: Not enough stock!", resp.Text())
}

func TestSend_TimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := shelfhttp.Get(srv.URL).Timeout(20 * time.Millisecond).Send()

	var te *shelfhttp.TransportError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Timeout())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSend_ConnectionRefusedIsTransportError(t *testing.T) {
	srv := httptest.NewServer(gohttp.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := shelfhttp.Get(addr).Send()

	var te *shelfhttp.TransportError
	assert.True(t, errors.As(err, &te))
}
