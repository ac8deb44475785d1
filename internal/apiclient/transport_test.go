package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okrtracker/okr-web/internal/logging"
)

type payload struct {
	Name string `json:"name"`
}

func TestDo_SendsHeadersAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/thing", r.URL.Path)
		assert.Equal(t, "x", r.URL.Query().Get("id"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "rid-1", r.Header.Get("X-Request-Id"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"in"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"out"}`))
	}))
	defer server.Close()

	tr := New(server.URL+"/", Options{})
	ctx := logging.WithRequestID(context.Background(), "rid-1")

	got, err := Do[payload](ctx, tr, Request{
		Operation: "thing",
		Method:    http.MethodPost,
		Path:      "/api/thing",
		Query:     map[string][]string{"id": {"x"}},
		Body:      payload{Name: "in"},
		Token:     "tok",
	})
	require.NoError(t, err)
	assert.Equal(t, "out", got.Name)
	assert.Equal(t, int64(1), tr.Metrics().Snapshot().Calls)
	assert.Equal(t, int64(0), tr.Metrics().Snapshot().Errors)
}

func TestDo_NoTokenNoAuthorizationHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	got, err := Do[*payload](context.Background(), New(server.URL, Options{}), Request{Operation: "get", Path: "/"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDo_StatusTaxonomy(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusInternalServerError, ErrUpstream},
		{http.StatusBadRequest, ErrUpstream},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.status)
			}))
			defer server.Close()

			tr := New(server.URL, Options{})
			_, err := Do[payload](context.Background(), tr, Request{Operation: "get", Path: "/x"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Contains(t, err.Error(), "nope")
			assert.Equal(t, int64(1), tr.Metrics().Snapshot().Errors)
		})
	}
}

func TestDo_TransportFailures(t *testing.T) {
	t.Run("unreachable host", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := Do[payload](context.Background(), New(url, Options{Timeout: time.Second}), Request{Operation: "get", Path: "/"})
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("undecodable body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		_, err := Do[payload](context.Background(), New(server.URL, Options{}), Request{Operation: "get", Path: "/"})
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Do[payload](ctx, New(server.URL, Options{}), Request{Operation: "get", Path: "/"})
		assert.ErrorIs(t, err, ErrTransport)
	})
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	tr := New(server.URL, Options{})
	assert.NoError(t, tr.Ping(context.Background()))

	server.Close()
	assert.ErrorIs(t, tr.Ping(context.Background()), ErrTransport)
}

func TestRecover(t *testing.T) {
	res := Recover(context.Background(), "getOkrs", []string{}, ErrTransport)
	assert.True(t, res.Failed())
	assert.NotNil(t, res.Value)
	assert.Empty(t, res.Value)
	assert.ErrorIs(t, res.Err, ErrTransport)
	assert.Equal(t, "failed", res.Status.String())
}

func TestSnapshotRates(t *testing.T) {
	s := Snapshot{Calls: 4, Errors: 1, LatencyNanos: int64(8 * time.Millisecond)}
	assert.InDelta(t, 25.0, s.ErrorRate(), 0.001)
	assert.InDelta(t, 2.0, s.AverageLatency(), 0.001)
	assert.Zero(t, Snapshot{}.ErrorRate())
}

func TestDo_RateLimited(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"name":"ok"}`))
	}))
	defer server.Close()

	tr := New(server.URL, Options{RPS: 0.001, Burst: 1})
	_, err := Do[payload](context.Background(), tr, Request{Operation: "first", Path: "/"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = Do[payload](ctx, tr, Request{Operation: "second", Path: "/"})

	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, 1, hits, "limited call never reaches the API")
	snap := tr.Metrics().Snapshot()
	assert.EqualValues(t, 2, snap.Calls)
	assert.EqualValues(t, 1, snap.Errors)
}
