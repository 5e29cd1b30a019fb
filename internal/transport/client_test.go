package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient() *Client {
	return NewClient(Config{UserAgent: "drawsync-test", Timeout: 2 * time.Second}, zap.NewNop())
}

func TestFetchClassifiesSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2026-08-29", r.URL.Query().Get("date"))
		w.Write([]byte(`{"content":{"list":[]}}`))
	}))
	defer srv.Close()

	res := newTestClient().Fetch(context.Background(), http.MethodGet, srv.URL, map[string]string{"date": "2026-08-29"})
	require.Equal(t, OutcomeSuccess, res.Outcome)
	require.Equal(t, http.StatusOK, res.Status)
	require.NotEmpty(t, res.Body)
}

func TestFetchClassifiesEmptyBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res := newTestClient().Fetch(context.Background(), http.MethodGet, srv.URL, nil)
	require.Equal(t, OutcomeEmpty, res.Outcome)
}

func TestFetchClassifiesClientError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such endpoint", http.StatusNotFound)
	}))
	defer srv.Close()

	res := newTestClient().Fetch(context.Background(), http.MethodGet, srv.URL, nil)
	require.Equal(t, OutcomeClientError, res.Outcome)
	require.Equal(t, http.StatusNotFound, res.Status)
}

func TestFetchClassifiesServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	res := newTestClient().Fetch(context.Background(), http.MethodGet, srv.URL, nil)
	require.Equal(t, OutcomeServerError, res.Outcome)
}

func TestFetchRateLimitIsServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	res := newTestClient().Fetch(context.Background(), http.MethodGet, srv.URL, nil)
	require.Equal(t, OutcomeServerError, res.Outcome, "429 retries like a 5xx, it does not abandon the shape")
}

func TestFetchClassifiesTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	res := newTestClient().Fetch(context.Background(), http.MethodGet, srv.URL, nil)
	require.Equal(t, OutcomeTransportFailure, res.Outcome)
	require.Error(t, res.Err)
}

func TestFetchPostSendsFormData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "1", r.PostForm.Get("pageNum"))
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	res := newTestClient().Fetch(context.Background(), http.MethodPost, srv.URL, map[string]string{"pageNum": "1"})
	require.Equal(t, OutcomeSuccess, res.Outcome)
}

func TestRetryPolicyBounds(t *testing.T) {
	t.Parallel()

	p := NewRetryPolicy(3, 200*time.Millisecond)

	require.True(t, p.ShouldRetry(OutcomeServerError, 0))
	require.True(t, p.ShouldRetry(OutcomeTransportFailure, 1))
	require.False(t, p.ShouldRetry(OutcomeServerError, 2), "attempt ceiling reached")
	require.False(t, p.ShouldRetry(OutcomeClientError, 0), "client errors never retry")
	require.False(t, p.ShouldRetry(OutcomeSuccess, 0))
	require.False(t, p.ShouldRetry(OutcomeEmpty, 0))

	require.Equal(t, 200*time.Millisecond, p.Backoff(0))
	require.Equal(t, 400*time.Millisecond, p.Backoff(1))
	require.Equal(t, 10*time.Second, p.Backoff(1000), "backoff is capped")
}
