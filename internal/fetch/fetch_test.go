package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reelfeed/internal/fetch"
)

func newClient(attempts uint) *fetch.Client {
	return fetch.NewClient(fetch.Config{
		Attempts:   attempts,
		RetryDelay: 5 * time.Millisecond,
	})
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	body, err := newClient(3).Get(context.Background(), server.URL)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))
	require.EqualValues(t, 3, calls.Load())
}

func TestGetSurfacesLastErrorAfterExhaustion(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newClient(3).Get(context.Background(), server.URL)
	require.Error(t, err)

	var statusErr *fetch.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.Code)
	require.EqualValues(t, 3, calls.Load())
}

func TestGetTreatsNonSuccessStatusAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newClient(1).Get(context.Background(), server.URL)

	var statusErr *fetch.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestGetDoesNotRetryCallerCancellation(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := newClient(3).Get(ctx, server.URL)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
	require.EqualValues(t, 1, calls.Load())
}

func TestGetHonoursPerAttemptTimeout(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	client := fetch.NewClient(fetch.Config{
		Attempts:       2,
		RetryDelay:     time.Millisecond,
		AttemptTimeout: 10 * time.Millisecond,
	})

	_, err := client.Get(context.Background(), server.URL)
	require.Error(t, err)
	// Per-attempt timeouts are transport failures, so the budget is spent.
	require.EqualValues(t, 2, calls.Load())
}
