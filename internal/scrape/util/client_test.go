package util_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert/internal/retry"
	"jobalert/internal/scrape/types"
	"jobalert/internal/scrape/util"
)

func testClient() *util.Client {
	return util.NewClient(util.ClientOptions{
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
		UserAgent:   "jobalert-test",
	})
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "jobalert-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	b, err := testClient().Get(context.Background(), srv.URL, "")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(b))
	assert.EqualValues(t, 3, calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient().Get(context.Background(), srv.URL, "")
	require.Error(t, err)

	var se *util.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.EqualValues(t, 1, calls.Load())
}

func TestClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, testClient().GetJSON(context.Background(), srv.URL, &out))
	assert.True(t, out.OK)
	assert.EqualValues(t, 2, calls.Load())
}

func TestClient_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient().Get(context.Background(), srv.URL, "")
	assert.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	assert.EqualValues(t, 3, calls.Load())
}

func TestClient_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	var out map[string]any
	err := testClient().GetJSON(context.Background(), srv.URL, &out)
	assert.ErrorIs(t, err, types.ErrMalformed)
}

func TestClient_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		_, _ = w.Write([]byte(`{"total": 7}`))
	}))
	defer srv.Close()

	var out struct {
		Total int `json:"total"`
	}
	err := testClient().PostJSON(context.Background(), srv.URL, map[string]int{"limit": 20}, map[string]string{"X-Test": "yes"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 7, out.Total)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, util.IsRetryable(nil))
	assert.False(t, util.IsRetryable(context.Canceled))
	assert.True(t, util.IsRetryable(&util.StatusError{Code: 502}))
	assert.True(t, util.IsRetryable(&util.StatusError{Code: 429}))
	assert.False(t, util.IsRetryable(&util.StatusError{Code: 403}))
}
