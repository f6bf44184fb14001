package httpclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      100 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

func statusServer(status *atomic.Int32, calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(int(status.Load()))
	}))
}

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	var status, calls atomic.Int32
	status.Store(http.StatusInternalServerError)
	server := statusServer(&status, &calls)
	defer server.Close()

	cb := NewCircuitBreakerClient(New(fastConfig(0)), testCBConfig("test-trip"), testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := cb.Get(ctx, server.URL)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Get(ctx, server.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(3), calls.Load())

	status.Store(http.StatusOK)
	time.Sleep(150 * time.Millisecond)

	resp, err := cb.Get(ctx, server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	var status, calls atomic.Int32
	status.Store(http.StatusNotFound)
	server := statusServer(&status, &calls)
	defer server.Close()

	cb := NewCircuitBreakerClient(New(fastConfig(0)), testCBConfig("test-4xx"), testLogger())
	for i := 0; i < 5; i++ {
		resp, err := cb.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_SendSetsJSONHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(New(fastConfig(0)), testCBConfig("test-send"), testLogger())
	resp, err := cb.Send(context.Background(), http.MethodPut, server.URL, strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
}

func TestCircuitBreaker_FallbackWhenOpen(t *testing.T) {
	var status, calls atomic.Int32
	status.Store(http.StatusBadGateway)
	server := statusServer(&status, &calls)
	defer server.Close()

	cfg := testCBConfig("test-fallback")
	cfg.Timeout = time.Minute
	var used atomic.Bool
	cb := NewCircuitBreakerClient(New(fastConfig(0)), cfg, testLogger()).
		WithFallback(func(ctx context.Context, err error) (*http.Response, error) {
			used.Store(true)
			return nil, errors.New("storefront unavailable")
		})

	for i := 0; i < 3; i++ {
		_, _ = cb.Get(context.Background(), server.URL)
	}
	assert.False(t, used.Load())

	_, err := cb.Get(context.Background(), server.URL)
	assert.EqualError(t, err, "storefront unavailable")
	assert.True(t, used.Load())
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("storefront")
	assert.Equal(t, "storefront", cfg.Name)
	assert.Equal(t, uint32(5), cfg.MinRequests)
	assert.InDelta(t, 0.5, cfg.FailureRatio, 0.001)
}
