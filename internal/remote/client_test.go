package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(Options{
		Service:      "inventory-service",
		BaseURL:      url,
		APIKeyHeader: "SERVICE_API_KEY",
		APIKey:       "secret",
		Timeout:      2 * time.Second,
		Policy:       fastPolicy(2),
	})
}

func TestClientSendsCredentialOnEveryAttempt(t *testing.T) {
	// Arrange
	var calls int32
	var keys []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("SERVICE_API_KEY"))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	// Act
	resp, err := client.Call(context.Background(), "Ping", func(req *resty.Request) (*resty.Response, error) {
		return req.Get("/ping")
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{"secret", "secret"}, keys)
}

func TestClientGivesUpAfterPolicyAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Call(context.Background(), "CreateStock", func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(map[string]int{"quantity": 1}).Post("/inventory")
	})

	var depErr *DependencyError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, 2, depErr.Attempts)
	assert.Equal(t, http.StatusServiceUnavailable, depErr.StatusCode)
	assert.Equal(t, "CreateStock", depErr.Operation)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Call(context.Background(), "DeleteStock", func(req *resty.Request) (*resty.Response, error) {
		return req.Delete("/inventory/product/1")
	})

	assert.True(t, IsDependencyError(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientRetriesTransportFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(url)

	_, err := client.Call(context.Background(), "FetchSnapshot", func(req *resty.Request) (*resty.Response, error) {
		return req.Get("/products/internal/1")
	})

	var depErr *DependencyError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, 2, depErr.Attempts)
	assert.Equal(t, 0, depErr.StatusCode)
}
