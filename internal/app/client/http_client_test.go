package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"furnitrack/internal/app/client/config"
	"furnitrack/internal/domain/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock не спит по-настоящему, но запоминает запрошенные паузы.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testNow()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) sleepLog() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}

func newTestHTTPClient(t *testing.T, handler http.Handler) (*HTTPClient, *fakeClock) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		ServerAddress: strings.TrimPrefix(srv.URL, "http://"),
	}
	clock := newFakeClock()
	return NewHTTPClient(cfg, clock, testLogger()), clock
}

func TestHTTPClient_RetriesTransientErrors(t *testing.T) {
	var attempts int
	client, clock := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "internal"})
			return
		}
		json.NewEncoder(w).Encode([]order.Order{})
	}))

	orders, err := client.GetOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 3, attempts)
	// Пауза растет с номером попытки.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clock.sleepLog())
}

func TestHTTPClient_GivesUpAfterMaxAttempts(t *testing.T) {
	var attempts int
	client, _ := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "unavailable"})
	}))

	_, err := client.GetOrders(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, IsTransient(err))
}

func TestHTTPClient_DoesNotRetryClientErrors(t *testing.T) {
	var attempts int
	client, clock := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "validation failed",
			"message": "Поле name обязательно",
		})
	}))

	_, err := client.CreateOrder(context.Background(), order.Order{})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, clock.sleepLog())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation failed", apiErr.Err)
	assert.Contains(t, apiErr.Message, "name")
	assert.False(t, IsTransient(err))
}

func TestHTTPClient_DeleteTreats404AsSuccess(t *testing.T) {
	client, _ := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/orders/42", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "order not found"})
	}))

	// Заказа на сервере уже нет: цель удаления достигнута.
	assert.NoError(t, client.DeleteOrder(context.Background(), 42))
}

func TestHTTPClient_SyncBatch(t *testing.T) {
	tempID := order.NewTempID(testNow())
	merged := []order.Order{testOrder(order.SyncedID(42), "Шкаф")}

	client, _ := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders/sync", r.URL.Path)

		var req order.SyncRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Orders, 1)
		assert.True(t, req.Orders[0].ID.IsLocal())

		json.NewEncoder(w).Encode(merged)
	}))

	got, err := client.SyncBatch(context.Background(), []order.Order{testOrder(tempID, "Шкаф")})
	require.NoError(t, err)
	require.Len(t, got, 1)

	serverID, ok := got[0].ID.ServerID()
	require.True(t, ok)
	assert.Equal(t, int64(42), serverID)
}

func TestHTTPClient_CreateAndUpdate(t *testing.T) {
	client, _ := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/orders":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(testOrder(order.SyncedID(1), "Шкаф"))
		case r.Method == http.MethodPut && r.URL.Path == "/api/orders/1":
			json.NewEncoder(w).Encode(testOrder(order.SyncedID(1), "Шкаф-купе"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	created, err := client.CreateOrder(context.Background(), testOrder(order.ID{}, "Шкаф"))
	require.NoError(t, err)
	serverID, ok := created.ID.ServerID()
	require.True(t, ok)
	assert.Equal(t, int64(1), serverID)

	updated, err := client.UpdateOrder(context.Background(), 1, *created)
	require.NoError(t, err)
	assert.Equal(t, "Шкаф-купе", updated.Name)
}

func TestHTTPClient_HealthCheck(t *testing.T) {
	healthy := true
	client, _ := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))

	assert.NoError(t, client.HealthCheck(context.Background()))

	healthy = false
	assert.Error(t, client.HealthCheck(context.Background()))
}
