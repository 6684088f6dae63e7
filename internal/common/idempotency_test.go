package common_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barber-billing/internal/common"
)

func idemServer(idem *common.Idem, status *atomic.Int32, calls *atomic.Int32) http.Handler {
	return idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(int(status.Load()))
	}))
}

func send(h http.Handler, path, key string) int {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestIdemRedisRejectsReplay(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var status, calls atomic.Int32
	status.Store(http.StatusCreated)
	h := idemServer(&common.Idem{R: client, TTL: time.Minute}, &status, &calls)

	require.Equal(t, http.StatusCreated, send(h, "/api/v1/transactions", "abc"))
	require.Equal(t, http.StatusConflict, send(h, "/api/v1/transactions", "abc"))
	require.Equal(t, int32(1), calls.Load())

	require.Equal(t, http.StatusCreated, send(h, "/api/v1/other", "abc"))
	require.Equal(t, http.StatusCreated, send(h, "/api/v1/transactions", ""))

	mr.FastForward(2 * time.Minute)
	require.Equal(t, http.StatusCreated, send(h, "/api/v1/transactions", "abc"))
}

func TestIdemReleasesKeyOnFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var status, calls atomic.Int32
	status.Store(http.StatusUnprocessableEntity)
	h := idemServer(&common.Idem{R: client, TTL: time.Minute}, &status, &calls)

	require.Equal(t, http.StatusUnprocessableEntity, send(h, "/commit", "k1"))
	require.Empty(t, mr.Keys())

	status.Store(http.StatusCreated)
	require.Equal(t, http.StatusCreated, send(h, "/commit", "k1"))
	require.Len(t, mr.Keys(), 1)
}

func TestIdemInMemoryFallback(t *testing.T) {
	var status, calls atomic.Int32
	status.Store(http.StatusCreated)
	h := idemServer(&common.Idem{TTL: time.Minute}, &status, &calls)

	require.Equal(t, http.StatusCreated, send(h, "/commit", "k1"))
	require.Equal(t, http.StatusConflict, send(h, "/commit", "k1"))
	require.Equal(t, int32(1), calls.Load())
}
