package health

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/barber-billing/internal/common"
)

var ready atomic.Bool

func init() { ready.Store(true) }

// SetReady toggles the readiness flag. The server clears it when shutdown begins.
func SetReady(v bool) { ready.Store(v) }

// Checker represents dependencies that can be probed for readiness.
type Checker interface {
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// RedisChecker probes an optional Redis client.
type RedisChecker struct {
	Client *redis.Client
}

// errDisabled marks a dependency that is not configured.
var errDisabled = disabledError{}

type disabledError struct{}

func (disabledError) Error() string { return "disabled" }

// PingRedis pings Redis within timeout. A nil client reports disabled.
func (c RedisChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.Client == nil {
		return errDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Client.Ping(ctx).Err()
}

// Counter reports the number of recorded transactions.
type Counter interface {
	Len() int
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker      Checker
	Store        Counter
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes. Redis is optional, so a disabled cache stays ready.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !ready.Load() {
		common.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "shutting_down"})
		return
	}
	status := map[string]any{"status": "ok"}
	code := http.StatusOK

	redisStatus := "disabled"
	if h.Checker != nil {
		switch err := h.Checker.PingRedis(r.Context(), h.redisTimeout()); {
		case err == nil:
			redisStatus = "ok"
		case errors.Is(err, errDisabled):
		default:
			redisStatus = err.Error()
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	status["redis"] = redisStatus
	if h.Store != nil {
		status["transactions"] = h.Store.Len()
	}
	common.JSON(w, code, status)
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}
