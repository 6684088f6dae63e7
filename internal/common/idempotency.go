package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Idem provides an Idempotency-Key middleware. Keys live in Redis when R is set and in process memory otherwise.
//
// A key is held while the request runs and kept for TTL after a 2xx response. Any other outcome releases it
// so the client can retry the same submission.
type Idem struct {
	R   *redis.Client
	TTL time.Duration

	mu    sync.Mutex
	local map[string]time.Time
	now   func() time.Time
}

func hashKey(r *http.Request, key string) string {
	sum := sha256.Sum256([]byte(r.Method + " " + r.URL.Path + " " + key))
	return "idem:" + hex.EncodeToString(sum[:])
}

func (i *Idem) clock() time.Time {
	if i.now != nil {
		return i.now()
	}
	return time.Now()
}

func (i *Idem) acquire(ctx context.Context, key string) (bool, error) {
	if i.R != nil {
		return i.R.SetNX(ctx, key, "locked", i.TTL).Result()
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.local == nil {
		i.local = make(map[string]time.Time)
	}
	now := i.clock()
	if exp, ok := i.local[key]; ok && now.Before(exp) {
		return false, nil
	}
	i.local[key] = now.Add(i.TTL)
	return true, nil
}

func (i *Idem) release(key string) {
	if i.R != nil {
		_ = i.R.Del(context.Background(), key).Err()
		return
	}
	i.mu.Lock()
	delete(i.local, key)
	i.mu.Unlock()
}

// Middleware enforces idempotency semantics for write endpoints.
func (i *Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Idempotency-Key")
		if header == "" || i.TTL <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		key := hashKey(r, header)
		ok, err := i.acquire(r.Context(), key)
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", map[string]any{"error": err.Error()})
			return
		}
		if !ok {
			JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "duplicate request", nil)
			return
		}
		sw := &statusWriter{ResponseWriter: w}
		completed := false
		defer func() {
			if !completed || sw.status < 200 || sw.status >= 300 {
				i.release(key)
			}
		}()
		next.ServeHTTP(sw, r)
		completed = true
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusWriter) Write(p []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(p)
}

func (s *statusWriter) Unwrap() http.ResponseWriter { return s.ResponseWriter }
