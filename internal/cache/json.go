package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/barber-billing/internal/resilience"
)

// JSON stores JSON payloads in Redis under a key prefix.
// A nil client or non-positive TTL turns every call into a miss or no-op.
// While the optional breaker is open calls are skipped the same way.
type JSON struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	breaker *resilience.Breaker
}

// NewJSON constructs a JSON cache helper.
func NewJSON(client *redis.Client, prefix string, ttl time.Duration) *JSON {
	return &JSON{client: client, prefix: prefix, ttl: ttl}
}

// WithBreaker guards Redis calls with b.
func (c *JSON) WithBreaker(b *resilience.Breaker) *JSON {
	c.breaker = b
	return c
}

func isMiss(err error) bool { return errors.Is(err, redis.Nil) }

// Enabled reports whether reads and writes reach Redis.
func (c *JSON) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get unmarshals a cached payload into dst. It reports whether the key existed.
func (c *JSON) Get(ctx context.Context, key string, dst any) (bool, error) {
	if !c.Enabled() || key == "" {
		return false, nil
	}
	var data []byte
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		data, err = c.client.Get(ctx, c.prefix+key).Bytes()
		return err
	}, isMiss)
	if err != nil {
		if isMiss(err) || errors.Is(err, resilience.ErrOpenCircuit) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Set serialises v as JSON and stores it with the configured TTL.
func (c *JSON) Set(ctx context.Context, key string, v any) error {
	if !c.Enabled() || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	err = c.breaker.Do(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
	}, nil)
	if errors.Is(err, resilience.ErrOpenCircuit) {
		return nil
	}
	return err
}

// Key joins parts with ':' and renders zero times as "-".
func Key(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		switch v := part.(type) {
		case time.Time:
			if v.IsZero() {
				formatted = append(formatted, "-")
				continue
			}
			formatted = append(formatted, v.UTC().Format(time.RFC3339Nano))
		case string:
			if v == "" {
				formatted = append(formatted, "-")
				continue
			}
			formatted = append(formatted, v)
		default:
			formatted = append(formatted, fmt.Sprint(v))
		}
	}
	return strings.Join(formatted, ":")
}
