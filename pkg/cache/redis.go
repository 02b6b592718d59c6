package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// redisRetention keeps stale envelopes available for last-good degradation
// well past their freshness window.
const redisRetention = 24 * time.Hour

type redisEnvelope struct {
	ExpiresAt time.Time       `json:"expiresAt"`
	Data      json.RawMessage `json:"data"`
}

// Redis backs the Cache with a shared redis instance. Freshness is tracked
// inside the stored envelope rather than with the redis key TTL, so a stale
// value still reads back for degradation.
type Redis struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (r *Redis) Get(key string) ([]byte, bool) {
	raw, err := r.client.Get(context.Background(), r.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}

	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false
	}
	return env.Data, r.now().Before(env.ExpiresAt)
}

func (r *Redis) Set(key string, data []byte, ttl time.Duration) {
	env := redisEnvelope{
		ExpiresAt: r.now().Add(ttl),
		Data:      data,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return
	}
	r.client.Set(context.Background(), r.prefix+key, raw, redisRetention)
}
