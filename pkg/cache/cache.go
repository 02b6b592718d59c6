// Package cache provides the TTL cache behind the coverage reporter. Stale
// entries are kept around so callers can degrade to the last good value when
// a recompute fails.
package cache

import "time"

// Cache stores opaque byte payloads under string keys. Get returns the most
// recent payload for the key along with whether it is still fresh; a nil
// payload means the key has never been set.
type Cache interface {
	Get(key string) (data []byte, fresh bool)
	Set(key string, data []byte, ttl time.Duration)
}
