package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryMissingKey(t *testing.T) {
	m := NewMemory()

	data, fresh := m.Get("absent")
	require.Nil(t, data)
	require.False(t, fresh)
}

func TestMemoryFreshWithinTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryWithClock(func() time.Time { return now })

	m.Set("snapshot", []byte(`{"a":1}`), 5*time.Minute)

	now = now.Add(4 * time.Minute)
	data, fresh := m.Get("snapshot")
	require.Equal(t, []byte(`{"a":1}`), data)
	require.True(t, fresh)
}

func TestMemoryRetainsStaleEntry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryWithClock(func() time.Time { return now })

	m.Set("snapshot", []byte(`{"a":1}`), 5*time.Minute)

	// Expired entries stay readable so callers can degrade to last good data.
	now = now.Add(6 * time.Minute)
	data, fresh := m.Get("snapshot")
	require.Equal(t, []byte(`{"a":1}`), data)
	require.False(t, fresh)
}

func TestMemoryOverwriteResetsTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryWithClock(func() time.Time { return now })

	m.Set("snapshot", []byte(`old`), 5*time.Minute)
	now = now.Add(6 * time.Minute)
	m.Set("snapshot", []byte(`new`), 5*time.Minute)

	data, fresh := m.Get("snapshot")
	require.Equal(t, []byte(`new`), data)
	require.True(t, fresh)
}
