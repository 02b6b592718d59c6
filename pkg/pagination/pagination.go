// Package pagination provides a resilient bulk-read primitive over windowed
// range queries. Callers supply a query for one [from, to] window and get back
// the complete row set; short reads, transient failures and retry policy are
// handled here.
package pagination

import (
	"fmt"
	"math/rand"
	"time"

	"k12_curriculum_backend/pkg/logger"

	"go.uber.org/zap"
)

type Config struct {
	PageSize   int
	MaxRetries int
	BaseDelay  time.Duration
	MaxJitter  time.Duration
}

func DefaultConfig() Config {
	return Config{
		PageSize:   500,
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxJitter:  250 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = d.BaseDelay
	}
	if c.MaxJitter <= 0 {
		c.MaxJitter = d.MaxJitter
	}
	return c
}

// FetchAll walks the source in fixed-size windows starting at offset 0 and
// accumulates rows until a page comes back shorter than the page size. Each
// window is retried with exponential backoff and jitter; once retries are
// exhausted the whole fetch fails with a single error naming the label.
// Callers get either the complete row set or nothing.
func FetchAll[T any](label string, cfg Config, query func(from, to int) ([]T, error)) ([]T, error) {
	cfg = cfg.withDefaults()

	var all []T
	offset := 0
	for {
		rows, err := fetchWindow(label, cfg, offset, query)
		if err != nil {
			return nil, err
		}

		all = append(all, rows...)
		if len(rows) < cfg.PageSize {
			return all, nil
		}
		offset += cfg.PageSize
	}
}

func fetchWindow[T any](label string, cfg Config, offset int, query func(from, to int) ([]T, error)) ([]T, error) {
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		rows, err := query(offset, offset+cfg.PageSize-1)
		if err == nil {
			return rows, nil
		}
		lastErr = err

		if attempt < cfg.MaxRetries {
			delay := cfg.BaseDelay * (1 << (attempt - 1))
			delay += time.Duration(rand.Int63n(int64(cfg.MaxJitter) + 1))
			if label != "" && logger.Log != nil {
				logger.Log.Warn("retrying paginated fetch",
					zap.String("resource", label),
					zap.Int("offset", offset),
					zap.Int("attempt", attempt),
					zap.Duration("delay", delay),
					zap.Error(err),
				)
			}
			time.Sleep(delay)
		}
	}
	return nil, fmt.Errorf("fetching %s at offset %d: %d attempts failed: %w", label, offset, cfg.MaxRetries, lastErr)
}
