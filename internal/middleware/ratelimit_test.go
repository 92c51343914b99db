package middleware

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(limit int, window time.Duration) (*RateLimitMiddleware, *time.Time) {
	current := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	m := NewRateLimitMiddleware(limit, window, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.now = func() time.Time { return current }

	return m, &current
}

func TestRateLimitAllowsWithinLimit(t *testing.T) {
	m, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, m.allow(1))
	}
	assert.False(t, m.allow(1))

	// Other users have their own buckets.
	assert.True(t, m.allow(2))
}

func TestRateLimitWindowSlides(t *testing.T) {
	m, current := newTestLimiter(2, time.Minute)

	assert.True(t, m.allow(1))
	assert.True(t, m.allow(1))
	assert.False(t, m.allow(1))

	*current = current.Add(61 * time.Second)
	assert.True(t, m.allow(1))
}

func TestRateLimitCleanup(t *testing.T) {
	m, current := newTestLimiter(5, time.Minute)

	m.allow(1)
	m.allow(2)

	*current = current.Add(time.Hour)
	m.allow(3)
	m.Cleanup(30 * time.Minute)

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Len(t, m.buckets, 1)
	assert.Contains(t, m.buckets, int64(3))
}

func TestRateLimitRunCleanup(t *testing.T) {
	m, current := newTestLimiter(5, time.Minute)

	m.allow(1)
	*current = current.Add(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.RunCleanup(ctx, 5*time.Millisecond, 30*time.Minute)
	}()

	assert.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.buckets) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop on context cancel")
	}
}
