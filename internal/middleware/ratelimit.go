// Package middleware holds transport middlewares shared by the bot and the
// ops HTTP server.
package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"
)

const txtRateLimited = "⏳ Слишком много запросов. Подождите немного."

// RateLimitMiddleware enforces a sliding-window limit per chat so one
// operator mashing buttons cannot starve the long-poll loop.
type RateLimitMiddleware struct {
	mu      sync.Mutex
	buckets map[int64][]time.Time
	limit   int
	window  time.Duration
	log     *slog.Logger
	now     func() time.Time
}

func NewRateLimitMiddleware(limit int, window time.Duration, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		buckets: make(map[int64][]time.Time),
		limit:   limit,
		window:  window,
		log:     log,
		now:     time.Now,
	}
}

// Handle returns a telebot middleware enforcing the limit.
func (m *RateLimitMiddleware) Handle(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return next(c)
		}

		if !m.allow(sender.ID) {
			m.log.Warn("rate limit exceeded", slog.Int64("user_id", sender.ID))
			return c.Send(txtRateLimited)
		}

		return next(c)
	}
}

func (m *RateLimitMiddleware) allow(userID int64) bool {
	now := m.now()
	windowStart := now.Add(-m.window)

	m.mu.Lock()
	defer m.mu.Unlock()

	recent := keepRecent(m.buckets[userID], windowStart)
	if len(recent) >= m.limit {
		m.buckets[userID] = recent
		return false
	}

	m.buckets[userID] = append(recent, now)

	return true
}

// Cleanup drops buckets with no activity since cutoff. Called periodically by
// the owner, not by Handle.
func (m *RateLimitMiddleware) Cleanup(maxAge time.Duration) {
	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, requests := range m.buckets {
		if len(requests) == 0 || requests[len(requests)-1].Before(cutoff) {
			delete(m.buckets, userID)
		}
	}
}

// RunCleanup drops stale buckets every interval until the context is
// cancelled.
func (m *RateLimitMiddleware) RunCleanup(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("rate limit cleanup stopped", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
			m.Cleanup(maxAge)
		}
	}
}

func keepRecent(requests []time.Time, windowStart time.Time) []time.Time {
	idx := 0
	for ; idx < len(requests); idx++ {
		if requests[idx].After(windowStart) {
			break
		}
	}

	return requests[idx:]
}
