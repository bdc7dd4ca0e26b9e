package provider

import (
	"context"
	"sync"
	"time"
)

const defaultBurst = 5

// requestLimiter is a token bucket shared by every Gemini call so the bot
// stays under the project's requests-per-minute quota.
type requestLimiter struct {
	mu     sync.Mutex
	tokens float64
	max    float64
	rate   float64 // tokens per second
	last   time.Time
	now    func() time.Time
}

// newRequestLimiter returns nil when perMinute is not positive; a nil limiter
// never blocks.
func newRequestLimiter(perMinute float64, burst int) *requestLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return &requestLimiter{
		tokens: float64(burst),
		max:    float64(burst),
		rate:   perMinute / 60.0,
		last:   time.Now(),
		now:    time.Now,
	}
}

// Wait blocks until a request may be made or ctx is done.
func (l *requestLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	for {
		wait := l.reserve()
		if wait == 0 {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve takes a token and returns 0, or returns how long until one is
// available.
func (l *requestLimiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	if l.tokens > l.max {
		l.tokens = l.max
	}
	l.last = now

	if l.tokens >= 1 {
		l.tokens--
		return 0
	}
	return time.Duration((1 - l.tokens) / l.rate * float64(time.Second))
}
