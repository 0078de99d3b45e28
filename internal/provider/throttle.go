package provider

import (
	"context"
	"sync"
	"time"
)

// Throttle is a token bucket that spaces outbound requests to the upstream
// sentiment sites. Both providers poll public pages with no auth, so we
// stay well under anything that could look like scraping abuse.
type Throttle struct {
	mu          sync.Mutex
	tokens      int
	maxTokens   int
	refillEvery time.Duration
	lastRefill  time.Time
}

// NewThrottle allows maxTokens calls per refillEvery window.
func NewThrottle(maxTokens int, refillEvery time.Duration) *Throttle {
	return &Throttle{
		tokens:      maxTokens,
		maxTokens:   maxTokens,
		refillEvery: refillEvery,
		lastRefill:  time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	for {
		t.mu.Lock()
		t.refill()
		if t.tokens > 0 {
			t.tokens--
			t.mu.Unlock()
			return nil
		}
		t.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.refillEvery):
		}
	}
}

func (t *Throttle) refill() {
	now := time.Now()
	refills := int(now.Sub(t.lastRefill) / t.refillEvery)
	if refills <= 0 {
		return
	}
	t.tokens += refills
	if t.tokens > t.maxTokens {
		t.tokens = t.maxTokens
	}
	t.lastRefill = t.lastRefill.Add(time.Duration(refills) * t.refillEvery)
}
