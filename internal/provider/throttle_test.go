package provider

import (
	"context"
	"testing"
	"time"
)

func TestThrottleAllowsBurst(t *testing.T) {
	th := NewThrottle(2, time.Minute)
	ctx := context.Background()

	start := time.Now()
	if err := th.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := th.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Fatal("burst waits should return immediately")
	}
}

func TestThrottleRefill(t *testing.T) {
	th := NewThrottle(1, 5*time.Millisecond)
	ctx := context.Background()

	if err := th.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := th.Wait(ctx); err != nil {
		t.Fatalf("expected token after refill, got %v", err)
	}
}

func TestThrottleHonorsContext(t *testing.T) {
	th := NewThrottle(1, time.Second)
	_ = th.Wait(context.Background())

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := th.Wait(timeoutCtx); err == nil {
		t.Fatal("expected context deadline error")
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Fatal("wait should stop after context cancellation")
	}
}
