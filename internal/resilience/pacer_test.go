package resilience

import (
	"context"
	"testing"
	"time"
)

func TestNoWait_ReturnsImmediately(t *testing.T) {
	p := NoWait()
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("NoWait should not block")
	}
}

func TestNoWait_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NoWait().Wait(ctx); err == nil {
		t.Error("expected context error")
	}
}

func TestEvery_SpacesCalls(t *testing.T) {
	p := Every(20 * time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// First call passes immediately, the next two wait one interval each.
	if elapsed := time.Since(start); elapsed < 35*time.Millisecond {
		t.Errorf("expected pacing, elapsed %v", elapsed)
	}
}

func TestEvery_NonPositiveDisables(t *testing.T) {
	if _, ok := Every(0).(noWait); !ok {
		t.Error("expected NoWait for zero interval")
	}
}
