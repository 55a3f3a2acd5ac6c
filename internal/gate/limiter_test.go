package gate

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

func limitedPolicy(maxPerWindow, maxConcurrent int) core.ActionPolicy {
	return core.ActionPolicy{
		Action:         "deploy_service",
		AllowedRoles:   []core.Role{"developer"},
		Classification: core.RiskMedium,
		MaxPerWindow:   maxPerWindow,
		MaxConcurrent:  maxConcurrent,
		Window:         time.Hour,
	}
}

func TestLimiterWindowLimit(t *testing.T) {
	l := NewLimiter(0)
	pol := limitedPolicy(3, 0)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if err := l.Acquire("actor-1", pol, now); err != nil {
			t.Fatalf("Acquire() #%d: %v", i, err)
		}
	}

	err := l.Acquire("actor-1", pol, now)
	if !errors.Is(err, core.ErrRateLimited) {
		t.Fatalf("Acquire() #4 = %v, want ErrRateLimited", err)
	}

	// a different actor has its own window
	if err := l.Acquire("actor-2", pol, now); err != nil {
		t.Errorf("Acquire() for other actor: %v", err)
	}
}

func TestLimiterWindowRolls(t *testing.T) {
	l := NewLimiter(0)
	pol := limitedPolicy(1, 0)
	now := time.Now()

	if err := l.Acquire("actor-1", pol, now); err != nil {
		t.Fatalf("Acquire(): %v", err)
	}
	if err := l.Acquire("actor-1", pol, now); !errors.Is(err, core.ErrRateLimited) {
		t.Fatalf("Acquire() within window = %v, want ErrRateLimited", err)
	}
	if err := l.Acquire("actor-1", pol, now.Add(pol.Window)); err != nil {
		t.Errorf("Acquire() after window rolled: %v", err)
	}
}

func TestLimiterReleaseFreesConcurrencyOnly(t *testing.T) {
	l := NewLimiter(0)
	pol := limitedPolicy(2, 1)
	now := time.Now()

	if err := l.Acquire("actor-1", pol, now); err != nil {
		t.Fatalf("Acquire(): %v", err)
	}
	if err := l.Acquire("actor-1", pol, now); !errors.Is(err, core.ErrRateLimited) {
		t.Fatalf("second concurrent Acquire() = %v, want ErrRateLimited", err)
	}

	l.Release("actor-1", pol.Action)

	// concurrency slot free again, window has one unit left
	if err := l.Acquire("actor-1", pol, now); err != nil {
		t.Fatalf("Acquire() after release: %v", err)
	}
	l.Release("actor-1", pol.Action)

	// window usage is never returned by Release
	if err := l.Acquire("actor-1", pol, now); !errors.Is(err, core.ErrRateLimited) {
		t.Errorf("Acquire() past window = %v, want ErrRateLimited", err)
	}
}

func TestLimiterConcurrentAcquire(t *testing.T) {
	const limit = 10
	const extra = 5

	l := NewLimiter(0)
	pol := limitedPolicy(limit, 0)
	now := time.Now()

	var wg sync.WaitGroup
	results := make(chan error, limit+extra)
	for i := 0; i < limit+extra; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- l.Acquire("actor-1", pol, now)
		}()
	}
	wg.Wait()
	close(results)

	var granted, denied int
	for err := range results {
		if err == nil {
			granted++
		} else if errors.Is(err, core.ErrRateLimited) {
			denied++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if granted != limit || denied != extra {
		t.Errorf("granted=%d denied=%d, want %d/%d", granted, denied, limit, extra)
	}
}

func TestLimiterSweep(t *testing.T) {
	l := NewLimiter(time.Minute)
	pol := limitedPolicy(5, 0)
	pol.Window = 0 // use the limiter default
	start := time.Now()

	if err := l.Acquire("actor-1", pol, start); err != nil {
		t.Fatalf("Acquire(): %v", err)
	}
	l.Release("actor-1", pol.Action)

	if got := l.Sweep(start.Add(30 * time.Second)); got != 0 {
		t.Errorf("Sweep() before window elapsed = %d, want 0", got)
	}
	if got := l.Sweep(start.Add(2 * time.Minute)); got != 1 {
		t.Errorf("Sweep() after window elapsed = %d, want 1", got)
	}
}
