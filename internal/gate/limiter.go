package gate

import (
	"fmt"
	"sync"
	"time"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

// DefaultWindow is the rolling window applied when an ActionPolicy does
// not set its own.
const DefaultWindow = 24 * time.Hour

type limitKey struct {
	actor  string
	action string
}

type counter struct {
	windowStart time.Time
	used        int
	inFlight    int
}

// Limiter tracks per actor+action request windows and in-flight slots.
// Check-and-increment is a single operation under one lock, so
// concurrent requests cannot race past a limit.
type Limiter struct {
	mu            sync.Mutex
	defaultWindow time.Duration
	counters      map[limitKey]*counter
}

func NewLimiter(defaultWindow time.Duration) *Limiter {
	if defaultWindow <= 0 {
		defaultWindow = DefaultWindow
	}
	return &Limiter{
		defaultWindow: defaultWindow,
		counters:      make(map[limitKey]*counter),
	}
}

// Acquire consumes one window unit and one concurrency slot for the
// actor+action pair, or rejects with a wrapped core.ErrRateLimited that
// names the exceeded limit. Nothing is consumed on rejection.
func (l *Limiter) Acquire(actorID string, pol core.ActionPolicy, now time.Time) error {
	window := pol.Window
	if window <= 0 {
		window = l.defaultWindow
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := limitKey{actor: actorID, action: pol.Action}
	c, ok := l.counters[key]
	if !ok {
		c = &counter{windowStart: now}
		l.counters[key] = c
	}
	if now.Sub(c.windowStart) >= window {
		c.windowStart = now
		c.used = 0
	}

	if pol.MaxPerWindow > 0 && c.used >= pol.MaxPerWindow {
		return fmt.Errorf("%w: %d requests per %s for action '%s'",
			core.ErrRateLimited, pol.MaxPerWindow, window, pol.Action)
	}
	if pol.MaxConcurrent > 0 && c.inFlight >= pol.MaxConcurrent {
		return fmt.Errorf("%w: %d concurrent executions for action '%s'",
			core.ErrRateLimited, pol.MaxConcurrent, pol.Action)
	}

	c.used++
	c.inFlight++
	return nil
}

// Release frees the concurrency slot taken by Acquire. Window usage is
// deliberately not returned; a denied or completed request still counts
// against the window.
func (l *Limiter) Release(actorID, action string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.counters[limitKey{actor: actorID, action: action}]
	if !ok || c.inFlight == 0 {
		return
	}
	c.inFlight--
}

// Peek reports whether Acquire would currently succeed, without
// consuming anything. Used by explain traces.
func (l *Limiter) Peek(actorID string, pol core.ActionPolicy, now time.Time) error {
	window := pol.Window
	if window <= 0 {
		window = l.defaultWindow
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.counters[limitKey{actor: actorID, action: pol.Action}]
	if !ok {
		return nil
	}
	used := c.used
	if now.Sub(c.windowStart) >= window {
		used = 0
	}
	if pol.MaxPerWindow > 0 && used >= pol.MaxPerWindow {
		return fmt.Errorf("%w: %d requests per %s for action '%s'",
			core.ErrRateLimited, pol.MaxPerWindow, window, pol.Action)
	}
	if pol.MaxConcurrent > 0 && c.inFlight >= pol.MaxConcurrent {
		return fmt.Errorf("%w: %d concurrent executions for action '%s'",
			core.ErrRateLimited, pol.MaxConcurrent, pol.Action)
	}
	return nil
}

// Sweep drops counters whose window has fully elapsed and that hold no
// in-flight slots. Returns the number of dropped counters.
func (l *Limiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	dropped := 0
	for key, c := range l.counters {
		if c.inFlight == 0 && now.Sub(c.windowStart) >= l.defaultWindow {
			delete(l.counters, key)
			dropped++
		}
	}
	return dropped
}
