package cooking

import (
	"context"
	"strings"
	"sync"
	"time"
)

// ClockOption configures a Clock.
type ClockOption func(*Clock)

// WithTickInterval sets the period between ticks. Tests use short intervals;
// production uses one second.
func WithTickInterval(d time.Duration) ClockOption {
	return func(c *Clock) {
		c.interval = d
	}
}

type clockEntry struct {
	cancel context.CancelFunc
	gen    uint64
}

// Clock drives each running timer from its own goroutine and ticker, so
// timers never share an interval.
type Clock struct {
	interval time.Duration

	mu      sync.Mutex
	entries map[string]clockEntry
	gen     uint64
	wg      sync.WaitGroup
}

// NewClock returns a Clock ticking once per second unless overridden.
func NewClock(opts ...ClockOption) *Clock {
	c := &Clock{
		interval: time.Second,
		entries:  make(map[string]clockEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run starts calling tick every interval under key until tick returns false
// or Stop is called. A goroutine already running under key is replaced.
func (c *Clock) Run(key string, tick func() bool) {
	c.mu.Lock()
	if e, running := c.entries[key]; running {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.gen++
	gen := c.gen
	c.entries[key] = clockEntry{cancel: cancel, gen: gen}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer c.forget(key, gen)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				if !tick() {
					return
				}
			}
		}
	}()
}

func (c *Clock) forget(key string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.gen == gen {
		e.cancel()
		delete(c.entries, key)
	}
}

// Running reports whether key currently has a ticking goroutine.
func (c *Clock) Running(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Stop cancels the goroutine for key, if any.
func (c *Clock) Stop(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.cancel()
		delete(c.entries, key)
	}
}

// StopPrefix cancels every goroutine whose key starts with prefix.
func (c *Clock) StopPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			e.cancel()
			delete(c.entries, key)
		}
	}
}

// Close cancels everything and waits for the goroutines to exit.
func (c *Clock) Close() {
	c.StopPrefix("")
	c.wg.Wait()
}
