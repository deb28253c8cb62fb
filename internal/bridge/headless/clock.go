package headless

import (
	"sort"
	"sync"
	"time"
)

// Clock supplies wall-clock time and one-shot timers
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func())
}

// RealClock is backed by the time package
type RealClock struct{}

// Now returns time.Now()
func (RealClock) Now() time.Time { return time.Now() }

// AfterFunc schedules f with time.AfterFunc
func (RealClock) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

type manualTimer struct {
	at  time.Time
	seq uint64
	f   func()
}

// ManualClock only moves when told to. Timers fire from Advance, in due order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []manualTimer
}

// NewManualClock creates a clock stopped at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc registers f to run once the clock passes now+d
func (c *ManualClock) AfterFunc(d time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.timers = append(c.timers, manualTimer{at: c.now.Add(d), seq: c.seq, f: f})
}

// Pending returns the number of timers not yet fired
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Advance moves the clock forward by d, firing due timers. Timer callbacks run
// without the clock lock held and may schedule further timers.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)

	for {
		sort.Slice(c.timers, func(i, j int) bool {
			if c.timers[i].at.Equal(c.timers[j].at) {
				return c.timers[i].seq < c.timers[j].seq
			}
			return c.timers[i].at.Before(c.timers[j].at)
		})

		if len(c.timers) == 0 || c.timers[0].at.After(target) {
			break
		}

		next := c.timers[0]
		c.timers = c.timers[1:]
		c.now = next.at

		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}

	c.now = target
	c.mu.Unlock()
}
