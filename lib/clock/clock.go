package clock

import (
	"sync"
	"time"
)

// Clock abstracts the time operations the publisher waits on, so tests
// can observe delays without sleeping.
type Clock interface {
	Now() time.Time
	// After returns a channel that receives once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// FakeClock fires every After immediately, moves its own time forward by
// the requested duration and remembers each wait.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waits   []time.Duration
}

func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.waits = append(c.waits, d)
	if d > 0 {
		c.current = c.current.Add(d)
	}
	ch := make(chan time.Time, 1)
	ch <- c.current
	return ch
}

// Waits returns the durations passed to After, in call order.
func (c *FakeClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}
