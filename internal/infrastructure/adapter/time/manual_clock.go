package time

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
)

// ManualClock is a TimeProvider that only moves when told to.
// Used to drive session expiry and ledger timestamps deterministically.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock frozen at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d core.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d.Std())
}

func (c *ManualClock) Since(t time.Time) core.Duration {
	return core.Duration(c.Now().Sub(t))
}

func (c *ManualClock) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}
