package in_memory

import (
	"sync"
	"time"

	"github.com/nftmarket/auction-engine/internal/port"
)

var (
	_ port.Clock = (*ManualClock)(nil)
	_ port.Clock = (*WallClock)(nil)
)

// ManualClock is a tick counter advanced explicitly by the caller. Tests play
// the role of block production with it.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

func NewManualClock(start int64) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d ticks.
func (c *ManualClock) Advance(d int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// WallClock maps one tick to one second of wall time.
type WallClock struct{}

func (WallClock) Now() int64 { return time.Now().Unix() }
