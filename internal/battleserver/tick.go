package battleserver

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TickManager runs the shared loop that advances every live encounter.
// Callbacks are invoked sequentially within the loop goroutine and receive
// the tick time, so each encounter advances on a consistent clock.
//
// Invariant: all callbacks are invoked at most once per tick interval.
type TickManager struct {
	interval time.Duration
	mu       sync.Mutex
	ticks    map[uuid.UUID]func(now time.Time)
}

// NewTickManager returns a manager that fires ticks every interval.
//
// Precondition: interval must be > 0.
func NewTickManager(interval time.Duration) *TickManager {
	if interval <= 0 {
		panic("battleserver.NewTickManager: interval must be > 0")
	}
	return &TickManager{
		interval: interval,
		ticks:    make(map[uuid.UUID]func(now time.Time)),
	}
}

// Register installs the tick callback for encounterID. Replaces any existing
// callback.
func (t *TickManager) Register(encounterID uuid.UUID, fn func(now time.Time)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ticks[encounterID] = fn
}

// Unregister removes the tick callback for encounterID.
func (t *TickManager) Unregister(encounterID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.ticks, encounterID)
}

// Start begins the tick loop. Runs until ctx is cancelled.
//
// Postcondition: all registered tick callbacks are invoked once per interval.
func (t *TickManager) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				t.mu.Lock()
				callbacks := make([]func(now time.Time), 0, len(t.ticks))
				for _, fn := range t.ticks {
					callbacks = append(callbacks, fn)
				}
				t.mu.Unlock()
				for _, fn := range callbacks {
					fn(now)
				}
			}
		}
	}()
}
