package layout

import (
	"context"
	"sync"
	"time"
)

// Handle owns a running tick loop. Stop is safe to call more than once and
// from inside the step function.
type Handle interface {
	Stop()
}

// Driver runs step repeatedly until it returns false, ctx is done, or the
// returned handle is stopped.
type Driver interface {
	Drive(ctx context.Context, step func() bool) Handle
}

// DefaultTickInterval approximates one animation frame.
const DefaultTickInterval = 16 * time.Millisecond

// TickerDriver calls step on a time.Ticker from its own goroutine.
type TickerDriver struct {
	Interval time.Duration
}

// Drive starts the loop and returns immediately.
func (d TickerDriver) Drive(ctx context.Context, step func() bool) Handle {
	interval := d.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &tickerHandle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		defer cancel()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil || !step() {
					return
				}
			}
		}
	}()
	return h
}

type tickerHandle struct {
	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

func (h *tickerHandle) Stop() {
	h.once.Do(h.cancel)
}

// Done is closed once the loop goroutine has exited.
func (h *tickerHandle) Done() <-chan struct{} { return h.done }

// BatchDriver runs steps back to back on its own goroutine. Headless
// renders use it to settle a layout as fast as possible.
type BatchDriver struct{}

// Drive starts the loop and returns immediately.
func (BatchDriver) Drive(ctx context.Context, step func() bool) Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &tickerHandle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		defer cancel()
		for ctx.Err() == nil && step() {
		}
	}()
	return h
}
