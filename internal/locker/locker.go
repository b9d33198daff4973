package locker

import (
	"context"
	"slices"
	"sync"

	"github.com/sasha-s/go-deadlock"
)

// Coordinator hands out per-account exclusive locks.
// Acquire always takes locks in canonical (sorted key) order, so two
// transfers moving money in opposite directions between the same pair of
// accounts can never hold one lock each and wait on the other — the
// classic resource-ordering deadlock avoidance.
type Coordinator struct {
	mu    deadlock.Mutex // protects the lock table itself
	locks map[string]chan struct{}
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		locks: make(map[string]chan struct{}),
	}
}

// lockFor returns the lock channel for key, creating it on first use.
// Each per-account lock is a capacity-1 channel rather than a sync.Mutex
// so that Acquire can give up when the caller's context expires.
func (c *Coordinator) lockFor(key string) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		c.locks[key] = ch
	}
	return ch
}

// Acquire blocks until the locks for every given key are held, taking
// them in sorted order (duplicates are collapsed). If ctx expires first,
// any locks already taken are released and ctx.Err() is returned — a
// failed Acquire never leaves a lock behind.
func (c *Coordinator) Acquire(ctx context.Context, keys ...string) (*Handle, error) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	held := make([]chan struct{}, 0, len(sorted))
	for _, key := range sorted {
		ch := c.lockFor(key)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-ctx.Done():
			for i := len(held) - 1; i >= 0; i-- {
				<-held[i]
			}
			return nil, ctx.Err()
		}
	}
	return &Handle{held: held}, nil
}

// Handle is a scoped acquisition of one or more account locks.
// Release is idempotent, so callers can defer it and still release
// early on some paths.
type Handle struct {
	held []chan struct{}
	once sync.Once
}

// Release lets go of every lock in the handle, in reverse acquisition order.
func (h *Handle) Release() {
	h.once.Do(func() {
		for i := len(h.held) - 1; i >= 0; i-- {
			<-h.held[i]
		}
	})
}
