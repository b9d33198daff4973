package locker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestAcquireBlocksSecondCaller(t *testing.T) {
	c := NewCoordinator()

	handle, err := c.Acquire(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Acquire(ctx, "acct-1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second Acquire() error = %v, want deadline exceeded", err)
	}

	handle.Release()

	if _, err := c.Acquire(context.Background(), "acct-1"); err != nil {
		t.Errorf("Acquire() after Release() error = %v", err)
	}
}

func TestIndependentAccountsDoNotBlock(t *testing.T) {
	c := NewCoordinator()

	h1, err := c.Acquire(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("Acquire(acct-1) error = %v", err)
	}
	defer h1.Release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	h2, err := c.Acquire(ctx, "acct-2")
	if err != nil {
		t.Fatalf("Acquire(acct-2) error = %v, want immediate grant", err)
	}
	h2.Release()
}

func TestOpposingOrderNoDeadlock(t *testing.T) {
	c := NewCoordinator()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			handle, err := c.Acquire(context.Background(), "acct-a", "acct-b")
			if err != nil {
				t.Errorf("Acquire(a, b) error = %v", err)
				return
			}
			handle.Release()
		}()
		go func() {
			defer wg.Done()
			handle, err := c.Acquire(context.Background(), "acct-b", "acct-a")
			if err != nil {
				t.Errorf("Acquire(b, a) error = %v", err)
				return
			}
			handle.Release()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("opposing-order acquisitions deadlocked")
	}
}

func TestFailedAcquireLeavesNoLockBehind(t *testing.T) {
	c := NewCoordinator()

	// Hold acct-b so a two-lock acquisition stalls after taking acct-a.
	blocker, err := c.Acquire(context.Background(), "acct-b")
	if err != nil {
		t.Fatalf("Acquire(acct-b) error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Acquire(ctx, "acct-a", "acct-b"); err == nil {
		t.Fatal("Acquire(a, b) succeeded while acct-b was held")
	}

	// acct-a must have been released on the failed path.
	h, err := c.Acquire(context.Background(), "acct-a")
	if err != nil {
		t.Fatalf("Acquire(acct-a) after failed acquisition error = %v", err)
	}
	h.Release()
	blocker.Release()
}

func TestReleaseIsIdempotent(t *testing.T) {
	c := NewCoordinator()

	handle, err := c.Acquire(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	handle.Release()
	handle.Release() // second call must not double-unlock

	again, err := c.Acquire(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("Acquire() after double Release() error = %v", err)
	}
	again.Release()
}

func TestDuplicateKeysCollapse(t *testing.T) {
	c := NewCoordinator()

	handle, err := c.Acquire(context.Background(), "acct-1", "acct-1")
	if err != nil {
		t.Fatalf("Acquire() with duplicate keys error = %v", err)
	}
	handle.Release()

	again, err := c.Acquire(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("Acquire() after duplicate release error = %v", err)
	}
	again.Release()
}
