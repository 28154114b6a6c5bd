package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	xerrors "coldlist-service/internal/pkg/errors"
)

func TestLocalLockerExclusive(t *testing.T) {
	l := NewLocalLocker(20 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, ColdListKey(1))
	if err != nil {
		t.Fatalf("expected first acquire to succeed, got %v", err)
	}

	if _, err := l.Acquire(ctx, ColdListKey(1)); !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}
	if xerrors.KindOf(ErrNotAcquired) != xerrors.KindConflict {
		t.Errorf("expected not-acquired to be a conflict")
	}

	// Other keys are independent.
	releaseOther, err := l.Acquire(ctx, ColdListKey(2))
	if err != nil {
		t.Fatalf("expected other key to be free, got %v", err)
	}
	releaseOther()

	release()
	release()

	again, err := l.Acquire(ctx, ColdListKey(1))
	if err != nil {
		t.Fatalf("expected acquire after release to succeed, got %v", err)
	}
	again()

	if len(l.slots) != 0 {
		t.Errorf("expected slots to be cleaned up, got %d", len(l.slots))
	}
}

func TestLocalLockerContextCancel(t *testing.T) {
	l := NewLocalLocker(time.Second)
	release, err := l.Acquire(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.Acquire(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLocalLockerSerializes(t *testing.T) {
	l := NewLocalLocker(time.Second)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "shared")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("expected at most 1 holder, got %d", maxSeen)
	}
}

func TestColdListKey(t *testing.T) {
	if got := ColdListKey(42); got != "coldlist:42" {
		t.Errorf("expected coldlist:42, got %s", got)
	}
}
