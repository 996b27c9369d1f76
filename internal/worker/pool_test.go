package worker

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func nextDone[T any](t *testing.T, inbox *Inbox) Done[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msg, ok := inbox.Next(ctx)
	if !ok {
		t.Fatal("timed out waiting for completion")
	}
	done, ok := msg.(Done[T])
	if !ok {
		t.Fatalf("unexpected message type %T", msg)
	}
	return done
}

func TestSubmitDeliversValue(t *testing.T) {
	inbox := NewInbox(4)
	pool := NewPool(context.Background(), 2, inbox, nil)
	defer pool.Shutdown(time.Second)

	h, err := Submit(pool, "answer", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	done := nextDone[int](t, inbox)
	if done.Task != h {
		t.Errorf("handle mismatch: got %+v, want %+v", done.Task, h)
	}
	if !done.OK() || done.Value != 42 {
		t.Errorf("unexpected completion: %+v", done)
	}
}

func TestSubmitDeliversError(t *testing.T) {
	inbox := NewInbox(4)
	pool := NewPool(context.Background(), 1, inbox, nil)
	defer pool.Shutdown(time.Second)

	boom := errors.New("boom")
	if _, err := Submit(pool, "fail", func(ctx context.Context) (string, error) {
		return "", boom
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	done := nextDone[string](t, inbox)
	if !errors.Is(done.Err, boom) {
		t.Errorf("expected boom, got %v", done.Err)
	}
}

func TestPanicIsCapturedAndPoolKeepsRunning(t *testing.T) {
	inbox := NewInbox(4)
	pool := NewPool(context.Background(), 1, inbox, nil)
	defer pool.Shutdown(time.Second)

	if _, err := Submit(pool, "panic", func(ctx context.Context) (int, error) {
		panic("kaboom")
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	done := nextDone[int](t, inbox)
	var pe *PanicError
	if !errors.As(done.Err, &pe) {
		t.Fatalf("expected PanicError, got %v", done.Err)
	}
	if !strings.Contains(done.Err.Error(), "kaboom") {
		t.Errorf("error text should carry panic value: %q", done.Err.Error())
	}
	if len(pe.Stack) == 0 {
		t.Error("expected stack trace in panic error")
	}

	if _, err := Submit(pool, "after", func(ctx context.Context) (int, error) {
		return 7, nil
	}); err != nil {
		t.Fatalf("Submit after panic failed: %v", err)
	}
	if got := nextDone[int](t, inbox); got.Value != 7 {
		t.Errorf("expected 7 after panic, got %+v", got)
	}
}

func TestConcurrencyIsBounded(t *testing.T) {
	const size = 3
	const tasks = 12

	inbox := NewInbox(tasks)
	pool := NewPool(context.Background(), size, inbox, nil)
	defer pool.Shutdown(time.Second)

	var running, peak atomic.Int64
	for i := 0; i < tasks; i++ {
		_, err := Submit(pool, "slow", func(ctx context.Context) (int, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return 0, nil
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	for i := 0; i < tasks; i++ {
		nextDone[int](t, inbox)
	}
	if got := peak.Load(); got > size {
		t.Errorf("peak concurrency %d exceeds pool size %d", got, size)
	}
	if got := pool.Submitted(); got != tasks {
		t.Errorf("Submitted = %d, want %d", got, tasks)
	}
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 1, NewInbox(1), nil)
	if !pool.Shutdown(time.Second) {
		t.Fatal("idle pool should drain immediately")
	}
	_, err := Submit(pool, "late", func(ctx context.Context) (int, error) { return 1, nil })
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestShutdownDrainsQueuedWork(t *testing.T) {
	inbox := NewInbox(8)
	pool := NewPool(context.Background(), 1, inbox, nil)

	var ran atomic.Int64
	for i := 0; i < 5; i++ {
		if _, err := Submit(pool, "q", func(ctx context.Context) (int, error) {
			time.Sleep(5 * time.Millisecond)
			ran.Add(1)
			return 0, nil
		}); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	if !pool.Shutdown(2 * time.Second) {
		t.Fatal("expected queued work to drain within timeout")
	}
	if got := ran.Load(); got != 5 {
		t.Errorf("ran %d tasks, want 5", got)
	}
}

func TestShutdownTimesOutAndLateDeliveryIsDropped(t *testing.T) {
	inbox := NewInbox(0)
	pool := NewPool(context.Background(), 1, inbox, nil)

	release := make(chan struct{})
	finished := make(chan struct{})
	if _, err := Submit(pool, "stuck", func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	start := time.Now()
	if pool.Shutdown(50 * time.Millisecond) {
		t.Fatal("expected drain to time out")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Shutdown waited %v, expected roughly the timeout", elapsed)
	}

	// The owning loop is gone; the late completion must not block the worker.
	inbox.Close()
	go func() {
		pool.workers.Wait()
		close(finished)
	}()
	close(release)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("worker blocked delivering into a closed inbox")
	}
}

func TestSubmittedCountsBeforeWorkRuns(t *testing.T) {
	inbox := NewInbox(4)
	pool := NewPool(context.Background(), 1, inbox, nil)
	defer pool.Shutdown(time.Second)

	for want := uint64(1); want <= 3; want++ {
		Submit(pool, "count", func(ctx context.Context) (uint64, error) {
			return pool.Submitted(), nil
		})
		if seen := nextDone[uint64](t, inbox).Value; seen < want {
			t.Errorf("task %d saw Submitted = %d", want, seen)
		}
	}
}

func TestPendingCountsQueuedAndRunning(t *testing.T) {
	inbox := NewInbox(4)
	pool := NewPool(context.Background(), 1, inbox, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	Submit(pool, "block", func(ctx context.Context) (int, error) {
		close(started)
		<-release
		return 0, nil
	})
	Submit(pool, "queued", func(ctx context.Context) (int, error) { return 0, nil })

	<-started
	if got := pool.Pending(); got != 2 {
		t.Errorf("Pending = %d, want 2", got)
	}
	close(release)
	nextDone[int](t, inbox)
	nextDone[int](t, inbox)
	pool.Shutdown(time.Second)
	if got := pool.Pending(); got != 0 {
		t.Errorf("Pending after drain = %d, want 0", got)
	}
}
