package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDrainTimeout bounds how long Shutdown waits for outstanding tasks.
const DefaultDrainTimeout = 2 * time.Second

// ErrClosed is returned by Submit after Shutdown has been called.
var ErrClosed = errors.New("worker pool is shut down")

// Deliverer receives completion messages on behalf of the owning loop.
// *tea.Program satisfies it.
type Deliverer interface {
	Send(msg tea.Msg)
}

// Handle identifies a submitted task.
type Handle struct {
	ID   uint64
	Name string
}

// Done is the single completion message for a task. Exactly one of Value or
// Err is meaningful: Err is non-nil when the work returned an error or
// panicked.
type Done[T any] struct {
	Task  Handle
	Value T
	Err   error
}

// OK reports whether the task completed without error.
func (d Done[T]) OK() bool { return d.Err == nil }

// PanicError wraps a panic raised by a work function.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v\n%s", e.Value, e.Stack)
}

type task struct {
	handle Handle
	run    func(ctx context.Context) tea.Msg
}

// Pool is a fixed-size goroutine pool with an unbounded FIFO queue.
type Pool struct {
	ctx     context.Context
	deliver Deliverer
	logger  *slog.Logger
	size    int

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []task
	closed bool

	workers   sync.WaitGroup
	nextID    atomic.Uint64
	submitted atomic.Uint64
	active    atomic.Int64
}

// NewPool starts size workers that deliver completions to d. A size <= 0
// uses runtime.NumCPU(). ctx is handed to every work function; Shutdown does
// not cancel it.
func NewPool(ctx context.Context, size int, d Deliverer, logger *slog.Logger) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p := &Pool{
		ctx:     ctx,
		deliver: d,
		logger:  logger,
		size:    size,
	}
	p.cond = sync.NewCond(&p.mu)

	p.workers.Add(size)
	for i := 0; i < size; i++ {
		go p.work()
	}
	logger.Debug("worker pool started", "size", size)
	return p
}

// Submit queues work on p and returns immediately. The eventual Done[T] is
// delivered to the pool's Deliverer.
func Submit[T any](p *Pool, name string, work func(ctx context.Context) (T, error)) (Handle, error) {
	h := Handle{ID: p.nextID.Add(1), Name: name}
	t := task{
		handle: h,
		run: func(ctx context.Context) tea.Msg {
			done := Done[T]{Task: h}
			done.Value, done.Err = call(ctx, work)
			return done
		},
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Handle{}, ErrClosed
	}
	p.queue = append(p.queue, t)
	p.submitted.Add(1)
	p.mu.Unlock()
	p.cond.Signal()

	return h, nil
}

func call[T any](ctx context.Context, work func(ctx context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return work(ctx)
}

func (p *Pool) work() {
	defer p.workers.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		t := p.queue[0]
		p.queue[0] = task{}
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.active.Add(1)
		msg := t.run(p.ctx)
		p.active.Add(-1)

		if p.deliver != nil {
			p.deliver.Send(msg)
		}
	}
}

// Size returns the number of worker goroutines.
func (p *Pool) Size() int { return p.size }

// Submitted returns how many tasks have been accepted since the pool started.
func (p *Pool) Submitted() uint64 { return p.submitted.Load() }

// Pending returns the number of queued plus running tasks.
func (p *Pool) Pending() int {
	p.mu.Lock()
	queued := len(p.queue)
	p.mu.Unlock()
	return queued + int(p.active.Load())
}

// Shutdown stops accepting work and waits up to timeout for queued and
// running tasks to finish. It returns false if the wait timed out; those
// tasks keep running and their completions still go to the Deliverer.
func (p *Pool) Shutdown(timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultDrainTimeout
	}

	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()

	drained := make(chan struct{})
	go func() {
		p.workers.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		p.logger.Debug("worker pool drained")
		return true
	case <-time.After(timeout):
		p.logger.Warn("worker pool drain timed out", "timeout", timeout, "pending", p.Pending())
		return false
	}
}
