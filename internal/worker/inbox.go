package worker

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Inbox is a Deliverer backed by a channel. The goroutine that reads from it
// is the owning loop. Sends after Close are dropped.
type Inbox struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

// NewInbox creates an inbox with the given buffer size.
func NewInbox(buffer int) *Inbox {
	if buffer < 0 {
		buffer = 0
	}
	return &Inbox{
		ch:   make(chan tea.Msg, buffer),
		done: make(chan struct{}),
	}
}

// Send blocks until the owning loop accepts msg or the inbox is closed.
func (b *Inbox) Send(msg tea.Msg) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.ch <- msg:
	case <-b.done:
	}
}

// C exposes the receive side for select loops.
func (b *Inbox) C() <-chan tea.Msg { return b.ch }

// Next waits for the next message. It returns false when ctx ends or the
// inbox is closed.
func (b *Inbox) Next(ctx context.Context) (tea.Msg, bool) {
	select {
	case msg := <-b.ch:
		return msg, true
	case <-b.done:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

// Close makes further sends no-ops. It is safe to call more than once.
func (b *Inbox) Close() {
	b.once.Do(func() { close(b.done) })
}
