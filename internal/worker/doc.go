// Package worker runs blocking work on a fixed set of goroutines and hands
// each result back to a single owning loop.
//
// A task is submitted with Submit and produces exactly one Done[T] message.
// The message is delivered through the pool's Deliverer, which is the owning
// loop's mailbox. In practice that is an Inbox: the terminal UI drains it
// with one listening command at a time, and CLI commands and tests call
// Next directly. A *tea.Program also satisfies Deliverer. Work functions never see the Deliverer, so anything
// they want to change on the owning side has to travel inside the returned
// value.
package worker
