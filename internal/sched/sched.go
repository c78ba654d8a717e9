// Package sched provides the next-turn scheduler used to defer wrap-up
// notifications until after the triggering command has completed.
package sched

import "sync"

// Scheduler runs a task strictly after the current command returns.
type Scheduler interface {
	Defer(fn func())
}

// Async runs deferred tasks on their own goroutine. Tasks that touch the
// engine re-acquire its command lock, so they observe a state no earlier
// than the end of the triggering command.
type Async struct{}

func (Async) Defer(fn func()) {
	go fn()
}

// Manual queues deferred tasks until Flush is called. Intended for tests
// that need deterministic ordering of wrap-up notifications.
type Manual struct {
	mu    sync.Mutex
	queue []func()
}

func (m *Manual) Defer(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, fn)
}

// Flush runs all queued tasks in order and returns how many ran. Tasks
// queued while flushing run in the same pass.
func (m *Manual) Flush() int {
	ran := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return ran
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		fn()
		ran++
	}
}

// Pending returns the number of queued tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
