// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// loop.go - Single-goroutine event loop for line mode.
package cli

import "sync"

// eventLoop runs posted functions one at a time on its own goroutine.
// Line mode has no Bubble Tea program, so protocol events and REPL actions
// are serialized here instead.
type eventLoop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

func newEventLoop() *eventLoop {
	l := &eventLoop{
		tasks: make(chan func(), 256),
		done:  make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *eventLoop) run() {
	defer l.wg.Done()
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-l.done:
			return
		}
	}
}

// post queues fn. It returns false once the loop has stopped.
func (l *eventLoop) post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// call runs fn on the loop and waits for it.
func (l *eventLoop) call(fn func()) bool {
	finished := make(chan struct{})
	if !l.post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// stop ends the loop after the running task. Queued tasks are dropped.
func (l *eventLoop) stop() {
	l.once.Do(func() { close(l.done) })
	l.wg.Wait()
}
