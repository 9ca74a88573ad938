// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bridge provides a ready-gated FIFO for operations destined for a
// surface that may not have finished initializing.
package bridge

import "sync"

// =============================================================================
// READY-GATED QUEUE
// =============================================================================

// Queue buffers operations until the target surface signals readiness, then
// flushes them in arrival order exactly once. Operations submitted after the
// readiness transition run immediately.
//
// Invariants: no reordering, no dropped entries, no double flush.
type Queue struct {
	mu      sync.Mutex
	ready   bool
	pending []func()
}

// NewQueue returns a queue in the not-ready state.
func NewQueue() *Queue {
	return &Queue{}
}

// Do runs op immediately if the queue is ready, otherwise buffers it.
func (q *Queue) Do(op func()) {
	q.mu.Lock()
	if !q.ready {
		q.pending = append(q.pending, op)
		q.mu.Unlock()
		return
	}
	q.mu.Unlock()

	op()
}

// SetReady marks the queue ready and flushes buffered operations in arrival
// order. Subsequent calls have no effect.
func (q *Queue) SetReady() {
	q.mu.Lock()
	if q.ready {
		q.mu.Unlock()
		return
	}
	q.ready = true
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	// Run outside the lock so flushed operations may submit new ones.
	for _, op := range pending {
		op()
	}
}

// Ready reports whether the readiness transition has happened.
func (q *Queue) Ready() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ready
}

// Len returns the number of buffered operations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
