/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package affinitypool implements a fixed-parallelism worker pool that
// routes each submitted task to one of N single-consumer queues by task
// identity, so that a given task identity always executes on the same
// worker (and, paired with OS thread pinning, the same core).
package affinitypool

import "time"

// Task represents a unit of work that can be executed by a Pool.
type Task interface {
	// Run performs the work. A panic escaping Run is treated as a task
	// failure: it kills the worker currently running it (the worker is
	// replaced if the pool is still Running). The core does not recover
	// panics on the caller's behalf beyond preventing them from crashing
	// the process.
	Run()
}

// TaskFunc is an adapter to allow ordinary functions to be used as a Task.
type TaskFunc func()

var _ Task = (TaskFunc)(nil)

// Run implements Task. It calls f().
func (f TaskFunc) Run() {
	f()
}

// Executor is the caller-facing surface of a Pool.
type Executor interface {
	// Execute submits task for execution, routing it to a queue by task
	// affinity. It returns a *RejectionError if the pool is not Running or
	// the target queue is full, and a *InvalidArgumentError if task is nil.
	Execute(task Task) error

	// Shutdown transitions the pool to ShuttingDown (a no-op if the pool
	// isn't Running). Previously submitted tasks are drained; no new tasks
	// are accepted.
	Shutdown()

	// ShutdownNow transitions the pool directly to ShutDown, interrupting
	// every worker unconditionally. Queued tasks are discarded; the
	// in-flight task on each worker, if any, is allowed to finish. Always
	// returns an empty slice — the core never surfaces abandoned work.
	ShutdownNow() []Task

	// IsShutdown reports whether the pool's state is exactly ShutDown (not
	// ShuttingDown) — see the state-machine note in pool.go.
	IsShutdown() bool

	// IsTerminated reports whether the pool has fully drained its worker
	// registry after a shutdown.
	IsTerminated() bool

	// AwaitTermination blocks until the pool reaches Terminated or timeout
	// elapses, returning whether it reached Terminated. A non-positive
	// timeout returns immediately with the current IsTerminated() value.
	AwaitTermination(timeout time.Duration) bool
}

var _ Executor = (*Pool)(nil)
