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

package affinitypool

import "sync/atomic"

// workerState is a lock-free word describing a Worker's run state. Each
// worker is the sole writer of its own state; readers (the shutdown
// pathways) tolerate a slightly stale read, the same trade-off the
// teacher's workerPoolExecutorState documents for its run-state word.
type workerState int32

const (
	workerNotStarted workerState = iota
	workerIdle
	workerInExecution
)

func (s *workerState) Load() workerState {
	return workerState(atomic.LoadInt32((*int32)(s)))
}

func (s *workerState) Store(v workerState) {
	atomic.StoreInt32((*int32)(s), int32(v))
}

// Worker owns exactly one BoundedQueue for its lifetime and drains it on a
// goroutine obtained from the pool's ThreadFactory.
type Worker struct {
	id    int
	pool  *Pool
	queue *BoundedQueue
	wait  WaitStrategy

	state       workerState
	interrupted int32 // atomic bool
}

func newWorker(id int, pool *Pool, queue *BoundedQueue) *Worker {
	return &Worker{
		id:    id,
		pool:  pool,
		queue: queue,
		wait:  pool.wait,
	}
}

// start spawns the worker's run loop via the pool's ThreadFactory and
// transitions it NotStarted -> Idle.
func (w *Worker) start() {
	w.state.Store(workerIdle)
	w.pool.threadFactory.NewThread(w.run)
}

// stop requests forceful termination: sets the interrupt flag if it
// hasn't already been set. This does not wake a cooperative wait — wait
// strategies never check the interrupt flag — so a worker InExecution
// finishes its current task before observing it; an Idle worker observes
// it on its next loop check (which happens promptly: every WaitStrategy
// returns from Wait() on its own, win or lose).
func (w *Worker) stop() {
	atomic.CompareAndSwapInt32(&w.interrupted, 0, 1)
}

// stopIfIdle is like stop, but only takes effect if the worker is
// observed Idle at the instant of the check. Workers InExecution are left
// to complete their task and observe any state change naturally.
func (w *Worker) stopIfIdle() {
	if w.state.Load() == workerIdle {
		atomic.CompareAndSwapInt32(&w.interrupted, 0, 1)
	}
}

// checkAndClearInterrupt reports whether the interrupt flag was set, and
// clears it atomically as part of the same check.
func (w *Worker) checkAndClearInterrupt() bool {
	return atomic.CompareAndSwapInt32(&w.interrupted, 1, 0)
}

// shouldKeepRunning reports whether the worker's main loop should take
// another pass: false once the pool is ShutDown, once it is ShuttingDown
// with nothing left in this worker's queue, or once this worker has been
// individually interrupted.
func (w *Worker) shouldKeepRunning() bool {
	state := w.pool.loadState()

	if state == poolShutDown {
		// ShutDown: stop regardless of queue contents.
		return false
	}
	if state >= poolShuttingDown && w.queue.IsEmpty() {
		// ShuttingDown with nothing left to drain.
		return false
	}
	if w.checkAndClearInterrupt() {
		return false
	}
	return true
}

// run is the worker's main loop. It always ends by calling
// pool.onWorkerExit, whether it exits normally (abrupt == false) or a task
// panics out of runTask (abrupt stays true, and the panic is recovered
// here so it cannot crash the process — only this worker's goroutine
// dies).
func (w *Worker) run() {
	abrupt := true
	defer func() {
		recover() // a failing task kills (and, via onWorkerExit, replaces) its worker; the core does not re-raise it.
		w.pool.onWorkerExit(w, abrupt)
	}()

	for w.shouldKeepRunning() {
		task, ok := w.queue.Poll()
		if !ok {
			w.wait.Wait()
			continue
		}
		w.runTask(task)
	}

	abrupt = false
}

// runTask executes task, guaranteeing the InExecution -> Idle transition
// back even if task.Run panics.
func (w *Worker) runTask(task Task) {
	w.state.Store(workerInExecution)
	defer w.state.Store(workerIdle)
	task.Run()
}
