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

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

// poolState is the totally ordered lifecycle of a Pool: Running(0) <
// ShuttingDown(1) < ShutDown(2) < Terminated(3). Transitions are
// monotonic; the CAS-retry loop in advanceState is the same shape as the
// teacher's workerPoolExecutorState.SetRunState, generalized from a
// packed (run-state, worker-count) word to a plain state integer, since
// this pool's worker count is fixed at N and doesn't need to share a word
// with the state for atomicity.
type poolState int32

const (
	poolRunning poolState = iota
	poolShuttingDown
	poolShutDown
	poolTerminated
)

// Config configures a Pool at construction time.
type Config struct {
	// Parallelism is the number of queues, and of workers while Running.
	// Must be >= 1. For the router's mask-based fast path, it should be a
	// power of two; non-power-of-two values fall back to a modulo.
	Parallelism uint32

	// AffinityGroupSize is the fixed per-queue capacity C. Must be >= 1.
	AffinityGroupSize int

	// Wait is invoked by a worker whenever its queue is empty. Defaults to
	// BusySpinWaitStrategy if nil.
	Wait WaitStrategy

	// ThreadFactory produces each worker's backing goroutine. Defaults to
	// DefaultThreadFactory if nil.
	ThreadFactory ThreadFactory

	// Name identifies the pool in RejectionError messages. Defaults to
	// "affinitypool" if empty.
	Name string

	// Log receives lifecycle and rejection events. Defaults to
	// defaultLogger (a stumpy-backed JSON logger writing to stderr) if nil.
	Log *logiface.Logger[logiface.Event]
}

// Pool is a fixed-parallelism, affinity-routed worker pool.
type Pool struct {
	name string

	n             uint32
	queues        []*BoundedQueue
	router        *AffinityRouter
	wait          WaitStrategy
	threadFactory ThreadFactory
	log           *logiface.Logger[logiface.Event]

	state poolState // atomic

	// mu (the bookkeeping lock) serializes worker-set mutation, state
	// transitions, and the termination waiter list. It is never held
	// across task execution or a queue poll.
	mu                 sync.Mutex
	workers            map[*Worker]struct{}
	nextWorkerID       int
	terminationWaiters []chan struct{}

	submitted uint64 // atomic, for Stats
	rejected  uint64 // atomic, for Stats
}

var (
	errZeroParallelism = &InvalidArgumentError{Reason: "Parallelism must be >= 1"}
	errZeroGroupSize   = &InvalidArgumentError{Reason: "AffinityGroupSize must be >= 1"}
)

// NewPool constructs and starts a Pool per config. Workers are started
// immediately: the pool begins Running with exactly config.Parallelism
// workers, one per queue.
func NewPool(config Config) (*Pool, error) {
	if config.Parallelism == 0 {
		return nil, errZeroParallelism
	}
	if config.AffinityGroupSize < 1 {
		return nil, errZeroGroupSize
	}

	wait := config.Wait
	if wait == nil {
		wait = BusySpinWaitStrategy{}
	}
	threadFactory := config.ThreadFactory
	if threadFactory == nil {
		threadFactory = DefaultThreadFactory{}
	}
	name := config.Name
	if name == "" {
		name = "affinitypool"
	}
	log := config.Log
	if log == nil {
		log = defaultLogger
	}

	n := config.Parallelism
	queues := make([]*BoundedQueue, n)
	for i := range queues {
		queues[i] = NewBoundedQueue(config.AffinityGroupSize)
	}

	p := &Pool{
		name:          name,
		n:             n,
		queues:        queues,
		router:        NewAffinityRouter(n),
		wait:          wait,
		threadFactory: threadFactory,
		log:           log,
		state:         poolRunning,
		workers:       make(map[*Worker]struct{}, n),
	}

	p.log.Info().Str("pool", name).Int("parallelism", int(n)).Log("pool started")

	for i := range queues {
		w := p.newWorkerLocked(queues[i])
		p.workers[w] = struct{}{}
		w.start()
	}

	return p, nil
}

func (p *Pool) newWorkerLocked(queue *BoundedQueue) *Worker {
	id := p.nextWorkerID
	p.nextWorkerID++
	return newWorker(id, p, queue)
}

func (p *Pool) loadState() poolState {
	return poolState(atomic.LoadInt32((*int32)(&p.state)))
}

// advanceState CAS-loops the state forward to newState, refusing to move
// backward or to a lesser-or-equal state — the same monotonic-transition
// idiom as the teacher's workerPoolExecutorState.SetRunState.
func (p *Pool) advanceState(newState poolState) (prev poolState) {
	for {
		prev = p.loadState()
		if prev >= newState {
			return prev
		}
		if atomic.CompareAndSwapInt32((*int32)(&p.state), int32(prev), int32(newState)) {
			return prev
		}
	}
}

// Execute implements Executor.
func (p *Pool) Execute(task Task) error {
	if task == nil {
		return &InvalidArgumentError{Reason: "task must not be nil"}
	}

	if p.loadState() != poolRunning {
		atomic.AddUint64(&p.rejected, 1)
		p.log.Warning().Str("pool", p.name).Log("rejected task: pool is not running")
		return newRejectionError(p.name, task, "pool is not running")
	}

	idx := p.router.Route(task)
	if !p.queues[idx].Add(task) {
		atomic.AddUint64(&p.rejected, 1)
		p.log.Warning().Str("pool", p.name).Int("queue", int(idx)).Log("rejected task: queue full")
		return newRejectionError(p.name, task, "target queue is full")
	}

	atomic.AddUint64(&p.submitted, 1)
	return nil
}

// Shutdown implements Executor.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loadState() == poolRunning {
		p.advanceState(poolShuttingDown)
		p.log.Info().Str("pool", p.name).Log("shutdown requested, draining queued tasks")
		for w := range p.workers {
			w.stopIfIdle()
		}
	}
	p.attemptTermination()
}

// ShutdownNow implements Executor. It always returns an empty slice: the
// core never surfaces abandoned queued work.
func (p *Pool) ShutdownNow() []Task {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.advanceState(poolShutDown)
	p.log.Warning().Str("pool", p.name).Log("forced shutdown requested, abandoning queued tasks")
	for w := range p.workers {
		w.stop()
	}
	p.attemptTermination()

	return nil
}

// onWorkerExit is called by a Worker's run loop, exactly once, as it
// exits. It must not be called while holding p.mu.
func (p *Pool) onWorkerExit(w *Worker, abrupt bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.workers, w)
	state := p.loadState()

	switch {
	case len(p.workers) == 0 && !abrupt && state >= poolShuttingDown:
		p.advanceState(poolShutDown)
		p.log.Info().Str("pool", p.name).Log("all workers drained, pool shut down")
		p.attemptTermination()

	case abrupt && state == poolRunning:
		// A worker dying of its own accord during graceful shutdown is not
		// replaced — the pool is tearing down. Only a worker that dies
		// abruptly while the pool is still Running gets a replacement, for
		// the same queue.
		p.log.Err().Str("pool", p.name).Int("worker", w.id).Log("worker exited abruptly, replacing")
		replacement := p.newWorkerLocked(w.queue)
		p.workers[replacement] = struct{}{}
		replacement.start()
	}
}

// attemptTermination transitions to Terminated if the worker registry is
// empty and the pool's state is ShutDown (whether reached by ShutdownNow or
// by the last worker draining after Shutdown). Must be called with p.mu
// held.
func (p *Pool) attemptTermination() {
	if len(p.workers) == 0 && p.loadState() == poolShutDown {
		p.advanceState(poolTerminated)
		p.log.Info().Str("pool", p.name).Log("pool terminated")

		waiters := p.terminationWaiters
		p.terminationWaiters = nil
		for _, ch := range waiters {
			close(ch)
		}
	}
}

// IsShutdown implements Executor. True iff state == ShutDown exactly, not
// ShuttingDown: a shutting-down pool is still draining previously
// submitted tasks, and has not yet stopped processing.
func (p *Pool) IsShutdown() bool {
	return p.loadState() == poolShutDown
}

// IsTerminated implements Executor.
func (p *Pool) IsTerminated() bool {
	return p.loadState() == poolTerminated
}

// AwaitTermination implements Executor. It is grounded on the teacher's
// Shutdown/tryTerminate termination-channel fan-out
// (concurrent/worker_pool_executor.go's executor.terminations): callers
// register a one-shot channel and block on it or a timer, instead of
// polling IsTerminated.
func (p *Pool) AwaitTermination(timeout time.Duration) bool {
	if p.IsTerminated() {
		return true
	}
	if timeout <= 0 {
		return false
	}

	p.mu.Lock()
	if p.loadState() == poolTerminated {
		p.mu.Unlock()
		return true
	}
	ch := make(chan struct{})
	p.terminationWaiters = append(p.terminationWaiters, ch)
	p.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		return p.IsTerminated()
	}
}

// Stats is a read-only snapshot of a Pool's counters, for observability.
// It exposes no task identities or queue content, only counts.
type Stats struct {
	Parallelism uint32
	WorkerCount int
	Submitted   uint64
	Rejected    uint64
	QueueLength []int
	QueueCapacity []int
}

// Stats returns a snapshot of the pool's current counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	workerCount := len(p.workers)
	p.mu.Unlock()

	lengths := make([]int, len(p.queues))
	capacities := make([]int, len(p.queues))
	for i, q := range p.queues {
		capacities[i] = q.Capacity()
		// The capacity-enforcing size counter; it also counts slots reserved
		// by an Add that has not yet linked its node in.
		lengths[i] = int(atomic.LoadInt64(&q.size))
	}

	return Stats{
		Parallelism:   p.n,
		WorkerCount:   workerCount,
		Submitted:     atomic.LoadUint64(&p.submitted),
		Rejected:      atomic.LoadUint64(&p.rejected),
		QueueLength:   lengths,
		QueueCapacity: capacities,
	}
}
