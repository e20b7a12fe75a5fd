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
	"sync/atomic"
	"unsafe"
)

// boundedQueueNode is the intrusive link node. The teacher's
// workerPoolTaskQueue links tasks directly (a task *is* a node); here the
// node is a separate allocation so BoundedQueue can hold a plain Task
// without requiring every Task implementation to carry a next pointer.
type boundedQueueNode struct {
	task Task
	next unsafe.Pointer // *boundedQueueNode
}

// BoundedQueue is a fixed-capacity, lock-free, multi-producer/single-
// consumer FIFO. Add may be called concurrently from any number of
// goroutines; IsEmpty may be called by any goroutine, but only one
// goroutine at a time may call Poll (the queue's current owning Worker; a
// replacement Worker takes over only after the previous one has exited).
//
// The structure is a Michael & Scott style linked queue: tail is advanced
// by producers with CAS loops instead of the teacher's mutex
// (concurrent/queue.go's workerPoolTaskQueue serializes Push/Poll with a
// sync.Mutex+sync.Cond; the CAS idiom the teacher already uses for its
// racy tail read in Empty() is generalized here to the Add path), and head
// is advanced by the single consumer with a plain store, so neither
// producers nor the consumer ever block on a lock. Capacity is enforced with an atomic counter reserved before the
// node is linked in, mirroring the CAS-retry-loop style of
// workerPoolExecutorState.
type BoundedQueue struct {
	capacity int64
	size     int64 // atomic; reserved before link-in, released after poll

	head unsafe.Pointer // *boundedQueueNode, dummy node, owned by consumer
	tail unsafe.Pointer // *boundedQueueNode
}

// NewBoundedQueue creates a BoundedQueue with the given fixed capacity.
// capacity must be at least 1.
func NewBoundedQueue(capacity int) *BoundedQueue {
	if capacity < 1 {
		capacity = 1
	}
	dummy := unsafe.Pointer(&boundedQueueNode{})
	return &BoundedQueue{
		capacity: int64(capacity),
		head:     dummy,
		tail:     dummy,
	}
}

// Capacity returns the fixed capacity C this queue was constructed with.
func (q *BoundedQueue) Capacity() int {
	return int(q.capacity)
}

// Add enqueues task at the tail. It returns false without blocking if the
// queue is already at capacity.
func (q *BoundedQueue) Add(task Task) bool {
	for {
		size := atomic.LoadInt64(&q.size)
		if size >= q.capacity {
			return false
		}
		if atomic.CompareAndSwapInt64(&q.size, size, size+1) {
			break
		}
	}

	n := unsafe.Pointer(&boundedQueueNode{task: task})
	for {
		tail := (*boundedQueueNode)(atomic.LoadPointer(&q.tail))
		next := atomic.LoadPointer(&tail.next)
		if next == nil {
			if atomic.CompareAndSwapPointer(&tail.next, nil, n) {
				// Best-effort tail advance; a later Add or our own next
				// iteration will finish this if the CAS below loses a race.
				atomic.CompareAndSwapPointer(&q.tail, unsafe.Pointer(tail), n)
				return true
			}
		} else {
			// Another producer linked a node but hasn't advanced tail yet.
			// Help it along before retrying our own link attempt.
			atomic.CompareAndSwapPointer(&q.tail, unsafe.Pointer(tail), next)
		}
	}
}

// Poll dequeues and returns the task at the head, or (nil, false) if the
// queue is empty. Must only be called by the queue's single consumer.
func (q *BoundedQueue) Poll() (Task, bool) {
	head := (*boundedQueueNode)(q.head)
	next := (*boundedQueueNode)(atomic.LoadPointer(&head.next))
	if next == nil {
		return nil, false
	}

	task := next.task
	next.task = nil // help GC; the old dummy (head) is now unreferenced
	q.head = unsafe.Pointer(next)

	atomic.AddInt64(&q.size, -1)
	return task, true
}

// IsEmpty reports whether the queue currently holds no tasks. The result
// may be stale the instant it is returned; callers must not rely on it for
// anything beyond a back-off hint.
func (q *BoundedQueue) IsEmpty() bool {
	return atomic.LoadInt64(&q.size) <= 0
}
