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

	"github.com/modern-go/concurrent"
)

// AffinityRouter maps a Task to one of N queue indices such that repeated
// submission of "the same" task (equal TaskKey) converges onto the same
// index for the remaining lifetime of the router.
type AffinityRouter struct {
	n          uint32
	mask       uint32 // n - 1, valid only when powerOfTwo
	powerOfTwo bool

	counter uint64 // atomic, monotone, wraps on overflow

	// routes is a TaskKey -> uint32 map. concurrent.Map is a sync.Map-API
	// compatible concurrent map (github.com/modern-go/concurrent); its
	// LoadOrStore returns the winning value on a colliding insert, so a
	// get-then-put race can never surface a stale read.
	routes *concurrent.Map
}

// NewAffinityRouter creates a router over n queues. n must be at least 1;
// when n is a power of two, routing uses a mask instead of a divide.
func NewAffinityRouter(n uint32) *AffinityRouter {
	if n == 0 {
		n = 1
	}
	return &AffinityRouter{
		n:          n,
		mask:       n - 1,
		powerOfTwo: n&(n-1) == 0,
		routes:     concurrent.NewMap(),
	}
}

// Route returns the queue index task should be sent to.
func (r *AffinityRouter) Route(task Task) uint32 {
	key := TaskKeyOf(task)

	if v, ok := r.routes.Load(key); ok {
		return v.(uint32)
	}

	// The counter increment and the map insertion are intentionally not
	// one atomic step: two concurrent submissions of a fresh key may each
	// compute their own candidate index; only the one that wins
	// LoadOrStore persists. The loser's candidate is discarded: LoadOrStore
	// hands it the winner's index, so every caller returns the same index.
	next := atomic.AddUint64(&r.counter, 1) - 1
	candidate := r.reduce(uint32(next))

	actual, _ := r.routes.LoadOrStore(key, candidate)
	return actual.(uint32)
}

func (r *AffinityRouter) reduce(i uint32) uint32 {
	if r.powerOfTwo {
		return i & r.mask
	}
	// Non-power-of-two N: a mask can't cover it, fall back to a divide.
	return i % r.n
}
