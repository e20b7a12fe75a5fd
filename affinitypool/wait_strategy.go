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
	"runtime"
	"time"
)

// WaitStrategy is invoked by a worker whenever its queue is observed
// empty. Implementations must not block on any pool-owned lock and must
// not panic.
type WaitStrategy interface {
	Wait()
}

// BusySpinWaitStrategy never yields. Lowest latency, highest CPU.
type BusySpinWaitStrategy struct{}

// Wait implements WaitStrategy.
func (BusySpinWaitStrategy) Wait() {}

// YieldWaitStrategy hints the Go scheduler to run other goroutines before
// resuming the worker.
type YieldWaitStrategy struct{}

// Wait implements WaitStrategy.
func (YieldWaitStrategy) Wait() {
	runtime.Gosched()
}

// ParkWaitStrategy sleeps for the smallest interval the runtime's timer
// will honor, which in practice rounds up to the platform's minimum
// scheduling granularity.
type ParkWaitStrategy struct{}

// Wait implements WaitStrategy.
func (ParkWaitStrategy) Wait() {
	time.Sleep(time.Nanosecond)
}

// NewWaitStrategy maps a "worker-waiting-strategy" configuration token to
// a WaitStrategy instance. Recognized tokens are "busy-spin", "yield" and
// "sleep" (the config name for ParkWaitStrategy); "" defaults to
// BusySpinWaitStrategy. Anything else is an InvalidArgumentError.
func NewWaitStrategy(name string) (WaitStrategy, error) {
	switch name {
	case "", "busy-spin":
		return BusySpinWaitStrategy{}, nil
	case "yield":
		return YieldWaitStrategy{}, nil
	case "sleep":
		return ParkWaitStrategy{}, nil
	default:
		return nil, &InvalidArgumentError{Reason: "unrecognized worker-waiting-strategy: " + name}
	}
}
