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

import "fmt"

// InvalidArgumentError is returned synchronously from pool construction or
// Execute when a caller-supplied argument cannot be honored (a zero or
// negative parallelism, an unrecognized configuration token, a nil task
// handle).
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "affinitypool: invalid argument: " + e.Reason
}

// RejectionError is returned from Execute when the pool refuses a task —
// either because it is not Running, or because the target queue is full.
// It carries the stringified identity of both the rejected task and the
// pool.
type RejectionError struct {
	PoolName string
	TaskID   string
	Reason   string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("affinitypool: pool %q rejected task %s: %s", e.PoolName, e.TaskID, e.Reason)
}

func newRejectionError(poolName string, task Task, reason string) *RejectionError {
	return &RejectionError{
		PoolName: poolName,
		TaskID:   fmt.Sprintf("%T@%#x", task, TaskKeyOf(task)),
		Reason:   reason,
	}
}
