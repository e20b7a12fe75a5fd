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

// ThreadFactory produces the OS-thread-backed goroutine that runs a
// Worker's loop. The pool only ever calls NewThread(loop) and otherwise
// treats the factory as opaque — CPU affinity pinning, if any, is entirely
// the factory's concern (see affinitypool/threadfactory for a concrete
// implementation that honors a configured affinity strategy list).
type ThreadFactory interface {
	NewThread(loop func())
}

// DefaultThreadFactory starts loop on a plain goroutine with no attempt at
// OS thread pinning. It is used when a Pool is constructed without an
// explicit ThreadFactory.
type DefaultThreadFactory struct{}

// NewThread implements ThreadFactory.
func (DefaultThreadFactory) NewThread(loop func()) {
	go loop()
}
